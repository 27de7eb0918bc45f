package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-warehouse/internal/catalog"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore"
)

type RowRepository struct {
	Store rowstore.Store
}

var _ catalog.Repository = (*RowRepository)(nil)

func NewRowRepository(store rowstore.Store) *RowRepository {
	return &RowRepository{Store: store}
}

func (r *RowRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	t, err := r.Store.Read(ctx, rowstore.Categories)
	if err != nil {
		return nil, err
	}
	out := make([]model.Category, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := t.Record(row)
		out = append(out, model.Category{ID: rec["id"], Name: rec["name"], RowIndex: row.Index})
	}
	return out, nil
}

func (r *RowRepository) ListTypes(ctx context.Context) ([]model.ProductType, error) {
	t, err := r.Store.Read(ctx, rowstore.Types)
	if err != nil {
		return nil, err
	}
	out := make([]model.ProductType, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := t.Record(row)
		out = append(out, model.ProductType{ID: rec["id"], Name: rec["name"], RowIndex: row.Index})
	}
	return out, nil
}

func (r *RowRepository) ListPhones(ctx context.Context) ([]model.Phone, error) {
	t, err := r.Store.Read(ctx, rowstore.Phones)
	if err != nil {
		return nil, err
	}
	out := make([]model.Phone, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := t.Record(row)
		out = append(out, model.Phone{ID: rec["id"], TypeID: rec["typeId"], Name: rec["name"], RowIndex: row.Index})
	}
	return out, nil
}

func (r *RowRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	t, err := r.Store.Read(ctx, rowstore.Products)
	if err != nil {
		return nil, err
	}
	out := make([]model.Product, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, productFromRecord(t.Record(row), row.Index))
	}
	return out, nil
}

func (r *RowRepository) CreateCategory(ctx context.Context, c *model.Category) error {
	return r.Store.Append(ctx, rowstore.Categories, []string{c.ID, c.Name})
}

func (r *RowRepository) CreateType(ctx context.Context, t *model.ProductType) error {
	return r.Store.Append(ctx, rowstore.Types, []string{t.ID, t.Name})
}

func (r *RowRepository) CreatePhone(ctx context.Context, p *model.Phone) error {
	return r.Store.Append(ctx, rowstore.Phones, []string{p.ID, p.TypeID, p.Name})
}

func (r *RowRepository) CreateProduct(ctx context.Context, p *model.Product) error {
	return r.Store.Append(ctx, rowstore.Products, []string{
		p.ID,
		p.Name,
		p.CategoryID,
		p.TypeID,
		p.PhoneID,
		p.Color,
		strconv.Itoa(p.Stock),
		p.Image,
	})
}

func (r *RowRepository) Delete(ctx context.Context, c rowstore.Collection, id string) error {
	t, err := r.Store.Read(ctx, c)
	if err != nil {
		return err
	}
	row, ok := findByID(t, id)
	if !ok {
		return fmt.Errorf("%w: %s %s", catalog.ErrNotFound, c, id)
	}
	return r.Store.Delete(ctx, c, row.Index)
}

func (r *RowRepository) UpdateProductStock(ctx context.Context, id string, stock int) error {
	t, err := r.Store.Read(ctx, rowstore.Products)
	if err != nil {
		return err
	}
	row, ok := findByID(t, id)
	if !ok {
		return fmt.Errorf("%w: product %s", catalog.ErrNotFound, id)
	}
	return r.writeCell(ctx, rowstore.Products, t, row, "stock", strconv.Itoa(stock))
}

func (r *RowRepository) DeleteAt(ctx context.Context, c rowstore.Collection, rowIndex int) error {
	return r.Store.Delete(ctx, c, rowIndex)
}

func (r *RowRepository) UpdateCategoryNameAt(ctx context.Context, rowIndex int, name string) error {
	t, err := r.Store.Read(ctx, rowstore.Categories)
	if err != nil {
		return err
	}
	row, ok := findByIndex(t, rowIndex)
	if !ok {
		return fmt.Errorf("%w: category row %d", catalog.ErrNotFound, rowIndex)
	}
	return r.writeCell(ctx, rowstore.Categories, t, row, "name", name)
}

// UpdateProductStockAt rewrites the whole row with only the stock cell
// changed, so the other columns survive whatever the store does with blanks.
func (r *RowRepository) UpdateProductStockAt(ctx context.Context, rowIndex int, stock int) error {
	t, err := r.Store.Read(ctx, rowstore.Products)
	if err != nil {
		return err
	}
	row, ok := findByIndex(t, rowIndex)
	if !ok {
		return fmt.Errorf("%w: product row %d", catalog.ErrNotFound, rowIndex)
	}
	return r.writeCell(ctx, rowstore.Products, t, row, "stock", strconv.Itoa(stock))
}

func (r *RowRepository) writeCell(ctx context.Context, c rowstore.Collection, t *rowstore.Table, row rowstore.Row, column, value string) error {
	col := t.Column(column)
	if col < 0 {
		col = canonicalColumn(c, column)
	}
	if col < 0 {
		return fmt.Errorf("%s has no %q column", c, column)
	}

	values := make([]string, len(row.Values))
	copy(values, row.Values)
	for len(values) <= col {
		values = append(values, "")
	}
	values[col] = value

	return r.Store.Update(ctx, c, row.Index, values)
}

func findByID(t *rowstore.Table, id string) (rowstore.Row, bool) {
	col := t.Column("id")
	if col < 0 {
		col = 0
	}
	for _, row := range t.Rows {
		if col < len(row.Values) && row.Values[col] == id {
			return row, true
		}
	}
	return rowstore.Row{}, false
}

func findByIndex(t *rowstore.Table, index int) (rowstore.Row, bool) {
	for _, row := range t.Rows {
		if row.Index == index {
			// a blank row reads as missing
			if len(row.Values) == 0 {
				return rowstore.Row{}, false
			}
			return row, true
		}
	}
	return rowstore.Row{}, false
}

func canonicalColumn(c rowstore.Collection, column string) int {
	for i, h := range rowstore.Headers[c] {
		if h == column {
			return i
		}
	}
	return -1
}

func productFromRecord(rec map[string]string, index int) model.Product {
	return model.Product{
		ID:         rec["id"],
		Name:       rec["name"],
		CategoryID: rec["categoryId"],
		TypeID:     rec["typeId"],
		PhoneID:    rec["phoneId"],
		Color:      rec["color"],
		Stock:      ParseStock(rec["stock"]),
		Image:      rec["image"],
		RowIndex:   index,
	}
}

// ParseStock reads a stock cell. Unparsable or negative values become 0.
func ParseStock(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return 0
		}
		n = int(f)
	}
	if n < 0 {
		return 0
	}
	return n
}
