package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/catalog"
	"github.com/fekuna/omnipos-warehouse/internal/catalog/dto"
	"github.com/fekuna/omnipos-warehouse/internal/logger"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	PrefixCategory = "cat"
	PrefixType     = "type"
	PrefixPhone    = "phone"
	PrefixProduct  = "prod"
)

type catalogUseCase struct {
	repo   catalog.Repository
	logger logger.ZapLogger
}

func NewCatalogUseCase(repo catalog.Repository, log logger.ZapLogger) catalog.UseCase {
	return &catalogUseCase{
		repo:   repo,
		logger: log,
	}
}

// NewID builds "<prefix>-<unix millis>-<9 random chars>".
func NewID(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), suffix)
}

// LoadAll reads the four collections concurrently. Any failure fails the
// whole load.
func (uc *catalogUseCase) LoadAll(ctx context.Context) (*model.Catalog, error) {
	var snap model.Catalog
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		snap.Categories, err = uc.repo.ListCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Types, err = uc.repo.ListTypes(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Phones, err = uc.repo.ListPhones(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Products, err = uc.repo.ListProducts(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		uc.logger.Error("failed to load catalog", zap.Error(err))
		return nil, apperr.Upstream("CatalogLoadFailed", "failed to load catalog", err)
	}
	return &snap, nil
}

func (uc *catalogUseCase) ListCategories(ctx context.Context) ([]model.Category, error) {
	out, err := uc.repo.ListCategories(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

func (uc *catalogUseCase) ListTypes(ctx context.Context) ([]model.ProductType, error) {
	out, err := uc.repo.ListTypes(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

func (uc *catalogUseCase) ListPhones(ctx context.Context) ([]model.Phone, error) {
	out, err := uc.repo.ListPhones(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

func (uc *catalogUseCase) ListProducts(ctx context.Context) ([]model.Product, error) {
	out, err := uc.repo.ListProducts(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

func (uc *catalogUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, required("name")
	}

	cat := &model.Category{ID: NewID(PrefixCategory), Name: name}
	if err := uc.repo.CreateCategory(ctx, cat); err != nil {
		uc.logger.Error("failed to create category", zap.Error(err))
		return nil, storeErr(err)
	}
	return cat, nil
}

func (uc *catalogUseCase) CreateType(ctx context.Context, input *dto.CreateTypeInput) (*model.ProductType, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, required("name")
	}

	t := &model.ProductType{ID: NewID(PrefixType), Name: name}
	if err := uc.repo.CreateType(ctx, t); err != nil {
		uc.logger.Error("failed to create type", zap.Error(err))
		return nil, storeErr(err)
	}
	return t, nil
}

func (uc *catalogUseCase) CreatePhone(ctx context.Context, input *dto.CreatePhoneInput) (*model.Phone, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, required("name")
	}
	if input.TypeID == "" {
		return nil, required("typeId")
	}

	p := &model.Phone{ID: NewID(PrefixPhone), TypeID: input.TypeID, Name: name}
	if err := uc.repo.CreatePhone(ctx, p); err != nil {
		uc.logger.Error("failed to create phone", zap.Error(err))
		return nil, storeErr(err)
	}
	return p, nil
}

func (uc *catalogUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	fields := []struct{ name, value string }{
		{"name", strings.TrimSpace(input.Name)},
		{"categoryId", input.CategoryID},
		{"typeId", input.TypeID},
		{"phoneId", input.PhoneID},
		{"color", strings.TrimSpace(input.Color)},
	}
	for _, f := range fields {
		if f.value == "" {
			return nil, required(f.name)
		}
	}
	if input.Stock == nil {
		return nil, required("stock")
	}
	if *input.Stock < 0 {
		return nil, apperr.Validation("StockInvalid", "stock must be a non-negative integer")
	}

	image := strings.TrimSpace(input.Image)
	if image == "" {
		image = model.DefaultProductImage
	}

	p := &model.Product{
		ID:         NewID(PrefixProduct),
		Name:       fields[0].value,
		CategoryID: input.CategoryID,
		TypeID:     input.TypeID,
		PhoneID:    input.PhoneID,
		Color:      fields[4].value,
		Stock:      *input.Stock,
		Image:      image,
	}
	if err := uc.repo.CreateProduct(ctx, p); err != nil {
		uc.logger.Error("failed to create product", zap.Error(err))
		return nil, storeErr(err)
	}
	return p, nil
}

func (uc *catalogUseCase) RenameCategoryAt(ctx context.Context, rowIndex int, name string) error {
	if rowIndex < rowstore.FirstDataRow {
		return required("rowIndex")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return required("name")
	}
	if err := uc.repo.UpdateCategoryNameAt(ctx, rowIndex, name); err != nil {
		uc.logger.Error("failed to rename category", zap.Int("row", rowIndex), zap.Error(err))
		return storeErr(err)
	}
	return nil
}

func (uc *catalogUseCase) SetProductStockAt(ctx context.Context, rowIndex int, stock int) error {
	if rowIndex < rowstore.FirstDataRow {
		return required("rowIndex")
	}
	if stock < 0 {
		return apperr.Validation("StockInvalid", "stock must be a non-negative integer")
	}
	if err := uc.repo.UpdateProductStockAt(ctx, rowIndex, stock); err != nil {
		uc.logger.Error("failed to update stock", zap.Int("row", rowIndex), zap.Error(err))
		return storeErr(err)
	}
	return nil
}

func (uc *catalogUseCase) DeleteAt(ctx context.Context, c rowstore.Collection, rowIndex int) error {
	if rowIndex < rowstore.FirstDataRow {
		return required("rowIndex")
	}
	if err := uc.repo.DeleteAt(ctx, c, rowIndex); err != nil {
		uc.logger.Error("failed to delete row", zap.String("collection", string(c)), zap.Int("row", rowIndex), zap.Error(err))
		return storeErr(err)
	}
	return nil
}

func required(field string) *apperr.Error {
	return apperr.Validation("FieldRequired", field+" is required").
		WithData(map[string]interface{}{"Field": field})
}

// storeErr classifies a repository failure for the caller.
func storeErr(err error) error {
	if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, rowstore.ErrRowNotFound) {
		return apperr.Wrap(apperr.KindNotFound, "RowNotFound", "row not found", err)
	}
	return apperr.Upstream("StoreFailure", "row store request failed", err)
}
