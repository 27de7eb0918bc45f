package catalog

import (
	"context"

	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore"
)

// Repository is the only place that touches row positions. Id-addressed
// mutations resolve the current position right before the positional call.
type Repository interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListTypes(ctx context.Context) ([]model.ProductType, error)
	ListPhones(ctx context.Context) ([]model.Phone, error)
	ListProducts(ctx context.Context) ([]model.Product, error)

	CreateCategory(ctx context.Context, c *model.Category) error
	CreateType(ctx context.Context, t *model.ProductType) error
	CreatePhone(ctx context.Context, p *model.Phone) error
	CreateProduct(ctx context.Context, p *model.Product) error

	// Id-addressed
	Delete(ctx context.Context, c rowstore.Collection, id string) error
	UpdateProductStock(ctx context.Context, id string, stock int) error

	// Position-addressed
	DeleteAt(ctx context.Context, c rowstore.Collection, rowIndex int) error
	UpdateCategoryNameAt(ctx context.Context, rowIndex int, name string) error
	UpdateProductStockAt(ctx context.Context, rowIndex int, stock int) error
}
