package catalog

import (
	"context"

	"github.com/fekuna/omnipos-warehouse/internal/catalog/dto"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore"
)

type UseCase interface {
	LoadAll(ctx context.Context) (*model.Catalog, error)

	ListCategories(ctx context.Context) ([]model.Category, error)
	ListTypes(ctx context.Context) ([]model.ProductType, error)
	ListPhones(ctx context.Context) ([]model.Phone, error)
	ListProducts(ctx context.Context) ([]model.Product, error)

	CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error)
	CreateType(ctx context.Context, input *dto.CreateTypeInput) (*model.ProductType, error)
	CreatePhone(ctx context.Context, input *dto.CreatePhoneInput) (*model.Phone, error)
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)

	RenameCategoryAt(ctx context.Context, rowIndex int, name string) error
	SetProductStockAt(ctx context.Context, rowIndex int, stock int) error
	DeleteAt(ctx context.Context, c rowstore.Collection, rowIndex int) error

	// Cascading deletes mutate snapshot so it holds no dangling references.
	DeleteCategory(ctx context.Context, snapshot *model.Catalog, id string) (*dto.CascadeResult, error)
	DeleteType(ctx context.Context, snapshot *model.Catalog, id string) (*dto.CascadeResult, error)
	DeletePhone(ctx context.Context, snapshot *model.Catalog, id string) (*dto.CascadeResult, error)
}
