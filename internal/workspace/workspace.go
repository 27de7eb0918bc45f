// Package workspace keeps each session's working copy of the catalog along
// with its filters, product form draft and cart.
package workspace

import (
	"context"
	"errors"
	"io"
	"time"

	cartdto "github.com/fekuna/omnipos-warehouse/internal/cart/dto"
	catalogdto "github.com/fekuna/omnipos-warehouse/internal/catalog/dto"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/fekuna/omnipos-warehouse/internal/view"
	"github.com/fekuna/omnipos-warehouse/internal/workspace/dto"
)

var ErrNotFound = errors.New("workspace not found")

type State struct {
	Catalog model.Catalog    `json:"catalog"`
	View    view.State       `json:"view"`
	Cart    []model.CartLine `json:"cart"`
	Loaded  bool             `json:"loaded"`
	// LoadError holds the reason the last load failed. It blocks the
	// workflow until a load succeeds.
	LoadError string `json:"loadError,omitempty"`
	// Stale is set when a refresh after a mutation failed.
	Stale     bool      `json:"stale"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Repository interface {
	// Get returns ErrNotFound when the session has no workspace yet.
	Get(ctx context.Context, sessionID string) (*State, error)
	Save(ctx context.Context, sessionID string, s *State) error
	Delete(ctx context.Context, sessionID string) error
	// Lock runs fn while holding the session's workspace lock.
	Lock(ctx context.Context, sessionID string, fn func(ctx context.Context) error) error
}

type UseCase interface {
	Load(ctx context.Context, sessionID string) (*dto.WorkspaceView, error)
	View(ctx context.Context, sessionID string) (*dto.WorkspaceView, error)

	SetFilters(ctx context.Context, sessionID string, patch *dto.FilterPatch) (*dto.WorkspaceView, error)
	ResetFilters(ctx context.Context, sessionID string) (*dto.WorkspaceView, error)
	UpdateForm(ctx context.Context, sessionID string, patch dto.FormPatch) (*dto.WorkspaceView, error)
	SubmitProductForm(ctx context.Context, sessionID string) (*model.Product, error)

	AddCategory(ctx context.Context, sessionID, name string) (*model.Category, error)
	AddType(ctx context.Context, sessionID, name string) (*model.ProductType, error)
	AddPhone(ctx context.Context, sessionID string, input *dto.AddPhoneInput) (*model.Phone, error)

	DeleteCategory(ctx context.Context, sessionID, id string, confirmed bool) (*catalogdto.CascadeResult, error)
	DeleteType(ctx context.Context, sessionID, id string, confirmed bool) (*catalogdto.CascadeResult, error)
	DeletePhone(ctx context.Context, sessionID, id string, confirmed bool) (*catalogdto.CascadeResult, error)

	Cart(ctx context.Context, sessionID string) ([]cartdto.DetailedLine, error)
	AddToCart(ctx context.Context, sessionID, productID string) ([]cartdto.DetailedLine, error)
	UpdateCartQuantity(ctx context.Context, sessionID, productID string, qty int) ([]cartdto.DetailedLine, error)
	Checkout(ctx context.Context, sessionID string) (*cartdto.CheckoutResult, error)

	// Export writes the filtered products as an xlsx workbook.
	Export(ctx context.Context, sessionID string, w io.Writer) error
	Discard(ctx context.Context, sessionID string) error
}
