package cart

import (
	"context"

	"github.com/fekuna/omnipos-warehouse/internal/cart/dto"
	"github.com/fekuna/omnipos-warehouse/internal/model"
)

// Engine turns cart lines into stock decrements. Lines are applied
// independently; a failed line never rolls back the others.
type Engine interface {
	Submit(ctx context.Context, lines []model.CartLine, reference string) (*dto.CheckoutResult, error)
}

// Publisher announces stock changes made by a checkout.
type Publisher interface {
	PublishStockAdjusted(ctx context.Context, event *dto.StockAdjustedEvent) error
}
