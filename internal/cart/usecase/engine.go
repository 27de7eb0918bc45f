package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/cart"
	"github.com/fekuna/omnipos-warehouse/internal/cart/dto"
	"github.com/fekuna/omnipos-warehouse/internal/catalog"
	"github.com/fekuna/omnipos-warehouse/internal/logger"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type checkoutEngine struct {
	repo        catalog.Repository
	publisher   cart.Publisher
	logger      logger.ZapLogger
	concurrency int
}

func NewCheckoutEngine(repo catalog.Repository, publisher cart.Publisher, log logger.ZapLogger, concurrency int) cart.Engine {
	if concurrency < 1 {
		concurrency = 1
	}
	return &checkoutEngine{
		repo:        repo,
		publisher:   publisher,
		logger:      log,
		concurrency: concurrency,
	}
}

// Submit reads the product listing once, decrements every line against it
// concurrently, then re-reads the listing so callers see authoritative
// stock. Each write locates its product by id, so rows shifted by a
// concurrent delete are never written. Two checkouts racing on one product
// can still lose an update.
func (e *checkoutEngine) Submit(ctx context.Context, lines []model.CartLine, reference string) (*dto.CheckoutResult, error) {
	lines = cart.Merge(lines)
	if len(lines) == 0 {
		return nil, apperr.Validation("CartEmpty", "cart is empty")
	}
	if reference == "" {
		reference = uuid.New().String()
	}

	products, err := e.repo.ListProducts(ctx)
	if err != nil {
		e.logger.Error("failed to read products for checkout", zap.String("reference", reference), zap.Error(err))
		return nil, apperr.Upstream("CheckoutFailed", "failed to read stock for checkout", err)
	}
	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	res := &dto.CheckoutResult{Reference: reference, Lines: make([]dto.LineResult, len(lines))}

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, line := range lines {
		p, ok := byID[line.ProductID]
		if !ok {
			res.Lines[i] = dto.LineResult{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Status:    dto.LineFailed,
				Error:     "product not found",
			}
			continue
		}

		g.Go(func() error {
			newStock := max(0, p.Stock-line.Quantity)
			lr := dto.LineResult{
				ProductID:     p.ID,
				Quantity:      line.Quantity,
				PreviousStock: p.Stock,
				NewStock:      newStock,
				Status:        dto.LineUpdated,
			}
			if err := e.repo.UpdateProductStock(ctx, p.ID, newStock); err != nil {
				e.logger.Warn("stock update failed",
					zap.String("reference", reference),
					zap.String("product_id", p.ID),
					zap.Error(err),
				)
				lr.Status = dto.LineFailed
				lr.NewStock = p.Stock
				lr.Error = err.Error()
			}
			res.Lines[i] = lr
			return nil
		})
	}
	_ = g.Wait()

	adjusted := make([]dto.StockAdjustment, 0, len(res.Lines))
	for _, lr := range res.Lines {
		if lr.Status != dto.LineUpdated {
			res.Failed++
			continue
		}
		res.Succeeded++
		adjusted = append(adjusted, dto.StockAdjustment{
			ProductID:     lr.ProductID,
			Quantity:      lr.Quantity,
			PreviousStock: lr.PreviousStock,
			NewStock:      lr.NewStock,
		})
	}

	refreshed, err := e.repo.ListProducts(ctx)
	if err != nil {
		e.logger.Warn("failed to refresh products after checkout", zap.String("reference", reference), zap.Error(err))
	} else {
		res.Products = refreshed
		res.Refreshed = true
	}

	if len(adjusted) > 0 {
		e.publish(ctx, reference, adjusted)
	}

	e.logger.Info("checkout settled",
		zap.String("reference", reference),
		zap.Int("succeeded", res.Succeeded),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

func (e *checkoutEngine) publish(ctx context.Context, reference string, items []dto.StockAdjustment) {
	event := &dto.StockAdjustedEvent{
		EventID:   uuid.New().String(),
		EventType: dto.EventStockAdjusted,
		Payload:   dto.StockAdjustedPayload{Reference: reference, Items: items},
		Timestamp: time.Now().UTC(),
	}
	if err := e.publisher.PublishStockAdjusted(ctx, event); err != nil {
		e.logger.Error("failed to publish stock adjustment", zap.String("reference", reference), zap.Error(err))
	}
}
