package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fekuna/omnipos-warehouse/internal/cart"
	"github.com/fekuna/omnipos-warehouse/internal/cart/dto"
	"github.com/fekuna/omnipos-warehouse/internal/logger"
	"go.uber.org/zap"
)

// MessageWriter is satisfied by *broker.KafkaProducer.
type MessageWriter interface {
	Publish(ctx context.Context, key string, value []byte) error
}

type KafkaPublisher struct {
	writer MessageWriter
	logger logger.ZapLogger
}

var _ cart.Publisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(writer MessageWriter, log logger.ZapLogger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, logger: log}
}

func (p *KafkaPublisher) PublishStockAdjusted(ctx context.Context, event *dto.StockAdjustedEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event.EventType, err)
	}
	if err := p.writer.Publish(ctx, event.Payload.Reference, value); err != nil {
		return err
	}
	p.logger.Debug("published stock adjustment",
		zap.String("event_id", event.EventID),
		zap.Int("items", len(event.Payload.Items)),
	)
	return nil
}

type Noop struct{}

var _ cart.Publisher = Noop{}

func (Noop) PublishStockAdjusted(context.Context, *dto.StockAdjustedEvent) error { return nil }
