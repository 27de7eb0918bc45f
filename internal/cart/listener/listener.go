package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-warehouse/internal/cart"
	"github.com/fekuna/omnipos-warehouse/internal/cart/dto"
	"github.com/fekuna/omnipos-warehouse/internal/logger"
	"github.com/fekuna/omnipos-warehouse/internal/model"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is satisfied by *broker.KafkaConsumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// OrderListener applies OrderCreated events as checkouts.
type OrderListener struct {
	consumer  MessageReader
	engine    cart.Engine
	logger    logger.ZapLogger
	retryWait time.Duration
}

func NewOrderListener(consumer MessageReader, engine cart.Engine, log logger.ZapLogger) *OrderListener {
	return &OrderListener{
		consumer:  consumer,
		engine:    engine,
		logger:    log,
		retryWait: time.Second,
	}
}

// Start blocks until ctx is cancelled.
func (l *OrderListener) Start(ctx context.Context) {
	l.logger.Info("starting order listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("stopping order listener")
			return
		default:
		}

		msg, err := l.consumer.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			l.logger.Error("failed to read kafka message", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(l.retryWait):
			}
			continue
		}
		l.processMessage(ctx, msg.Value)
	}
}

func (l *OrderListener) processMessage(ctx context.Context, value []byte) {
	var event dto.OrderCreatedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("failed to unmarshal event", zap.Error(err))
		return
	}
	if event.EventType != dto.EventOrderCreated {
		return
	}

	lines := make([]model.CartLine, 0, len(event.Payload.Items))
	for _, item := range event.Payload.Items {
		qty := int(item.Quantity)
		if item.ProductID == "" || qty <= 0 {
			l.logger.Warn("skipping order item",
				zap.String("order_id", event.Payload.ID),
				zap.String("product_id", item.ProductID),
				zap.Float64("quantity", item.Quantity),
			)
			continue
		}
		lines = append(lines, model.CartLine{ProductID: item.ProductID, Quantity: qty})
	}
	if len(lines) == 0 {
		return
	}

	l.logger.Info("processing OrderCreated event", zap.String("order_id", event.Payload.ID))

	res, err := l.engine.Submit(ctx, lines, "order:"+event.Payload.ID)
	if err != nil {
		l.logger.Error("failed to apply order", zap.String("order_id", event.Payload.ID), zap.Error(err))
		return
	}
	for _, lr := range res.Lines {
		if lr.Status == dto.LineFailed {
			l.logger.Error("failed to adjust stock for order item",
				zap.String("order_id", event.Payload.ID),
				zap.String("product_id", lr.ProductID),
				zap.String("error", lr.Error),
			)
		}
	}
}
