package dto

import (
	"time"

	"github.com/fekuna/omnipos-warehouse/internal/model"
)

type DetailedLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	Image     string `json:"image,omitempty"`
	Stock     int    `json:"stock"`
	// Known is false when the product no longer exists.
	Known bool `json:"known"`
}

const (
	LineUpdated = "updated"
	LineFailed  = "failed"
)

type LineResult struct {
	ProductID     string `json:"productId"`
	Quantity      int    `json:"quantity"`
	PreviousStock int    `json:"previousStock"`
	NewStock      int    `json:"newStock"`
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
}

type CheckoutResult struct {
	Reference string       `json:"reference"`
	Lines     []LineResult `json:"lines"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	// Products is the listing read after every update settled. It is nil
	// when Refreshed is false.
	Products  []model.Product `json:"products,omitempty"`
	Refreshed bool            `json:"refreshed"`
}

const (
	EventStockAdjusted = "StockAdjusted"
	EventOrderCreated  = "OrderCreated"
)

type StockAdjustedEvent struct {
	EventID   string               `json:"event_id"`
	EventType string               `json:"event_type"`
	Payload   StockAdjustedPayload `json:"payload"`
	Timestamp time.Time            `json:"timestamp"`
}

type StockAdjustedPayload struct {
	Reference string            `json:"reference"`
	Items     []StockAdjustment `json:"items"`
}

type StockAdjustment struct {
	ProductID     string `json:"product_id"`
	Quantity      int    `json:"quantity"`
	PreviousStock int    `json:"previous_stock"`
	NewStock      int    `json:"new_stock"`
}

type OrderCreatedEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID    string             `json:"id"`
	Items []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}
