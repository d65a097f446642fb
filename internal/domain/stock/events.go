package stock

import (
	"github.com/google/uuid"
	"github.com/wms/inventory/internal/domain/shared"
)

// Event types for the stock context
const (
	EventTypeStockIncreased   = "stock.increased"
	EventTypeStockDecreased   = "stock.decreased"
	EventTypeStockReserved    = "stock.reserved"
	EventTypeStockReleased    = "stock.released"
	EventTypeLowStockDetected = "stock.low_stock_detected"
)

// StockIncreasedEvent is published when on-hand quantity grows
type StockIncreasedEvent struct {
	shared.BaseDomainEvent
	ProductColorID string `json:"product_color_id"`
	Quantity       int64  `json:"quantity"`
	OnHand         int64  `json:"on_hand"`
}

// NewStockIncreasedEvent creates a stock increased event
func NewStockIncreasedEvent(r *StockRecord, quantity int64) *StockIncreasedEvent {
	return &StockIncreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockIncreased, "StockRecord", r.ID),
		ProductColorID:  r.ProductColorID,
		Quantity:        quantity,
		OnHand:          r.OnHand,
	}
}

// StockDecreasedEvent is published when on-hand quantity shrinks
type StockDecreasedEvent struct {
	shared.BaseDomainEvent
	ProductColorID string `json:"product_color_id"`
	Quantity       int64  `json:"quantity"`
	OnHand         int64  `json:"on_hand"`
}

// NewStockDecreasedEvent creates a stock decreased event
func NewStockDecreasedEvent(r *StockRecord, quantity int64) *StockDecreasedEvent {
	return &StockDecreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDecreased, "StockRecord", r.ID),
		ProductColorID:  r.ProductColorID,
		Quantity:        quantity,
		OnHand:          r.OnHand,
	}
}

// StockReservedEvent is published when units are promised to an order
type StockReservedEvent struct {
	shared.BaseDomainEvent
	ProductColorID string `json:"product_color_id"`
	Quantity       int64  `json:"quantity"`
	Reserved       int64  `json:"reserved"`
	Available      int64  `json:"available"`
}

// NewStockReservedEvent creates a stock reserved event
func NewStockReservedEvent(r *StockRecord, quantity int64) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReserved, "StockRecord", r.ID),
		ProductColorID:  r.ProductColorID,
		Quantity:        quantity,
		Reserved:        r.Reserved,
		Available:       r.Available(),
	}
}

// StockReleasedEvent is published when promised units return to the pool
type StockReleasedEvent struct {
	shared.BaseDomainEvent
	ProductColorID string `json:"product_color_id"`
	Quantity       int64  `json:"quantity"`
	Reserved       int64  `json:"reserved"`
	Available      int64  `json:"available"`
}

// NewStockReleasedEvent creates a stock released event
func NewStockReleasedEvent(r *StockRecord, quantity int64) *StockReleasedEvent {
	return &StockReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReleased, "StockRecord", r.ID),
		ProductColorID:  r.ProductColorID,
		Quantity:        quantity,
		Reserved:        r.Reserved,
		Available:       r.Available(),
	}
}

// LowStockDetectedEvent is published by the periodic scan when a record
// drops to or under its minimum threshold
type LowStockDetectedEvent struct {
	shared.BaseDomainEvent
	ProductColorID string    `json:"product_color_id"`
	WarehouseID    uuid.UUID `json:"warehouse_id"`
	OnHand         int64     `json:"on_hand"`
	MinQuantity    int64     `json:"min_quantity"`
}

// NewLowStockDetectedEvent creates a low stock event
func NewLowStockDetectedEvent(r *StockRecord) *LowStockDetectedEvent {
	return &LowStockDetectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStockDetected, "StockRecord", r.ID),
		ProductColorID:  r.ProductColorID,
		WarehouseID:     r.WarehouseID,
		OnHand:          r.OnHand,
		MinQuantity:     r.MinQuantity,
	}
}
