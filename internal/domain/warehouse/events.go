package warehouse

import (
	"github.com/wms/inventory/internal/domain/shared"
)

// Event types for the warehouse context
const (
	EventTypeWarehouseCreated  = "warehouse.created"
	EventTypeWarehouseDisabled = "warehouse.disabled"
)

// WarehouseCreatedEvent is published when a warehouse is created
type WarehouseCreatedEvent struct {
	shared.BaseDomainEvent
	Code    string `json:"code"`
	Name    string `json:"name"`
	StoreID string `json:"store_id"`
}

// NewWarehouseCreatedEvent creates a warehouse created event
func NewWarehouseCreatedEvent(w *Warehouse) *WarehouseCreatedEvent {
	return &WarehouseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWarehouseCreated, "Warehouse", w.ID),
		Code:            w.Code,
		Name:            w.Name,
		StoreID:         w.StoreID,
	}
}
