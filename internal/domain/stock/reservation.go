package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/wms/inventory/internal/domain/shared"
)

// Reservation is a hold of reserved units against one stock record for
// one order. Many reservations may point at the same record; the sum of
// their quantities never exceeds that record's on-hand quantity because
// every hold goes through StockRecord.Reserve.
type Reservation struct {
	shared.BaseEntity
	OrderID        int64     `gorm:"not null;index"`
	ProductColorID string    `gorm:"type:varchar(64);not null;index"`
	StockRecordID  uuid.UUID `gorm:"type:uuid;not null;index"`
	WarehouseID    uuid.UUID `gorm:"type:uuid;not null"`
	Quantity       int64     `gorm:"not null"`
	ReservedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Reservation) TableName() string {
	return "inventory_reservations"
}

// NewReservation creates a hold of quantity units against a stock record
func NewReservation(orderID int64, productColorID string, record *StockRecord, quantity int64) (*Reservation, error) {
	if orderID <= 0 {
		return nil, shared.NewInvalidRequestError("order id must be positive")
	}
	if quantity <= 0 {
		return nil, shared.NewInvalidRequestError("reservation quantity must be positive")
	}

	return &Reservation{
		BaseEntity:     shared.NewBaseEntity(),
		OrderID:        orderID,
		ProductColorID: productColorID,
		StockRecordID:  record.ID,
		WarehouseID:    record.WarehouseID,
		Quantity:       quantity,
		ReservedAt:     time.Now(),
	}, nil
}
