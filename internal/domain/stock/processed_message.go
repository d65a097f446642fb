package stock

import (
	"github.com/wms/inventory/internal/domain/shared"
)

// ProcessedMessage marks one order-created notification as handled. The
// unique index on OrderID is the concurrency primitive that makes the
// idempotency gate safe: of two concurrent deliveries, exactly one
// insert commits and the loser treats its constraint violation as
// "already processed". Rows are write-once.
type ProcessedMessage struct {
	shared.BaseEntity
	OrderID int64 `gorm:"not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (ProcessedMessage) TableName() string {
	return "processed_messages"
}

// NewProcessedMessage creates the idempotency marker for an order
func NewProcessedMessage(orderID int64) (*ProcessedMessage, error) {
	if orderID <= 0 {
		return nil, shared.NewInvalidRequestError("order id must be positive")
	}
	return &ProcessedMessage{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    orderID,
	}, nil
}
