package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/wms/inventory/internal/domain/shared"
)

// TransactionType represents the type of stock transaction
type TransactionType string

const (
	// TransactionTypeImport represents stock coming into a location
	TransactionTypeImport TransactionType = "IMPORT"
	// TransactionTypeExport represents stock physically leaving a location
	TransactionTypeExport TransactionType = "EXPORT"
	// TransactionTypeTransferIn represents stock transferred in from another location
	TransactionTypeTransferIn TransactionType = "TRANSFER_IN"
	// TransactionTypeTransferOut represents stock transferred out to another location
	TransactionTypeTransferOut TransactionType = "TRANSFER_OUT"
	// TransactionTypeReserve represents units promised to an order
	TransactionTypeReserve TransactionType = "RESERVE"
	// TransactionTypeRelease represents promised units returned to the pool
	TransactionTypeRelease TransactionType = "RELEASE"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeImport,
		TransactionTypeExport,
		TransactionTypeTransferIn,
		TransactionTypeTransferOut,
		TransactionTypeReserve,
		TransactionTypeRelease:
		return true
	}
	return false
}

// IsIncrease returns true if this type increases available quantity
func (t TransactionType) IsIncrease() bool {
	switch t {
	case TransactionTypeImport, TransactionTypeTransferIn, TransactionTypeRelease:
		return true
	}
	return false
}

// IsDecrease returns true if this type decreases available quantity
func (t TransactionType) IsDecrease() bool {
	switch t {
	case TransactionTypeExport, TransactionTypeTransferOut, TransactionTypeReserve:
		return true
	}
	return false
}

// StockTransaction is one append-only audit row. It is written in the
// same atomic unit as the ledger mutation it records and is never a
// source of truth for current quantities. Rows are never updated or
// deleted after commit.
type StockTransaction struct {
	shared.BaseEntity
	Type           TransactionType `gorm:"type:varchar(20);not null;index"`
	Quantity       int64           `gorm:"not null"`
	ProductColorID string          `gorm:"type:varchar(64);not null;index"`
	StockRecordID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	WarehouseID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ZoneID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ActorID        string          `gorm:"type:varchar(64)"`
	OrderID        *int64          `gorm:"index"`
	Note           string          `gorm:"type:text"`
	OccurredAt     time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockTransaction) TableName() string {
	return "stock_transactions"
}

// NewStockTransaction creates an audit row for a ledger mutation
func NewStockTransaction(txType TransactionType, record *StockRecord, quantity int64) (*StockTransaction, error) {
	if !txType.IsValid() {
		return nil, shared.NewInvalidRequestError("unknown transaction type")
	}
	if quantity <= 0 {
		return nil, shared.NewInvalidRequestError("transaction quantity must be positive")
	}

	return &StockTransaction{
		BaseEntity:     shared.NewBaseEntity(),
		Type:           txType,
		Quantity:       quantity,
		ProductColorID: record.ProductColorID,
		StockRecordID:  record.ID,
		WarehouseID:    record.WarehouseID,
		ZoneID:         record.ZoneID,
		OccurredAt:     time.Now(),
	}, nil
}

// WithActor attaches the acting user
func (t *StockTransaction) WithActor(actorID string) *StockTransaction {
	t.ActorID = actorID
	return t
}

// WithOrder attaches the order that caused the mutation
func (t *StockTransaction) WithOrder(orderID int64) *StockTransaction {
	t.OrderID = &orderID
	return t
}

// WithNote attaches a free-text note
func (t *StockTransaction) WithNote(note string) *StockTransaction {
	t.Note = note
	return t
}

// SignedQuantity returns the quantity signed by type: positive for
// increases, negative for decreases.
func (t *StockTransaction) SignedQuantity() int64 {
	if t.Type.IsDecrease() {
		return -t.Quantity
	}
	return t.Quantity
}
