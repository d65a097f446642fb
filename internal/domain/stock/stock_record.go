package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/wms/inventory/internal/domain/shared"
)

// StockRecordStatus represents the status of a stock record
type StockRecordStatus string

const (
	StockRecordStatusActive   StockRecordStatus = "active"
	StockRecordStatusDisabled StockRecordStatus = "disabled"
)

// StockRecord is the unit of stock bookkeeping: one product color at one
// storage location. It is the sole authority for on-hand and reserved
// quantities; Available() is always derived, never stored.
//
// Invariants held after every mutation:
//
//	0 <= Reserved <= OnHand
//	MinQuantity <= MaxQuantity
//
// ZoneID and WarehouseID are denormalized plain identifiers so capacity
// checks and allocation ordering never need to walk the containment tree
// upward through live object references.
type StockRecord struct {
	shared.BaseAggregateRoot
	ProductColorID string            `gorm:"type:varchar(64);not null;uniqueIndex:idx_stock_record_location_product,priority:2;index"`
	LocationID     uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_stock_record_location_product,priority:1"`
	ZoneID         uuid.UUID         `gorm:"type:uuid;not null;index"`
	WarehouseID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	OnHand         int64             `gorm:"not null;default:0"`
	Reserved       int64             `gorm:"not null;default:0"`
	MinQuantity    int64             `gorm:"not null;default:0"`
	MaxQuantity    int64             `gorm:"not null;default:0"`
	Status         StockRecordStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (StockRecord) TableName() string {
	return "stock_records"
}

// NewStockRecord creates a stock record for a (location, product color) pair
func NewStockRecord(productColorID string, locationID, zoneID, warehouseID uuid.UUID, quantity, minQty, maxQty int64) (*StockRecord, error) {
	if productColorID == "" {
		return nil, shared.NewInvalidRequestError("product color id is required")
	}
	if locationID == uuid.Nil || zoneID == uuid.Nil || warehouseID == uuid.Nil {
		return nil, shared.NewInvalidRequestError("location, zone and warehouse ids are required")
	}
	if quantity < 0 {
		return nil, shared.NewInvalidRequestError("quantity cannot be negative")
	}
	if err := validateThresholds(minQty, maxQty); err != nil {
		return nil, err
	}

	return &StockRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductColorID:    productColorID,
		LocationID:        locationID,
		ZoneID:            zoneID,
		WarehouseID:       warehouseID,
		OnHand:            quantity,
		Reserved:          0,
		MinQuantity:       minQty,
		MaxQuantity:       maxQty,
		Status:            StockRecordStatusActive,
	}, nil
}

// Available returns the quantity safe to promise to a new order
func (r *StockRecord) Available() int64 {
	return r.OnHand - r.Reserved
}

// CanFulfill checks if the available quantity covers the required amount
func (r *StockRecord) CanFulfill(required int64) bool {
	return r.Available() >= required
}

// IsBelowMinimum reports whether on-hand has dropped to or under the
// minimum threshold. A zero threshold disables the alert.
func (r *StockRecord) IsBelowMinimum() bool {
	return r.MinQuantity > 0 && r.OnHand <= r.MinQuantity
}

// Increase adds physical units to the record. The zone capacity check
// happens in the application layer before this is called; the record
// itself only enforces its own max threshold (zero means unbounded).
func (r *StockRecord) Increase(amount int64) error {
	if amount <= 0 {
		return shared.NewInvalidRequestError("increase amount must be positive")
	}
	if r.MaxQuantity > 0 && r.OnHand+amount > r.MaxQuantity {
		return shared.NewConflictError("increase would exceed the record's max quantity")
	}

	r.OnHand += amount
	r.touch()
	r.AddDomainEvent(NewStockIncreasedEvent(r, amount))
	return nil
}

// Decrease removes physical units. Only available units may leave:
// reserved units are already promised to orders.
func (r *StockRecord) Decrease(amount int64) error {
	if amount <= 0 {
		return shared.NewInvalidRequestError("decrease amount must be positive")
	}
	if amount > r.Available() {
		return shared.NewInsufficientStockError("decrease amount exceeds available stock")
	}

	r.OnHand -= amount
	r.touch()
	r.AddDomainEvent(NewStockDecreasedEvent(r, amount))
	return nil
}

// Reserve promises amount units to an order without moving them
func (r *StockRecord) Reserve(amount int64) error {
	if amount <= 0 {
		return shared.NewInvalidRequestError("reserve amount must be positive")
	}
	if amount > r.Available() {
		return shared.NewInsufficientStockError("reserve amount exceeds available stock")
	}

	r.Reserved += amount
	r.touch()
	r.AddDomainEvent(NewStockReservedEvent(r, amount))
	return nil
}

// Release returns previously reserved units to the available pool
func (r *StockRecord) Release(amount int64) error {
	if amount <= 0 {
		return shared.NewInvalidRequestError("release amount must be positive")
	}
	if amount > r.Reserved {
		return shared.NewInvalidRequestError("release amount exceeds reserved stock")
	}

	r.Reserved -= amount
	r.touch()
	r.AddDomainEvent(NewStockReleasedEvent(r, amount))
	return nil
}

// SetQuantity overwrites the on-hand quantity (upsert path). Reserved
// units are promises that cannot be destroyed by an overwrite.
func (r *StockRecord) SetQuantity(quantity int64) error {
	if quantity < 0 {
		return shared.NewInvalidRequestError("quantity cannot be negative")
	}
	if quantity < r.Reserved {
		return shared.NewConflictError("quantity cannot drop below the reserved amount")
	}
	r.OnHand = quantity
	r.touch()
	return nil
}

// SetThresholds updates the min/max alert thresholds
func (r *StockRecord) SetThresholds(minQty, maxQty int64) error {
	if err := validateThresholds(minQty, maxQty); err != nil {
		return err
	}
	r.MinQuantity = minQty
	r.MaxQuantity = maxQty
	r.touch()
	return nil
}

func (r *StockRecord) touch() {
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

func validateThresholds(minQty, maxQty int64) error {
	if minQty < 0 || maxQty < 0 {
		return shared.NewInvalidRequestError("thresholds cannot be negative")
	}
	if maxQty > 0 && minQty > maxQty {
		return shared.NewInvalidRequestError("min quantity cannot exceed max quantity")
	}
	return nil
}
