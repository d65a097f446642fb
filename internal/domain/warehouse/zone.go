package warehouse

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wms/inventory/internal/domain/shared"
)

// ZoneCode is the small fixed enumeration used to derive human-readable
// location codes within a zone.
type ZoneCode string

const (
	ZoneCodeA ZoneCode = "A"
	ZoneCodeB ZoneCode = "B"
	ZoneCodeC ZoneCode = "C"
	ZoneCodeD ZoneCode = "D"
	ZoneCodeE ZoneCode = "E"
	ZoneCodeF ZoneCode = "F"
)

// IsValid checks if the zone code is a known value
func (c ZoneCode) IsValid() bool {
	switch c {
	case ZoneCodeA, ZoneCodeB, ZoneCodeC, ZoneCodeD, ZoneCodeE, ZoneCodeF:
		return true
	}
	return false
}

// ZoneStatus represents the status of a zone
type ZoneStatus string

const (
	ZoneStatusActive   ZoneStatus = "active"
	ZoneStatusDisabled ZoneStatus = "disabled"
)

// Zone is a storage area inside a warehouse. Capacity is a hard upper
// bound on the total on-hand units physically stored in the zone and is
// enforced by the stock ledger before every increase.
type Zone struct {
	shared.BaseAggregateRoot
	WarehouseID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name        string     `gorm:"type:varchar(200);not null"`
	Code        ZoneCode   `gorm:"type:varchar(5);not null;index"`
	Capacity    int64      `gorm:"not null;default:0"`
	Status      ZoneStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Zone) TableName() string {
	return "zones"
}

// NewZone creates a new zone inside a warehouse
func NewZone(warehouseID uuid.UUID, name string, code ZoneCode, capacity int64) (*Zone, error) {
	if warehouseID == uuid.Nil {
		return nil, shared.NewInvalidRequestError("warehouse id is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewInvalidRequestError("zone name is required")
	}
	if !code.IsValid() {
		return nil, shared.NewInvalidRequestError("unknown zone code")
	}
	if capacity < 0 {
		return nil, shared.NewInvalidRequestError("zone capacity cannot be negative")
	}

	return &Zone{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		WarehouseID:       warehouseID,
		Name:              name,
		Code:              code,
		Capacity:          capacity,
		Status:            ZoneStatusActive,
	}, nil
}

// Update updates the zone's name
func (z *Zone) Update(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewInvalidRequestError("zone name is required")
	}
	z.Name = name
	z.UpdatedAt = time.Now()
	z.IncrementVersion()
	return nil
}

// SetCapacity adjusts the zone's capacity bound. Shrinking below the
// current stored quantity is allowed; the bound only blocks further
// increases until stock drains below it.
func (z *Zone) SetCapacity(capacity int64) error {
	if capacity < 0 {
		return shared.NewInvalidRequestError("zone capacity cannot be negative")
	}
	z.Capacity = capacity
	z.UpdatedAt = time.Now()
	z.IncrementVersion()
	return nil
}

// HasCapacityFor checks whether additionalQty more units fit under the
// capacity bound given the current summed on-hand quantity.
func (z *Zone) HasCapacityFor(currentOnHand, additionalQty int64) bool {
	return currentOnHand+additionalQty <= z.Capacity
}

// Disable deactivates the zone
func (z *Zone) Disable() error {
	if z.Status == ZoneStatusDisabled {
		return shared.NewDomainError("INVALID_STATE", "zone is already disabled")
	}
	z.Status = ZoneStatusDisabled
	z.UpdatedAt = time.Now()
	z.IncrementVersion()
	return nil
}

// Enable activates the zone
func (z *Zone) Enable() error {
	if z.Status == ZoneStatusActive {
		return shared.NewDomainError("INVALID_STATE", "zone is already active")
	}
	z.Status = ZoneStatusActive
	z.UpdatedAt = time.Now()
	z.IncrementVersion()
	return nil
}
