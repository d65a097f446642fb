package warehouse

import (
	"regexp"
	"strings"
	"time"

	"github.com/wms/inventory/internal/domain/shared"
)

// WarehouseStatus represents the status of a warehouse
type WarehouseStatus string

const (
	WarehouseStatusActive   WarehouseStatus = "active"
	WarehouseStatusDisabled WarehouseStatus = "disabled"
)

var warehouseCodePattern = regexp.MustCompile(`^WH-[A-Z0-9]{2,20}$`)

// Warehouse is the aggregate root of the storage hierarchy. It owns a set
// of zones and, transitively, all stock stored beneath them. Capacity here
// is informational only; the enforced bound lives on each Zone.
type Warehouse struct {
	shared.BaseAggregateRoot
	Code     string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name     string          `gorm:"type:varchar(200);not null"`
	StoreID  string          `gorm:"type:varchar(64);index"`
	Capacity int64           `gorm:"not null;default:0"`
	Status   WarehouseStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Address  string          `gorm:"type:text"`
	Notes    string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates a new warehouse with required fields
func NewWarehouse(code, name, storeID string) (*Warehouse, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := validateWarehouseCode(code); err != nil {
		return nil, err
	}
	if err := validateWarehouseName(name); err != nil {
		return nil, err
	}

	w := &Warehouse{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		StoreID:           storeID,
		Status:            WarehouseStatusActive,
	}

	w.AddDomainEvent(NewWarehouseCreatedEvent(w))

	return w, nil
}

// Update updates the warehouse's basic information
func (w *Warehouse) Update(name, address, notes string) error {
	if err := validateWarehouseName(name); err != nil {
		return err
	}

	w.Name = name
	w.Address = address
	w.Notes = notes
	w.UpdatedAt = time.Now()
	w.IncrementVersion()

	return nil
}

// SetCapacity sets the informational storage capacity
func (w *Warehouse) SetCapacity(capacity int64) error {
	if capacity < 0 {
		return shared.NewInvalidRequestError("warehouse capacity cannot be negative")
	}
	w.Capacity = capacity
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
	return nil
}

// Enable activates the warehouse
func (w *Warehouse) Enable() error {
	if w.Status == WarehouseStatusActive {
		return shared.NewDomainError("INVALID_STATE", "warehouse is already active")
	}
	w.Status = WarehouseStatusActive
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
	return nil
}

// Disable deactivates the warehouse. Stock under a disabled warehouse stays
// in the ledger but its locations stop being reservation candidates.
func (w *Warehouse) Disable() error {
	if w.Status == WarehouseStatusDisabled {
		return shared.NewDomainError("INVALID_STATE", "warehouse is already disabled")
	}
	w.Status = WarehouseStatusDisabled
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
	return nil
}

// IsActive returns true if the warehouse is active
func (w *Warehouse) IsActive() bool {
	return w.Status == WarehouseStatusActive
}

func validateWarehouseCode(code string) error {
	if code == "" {
		return shared.NewInvalidRequestError("warehouse code is required")
	}
	if !warehouseCodePattern.MatchString(code) {
		return shared.NewInvalidRequestError("warehouse code must match WH-<ALNUM>")
	}
	return nil
}

func validateWarehouseName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewInvalidRequestError("warehouse name is required")
	}
	if len(name) > 200 {
		return shared.NewInvalidRequestError("warehouse name cannot exceed 200 characters")
	}
	return nil
}
