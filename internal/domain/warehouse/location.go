package warehouse

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wms/inventory/internal/domain/shared"
)

// LocationStatus represents the status of a storage location
type LocationStatus string

const (
	LocationStatusActive   LocationStatus = "active"
	LocationStatusDisabled LocationStatus = "disabled"
)

// StorageLocation is a single shelf slot inside a zone, addressed by a
// generated code of the form <zoneCode>-<row>-C<column>. The code is
// derived once at creation and unique per warehouse.
type StorageLocation struct {
	shared.BaseEntity
	ZoneID       uuid.UUID      `gorm:"type:uuid;not null;index"`
	WarehouseID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_location_warehouse_code,priority:1"`
	Code         string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_location_warehouse_code,priority:2"`
	RowLabel     string         `gorm:"type:varchar(10);not null"`
	ColumnNumber int            `gorm:"not null"`
	Status       LocationStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (StorageLocation) TableName() string {
	return "storage_locations"
}

// LocationCode derives the human-readable code for a slot
func LocationCode(zoneCode ZoneCode, rowLabel string, columnNumber int) string {
	return fmt.Sprintf("%s-%s-C%d", zoneCode, strings.ToUpper(rowLabel), columnNumber)
}

// NewStorageLocation creates a location inside a zone with a derived code
func NewStorageLocation(warehouseID, zoneID uuid.UUID, zoneCode ZoneCode, rowLabel string, columnNumber int) (*StorageLocation, error) {
	if warehouseID == uuid.Nil || zoneID == uuid.Nil {
		return nil, shared.NewInvalidRequestError("warehouse id and zone id are required")
	}
	if !zoneCode.IsValid() {
		return nil, shared.NewInvalidRequestError("unknown zone code")
	}
	rowLabel = strings.ToUpper(strings.TrimSpace(rowLabel))
	if rowLabel == "" {
		return nil, shared.NewInvalidRequestError("row label is required")
	}
	if columnNumber <= 0 {
		return nil, shared.NewInvalidRequestError("column number must be positive")
	}

	return &StorageLocation{
		BaseEntity:   shared.NewBaseEntity(),
		ZoneID:       zoneID,
		WarehouseID:  warehouseID,
		Code:         LocationCode(zoneCode, rowLabel, columnNumber),
		RowLabel:     rowLabel,
		ColumnNumber: columnNumber,
		Status:       LocationStatusActive,
	}, nil
}

// Disable deactivates the location
func (l *StorageLocation) Disable() {
	l.Status = LocationStatusDisabled
	l.UpdatedAt = time.Now()
}

// Enable activates the location
func (l *StorageLocation) Enable() {
	l.Status = LocationStatusActive
	l.UpdatedAt = time.Now()
}

// IsActive returns true if the location is active
func (l *StorageLocation) IsActive() bool {
	return l.Status == LocationStatusActive
}
