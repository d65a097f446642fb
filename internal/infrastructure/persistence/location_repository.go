package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wms/inventory/internal/domain/shared"
	"github.com/wms/inventory/internal/domain/warehouse"
	"gorm.io/gorm"
)

// GormLocationRepository implements LocationRepository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// FindByID finds a storage location by its ID
func (r *GormLocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*warehouse.StorageLocation, error) {
	var l warehouse.StorageLocation
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// FindByCode finds a storage location by its code within a warehouse
func (r *GormLocationRepository) FindByCode(ctx context.Context, warehouseID uuid.UUID, code string) (*warehouse.StorageLocation, error) {
	var l warehouse.StorageLocation
	if err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND code = ?", warehouseID, code).
		First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// FindByZone finds all storage locations in a zone
func (r *GormLocationRepository) FindByZone(ctx context.Context, zoneID uuid.UUID) ([]warehouse.StorageLocation, error) {
	var locations []warehouse.StorageLocation
	if err := r.db.WithContext(ctx).
		Where("zone_id = ?", zoneID).
		Order("code ASC").
		Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// ExistsByCode reports whether a location with the code exists in the warehouse
func (r *GormLocationRepository) ExistsByCode(ctx context.Context, warehouseID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&warehouse.StorageLocation{}).
		Where("warehouse_id = ? AND code = ?", warehouseID, code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save saves a storage location
func (r *GormLocationRepository) Save(ctx context.Context, l *warehouse.StorageLocation) error {
	return r.db.WithContext(ctx).Save(l).Error
}

// Delete soft-deletes a storage location
func (r *GormLocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&warehouse.StorageLocation{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormLocationRepository implements LocationRepository
var _ warehouse.LocationRepository = (*GormLocationRepository)(nil)
