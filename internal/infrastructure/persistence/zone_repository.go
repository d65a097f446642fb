package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wms/inventory/internal/domain/shared"
	"github.com/wms/inventory/internal/domain/warehouse"
	"gorm.io/gorm"
)

// GormZoneRepository implements ZoneRepository using GORM
type GormZoneRepository struct {
	db *gorm.DB
}

// NewGormZoneRepository creates a new GormZoneRepository
func NewGormZoneRepository(db *gorm.DB) *GormZoneRepository {
	return &GormZoneRepository{db: db}
}

// FindByID finds a zone by its ID
func (r *GormZoneRepository) FindByID(ctx context.Context, id uuid.UUID) (*warehouse.Zone, error) {
	var z warehouse.Zone
	if err := r.db.WithContext(ctx).First(&z, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &z, nil
}

// FindByWarehouse finds all zones of a warehouse
func (r *GormZoneRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]warehouse.Zone, error) {
	var zones []warehouse.Zone
	if err := r.db.WithContext(ctx).
		Where("warehouse_id = ?", warehouseID).
		Order("code ASC").
		Find(&zones).Error; err != nil {
		return nil, err
	}
	return zones, nil
}

// Save saves a zone
func (r *GormZoneRepository) Save(ctx context.Context, z *warehouse.Zone) error {
	return r.db.WithContext(ctx).Save(z).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormZoneRepository) SaveWithLock(ctx context.Context, z *warehouse.Zone) error {
	result := r.db.WithContext(ctx).
		Model(z).
		Where("id = ? AND version = ?", z.ID, z.Version-1).
		Updates(map[string]interface{}{
			"name":       z.Name,
			"capacity":   z.Capacity,
			"status":     z.Status,
			"version":    z.Version,
			"updated_at": z.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete soft-deletes a zone
func (r *GormZoneRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&warehouse.Zone{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormZoneRepository implements ZoneRepository
var _ warehouse.ZoneRepository = (*GormZoneRepository)(nil)
