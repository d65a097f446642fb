package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wms/inventory/internal/domain/shared"
	"github.com/wms/inventory/internal/domain/stock"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockRecordRepository implements StockRecordRepository using GORM
type GormStockRecordRepository struct {
	db *gorm.DB
}

// NewGormStockRecordRepository creates a new GormStockRecordRepository
func NewGormStockRecordRepository(db *gorm.DB) *GormStockRecordRepository {
	return &GormStockRecordRepository{db: db}
}

// FindByID finds a stock record by its ID
func (r *GormStockRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.StockRecord, error) {
	var record stock.StockRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByIDForUpdate finds a stock record by ID holding a row lock. Must be
// called inside a transaction.
func (r *GormStockRecordRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*stock.StockRecord, error) {
	var record stock.StockRecord
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByLocationAndProduct finds the record for a (location, product color) pair
func (r *GormStockRecordRepository) FindByLocationAndProduct(ctx context.Context, locationID uuid.UUID, productColorID string) (*stock.StockRecord, error) {
	var record stock.StockRecord
	if err := r.db.WithContext(ctx).
		Where("location_id = ? AND product_color_id = ?", locationID, productColorID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByLocationAndProductForUpdate is FindByLocationAndProduct with a row lock
func (r *GormStockRecordRepository) FindByLocationAndProductForUpdate(ctx context.Context, locationID uuid.UUID, productColorID string) (*stock.StockRecord, error) {
	var record stock.StockRecord
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("location_id = ? AND product_color_id = ?", locationID, productColorID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByProduct finds all stock records for a product color across locations
func (r *GormStockRecordRepository) FindByProduct(ctx context.Context, productColorID string) ([]stock.StockRecord, error) {
	var records []stock.StockRecord
	if err := r.db.WithContext(ctx).
		Where("product_color_id = ?", productColorID).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindAvailableByProductForUpdate returns every active record for the
// product with available stock, locked for the current transaction. The
// ordering here is only a stable scan order; the allocation planner
// re-sorts candidates itself.
func (r *GormStockRecordRepository) FindAvailableByProductForUpdate(ctx context.Context, productColorID string) ([]*stock.StockRecord, error) {
	var records []*stock.StockRecord
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_color_id = ? AND status = ? AND on_hand - reserved > 0", productColorID, stock.StockRecordStatusActive).
		Order("location_id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindBelowMinimum finds records at or under their minimum threshold.
// A zero threshold disables the alert for that record.
func (r *GormStockRecordRepository) FindBelowMinimum(ctx context.Context) ([]stock.StockRecord, error) {
	var records []stock.StockRecord
	if err := r.db.WithContext(ctx).
		Where("min_quantity > 0 AND on_hand <= min_quantity AND status = ?", stock.StockRecordStatusActive).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindAll finds all stock records matching the filter
func (r *GormStockRecordRepository) FindAll(ctx context.Context, filter shared.Filter) ([]stock.StockRecord, error) {
	var records []stock.StockRecord
	query := r.applyFilter(r.db.WithContext(ctx).Model(&stock.StockRecord{}), filter)
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Count counts stock records matching the filter
func (r *GormStockRecordRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&stock.StockRecord{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumOnHandByZone sums the on-hand quantity stored in a zone
func (r *GormStockRecordRepository) SumOnHandByZone(ctx context.Context, zoneID uuid.UUID) (int64, error) {
	var result struct {
		Total int64
	}
	if err := r.db.WithContext(ctx).Model(&stock.StockRecord{}).
		Select("COALESCE(SUM(on_hand), 0) as total").
		Where("zone_id = ?", zoneID).
		Scan(&result).Error; err != nil {
		return 0, err
	}
	return result.Total, nil
}

// SumOnHandByProduct sums the on-hand quantity of a product across all locations
func (r *GormStockRecordRepository) SumOnHandByProduct(ctx context.Context, productColorID string) (int64, error) {
	var result struct {
		Total int64
	}
	if err := r.db.WithContext(ctx).Model(&stock.StockRecord{}).
		Select("COALESCE(SUM(on_hand), 0) as total").
		Where("product_color_id = ?", productColorID).
		Scan(&result).Error; err != nil {
		return 0, err
	}
	return result.Total, nil
}

// SumAvailableByProduct sums the unreserved quantity of a product across all locations
func (r *GormStockRecordRepository) SumAvailableByProduct(ctx context.Context, productColorID string) (int64, error) {
	var result struct {
		Total int64
	}
	if err := r.db.WithContext(ctx).Model(&stock.StockRecord{}).
		Select("COALESCE(SUM(on_hand - reserved), 0) as total").
		Where("product_color_id = ? AND status = ?", productColorID, stock.StockRecordStatusActive).
		Scan(&result).Error; err != nil {
		return 0, err
	}
	return result.Total, nil
}

// Save saves a stock record
func (r *GormStockRecordRepository) Save(ctx context.Context, record *stock.StockRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormStockRecordRepository) SaveWithLock(ctx context.Context, record *stock.StockRecord) error {
	result := r.db.WithContext(ctx).
		Model(record).
		Where("id = ? AND version = ?", record.ID, record.Version-1).
		Updates(map[string]interface{}{
			"on_hand":      record.OnHand,
			"reserved":     record.Reserved,
			"min_quantity": record.MinQuantity,
			"max_quantity": record.MaxQuantity,
			"status":       record.Status,
			"version":      record.Version,
			"updated_at":   record.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete soft-deletes a stock record
func (r *GormStockRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&stock.StockRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormStockRecordRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	orderBy := ValidateSortField(filter.OrderBy, StockRecordSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormStockRecordRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "zone_id":
			query = query.Where("zone_id = ?", value)
		case "location_id":
			query = query.Where("location_id = ?", value)
		case "product_color_id":
			query = query.Where("product_color_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "below_minimum":
			if value == true {
				query = query.Where("min_quantity > 0 AND on_hand <= min_quantity")
			}
		case "has_stock":
			if value == true {
				query = query.Where("on_hand - reserved > 0")
			}
		case "no_stock":
			if value == true {
				query = query.Where("on_hand = 0 AND reserved = 0")
			}
		}
	}

	return query
}

// Ensure GormStockRecordRepository implements StockRecordRepository
var _ stock.StockRecordRepository = (*GormStockRecordRepository)(nil)
