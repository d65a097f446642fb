package persistence

import (
	"context"

	"github.com/wms/inventory/internal/domain/stock"
	"gorm.io/gorm"
)

// GormStockTransactionRepository implements TransactionRepository using
// GORM. The audit log is append-only: there is intentionally no update or
// delete on this repository.
type GormStockTransactionRepository struct {
	db *gorm.DB
}

// NewGormStockTransactionRepository creates a new GormStockTransactionRepository
func NewGormStockTransactionRepository(db *gorm.DB) *GormStockTransactionRepository {
	return &GormStockTransactionRepository{db: db}
}

// Save appends an audit row
func (r *GormStockTransactionRepository) Save(ctx context.Context, tx *stock.StockTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// FindByFilter returns transactions matching the filter, newest first,
// along with the total count before pagination
func (r *GormStockTransactionRepository) FindByFilter(ctx context.Context, filter stock.TransactionFilter) ([]stock.StockTransaction, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&stock.StockTransaction{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var transactions []stock.StockTransaction
	if err := query.Order("occurred_at DESC").Find(&transactions).Error; err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

func (r *GormStockTransactionRepository) applyFilter(query *gorm.DB, filter stock.TransactionFilter) *gorm.DB {
	if filter.ProductColorID != "" {
		query = query.Where("product_color_id = ?", filter.ProductColorID)
	}
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.ZoneID != nil {
		query = query.Where("zone_id = ?", *filter.ZoneID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		query = query.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("occurred_at <= ?", *filter.To)
	}
	return query
}

// Ensure GormStockTransactionRepository implements TransactionRepository
var _ stock.TransactionRepository = (*GormStockTransactionRepository)(nil)
