package persistence

import (
	"context"
	"errors"

	"github.com/wms/inventory/internal/domain/shared"
	"github.com/wms/inventory/internal/domain/stock"
	"gorm.io/gorm"
)

// GormProcessedMessageRepository implements ProcessedMessageRepository
// using GORM. The unique index on order_id is the concurrency primitive:
// when two transactions race on the same order, exactly one insert commits.
type GormProcessedMessageRepository struct {
	db *gorm.DB
}

// NewGormProcessedMessageRepository creates a new GormProcessedMessageRepository
func NewGormProcessedMessageRepository(db *gorm.DB) *GormProcessedMessageRepository {
	return &GormProcessedMessageRepository{db: db}
}

// ExistsByOrderID reports whether a marker for the order already exists
func (r *GormProcessedMessageRepository) ExistsByOrderID(ctx context.Context, orderID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&stock.ProcessedMessage{}).
		Where("order_id = ?", orderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the marker. A unique-constraint violation means a
// concurrent transaction won the race for this order; it surfaces as
// CONFLICT so the caller can roll back and treat the order as handled.
// Requires the connection to be opened with TranslateError.
func (r *GormProcessedMessageRepository) Create(ctx context.Context, message *stock.ProcessedMessage) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewConflictError("order has already been processed")
		}
		return err
	}
	return nil
}

// Ensure GormProcessedMessageRepository implements ProcessedMessageRepository
var _ stock.ProcessedMessageRepository = (*GormProcessedMessageRepository)(nil)
