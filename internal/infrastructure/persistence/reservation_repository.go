package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/wms/inventory/internal/domain/shared"
	"github.com/wms/inventory/internal/domain/stock"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReservationRepository implements ReservationRepository using GORM
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// FindByOrderID finds all reservations held for an order. An order with no
// reservations yields an empty slice, not an error.
func (r *GormReservationRepository) FindByOrderID(ctx context.Context, orderID int64) ([]stock.Reservation, error) {
	var reservations []stock.Reservation
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("reserved_at ASC").
		Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// FindByOrderIDForUpdate is FindByOrderID with row locks, for the release
// path that is about to delete the rows it reads
func (r *GormReservationRepository) FindByOrderIDForUpdate(ctx context.Context, orderID int64) ([]stock.Reservation, error) {
	var reservations []stock.Reservation
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ?", orderID).
		Order("reserved_at ASC").
		Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// Save saves a reservation
func (r *GormReservationRepository) Save(ctx context.Context, reservation *stock.Reservation) error {
	return r.db.WithContext(ctx).Save(reservation).Error
}

// Delete removes a reservation
func (r *GormReservationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&stock.Reservation{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormReservationRepository implements ReservationRepository
var _ stock.ReservationRepository = (*GormReservationRepository)(nil)
