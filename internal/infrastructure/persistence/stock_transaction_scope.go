package persistence

import (
	"context"

	appstock "github.com/wms/inventory/internal/application/stock"
	"github.com/wms/inventory/internal/domain/stock"
	"github.com/wms/inventory/internal/domain/warehouse"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Everything the closure does through the provided repositories runs on
// one *gorm.DB transaction and commits or rolls back as a unit.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appstock.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides repositories bound to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// StockRecords returns a stock record repository bound to the transaction
func (r *gormTransactionalRepositories) StockRecords() stock.StockRecordRepository {
	return NewGormStockRecordRepository(r.tx)
}

// Reservations returns a reservation repository bound to the transaction
func (r *gormTransactionalRepositories) Reservations() stock.ReservationRepository {
	return NewGormReservationRepository(r.tx)
}

// Transactions returns an audit log repository bound to the transaction
func (r *gormTransactionalRepositories) Transactions() stock.TransactionRepository {
	return NewGormStockTransactionRepository(r.tx)
}

// ProcessedMessages returns an idempotency marker repository bound to the transaction
func (r *gormTransactionalRepositories) ProcessedMessages() stock.ProcessedMessageRepository {
	return NewGormProcessedMessageRepository(r.tx)
}

// Zones returns a zone repository bound to the transaction
func (r *gormTransactionalRepositories) Zones() warehouse.ZoneRepository {
	return NewGormZoneRepository(r.tx)
}

// Ensure the implementations satisfy the application interfaces
var _ appstock.TransactionScope = (*GormTransactionScope)(nil)
var _ appstock.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
