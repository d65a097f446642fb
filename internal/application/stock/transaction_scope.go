package stock

import (
	"context"
	"sync"

	"github.com/wms/inventory/internal/domain/stock"
	"github.com/wms/inventory/internal/domain/warehouse"
)

// TransactionScope provides transactional access to the stock repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically. This is the "atomic unit" every ledger mutation, every
// reservation and the idempotency gate run inside.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories scoped to
// one transaction. All repositories returned share the same underlying
// database transaction.
//
// Zones is included read-only: the zone capacity bound must be evaluated
// against the same snapshot the stock mutation commits into.
type TransactionalRepositories interface {
	StockRecords() stock.StockRecordRepository
	Reservations() stock.ReservationRepository
	Transactions() stock.TransactionRepository
	ProcessedMessages() stock.ProcessedMessageRepository
	Zones() warehouse.ZoneRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests driving the services with fakes.
// Execute serializes callers the way row locks serialize the real
// transactions, so concurrent service calls see consistent state.
type NoOpTransactionScope struct {
	mu                sync.Mutex
	stockRecords      stock.StockRecordRepository
	reservations      stock.ReservationRepository
	transactions      stock.TransactionRepository
	processedMessages stock.ProcessedMessageRepository
	zones             warehouse.ZoneRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories.
func NewNoOpTransactionScope(
	stockRecords stock.StockRecordRepository,
	reservations stock.ReservationRepository,
	transactions stock.TransactionRepository,
	processedMessages stock.ProcessedMessageRepository,
	zones warehouse.ZoneRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		stockRecords:      stockRecords,
		reservations:      reservations,
		transactions:      transactions,
		processedMessages: processedMessages,
		zones:             zones,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

// StockRecords returns the stock record repository.
func (s *NoOpTransactionScope) StockRecords() stock.StockRecordRepository {
	return s.stockRecords
}

// Reservations returns the reservation repository.
func (s *NoOpTransactionScope) Reservations() stock.ReservationRepository {
	return s.reservations
}

// Transactions returns the audit log repository.
func (s *NoOpTransactionScope) Transactions() stock.TransactionRepository {
	return s.transactions
}

// ProcessedMessages returns the idempotency marker repository.
func (s *NoOpTransactionScope) ProcessedMessages() stock.ProcessedMessageRepository {
	return s.processedMessages
}

// Zones returns the zone repository.
func (s *NoOpTransactionScope) Zones() warehouse.ZoneRepository {
	return s.zones
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
