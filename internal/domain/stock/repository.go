package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wms/inventory/internal/domain/shared"
)

// StockRecordRepository persists stock records. ForUpdate variants must
// be called inside a transaction; they take row locks so concurrent
// mutations of the same record serialize.
type StockRecordRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockRecord, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*StockRecord, error)
	FindByLocationAndProduct(ctx context.Context, locationID uuid.UUID, productColorID string) (*StockRecord, error)
	FindByLocationAndProductForUpdate(ctx context.Context, locationID uuid.UUID, productColorID string) (*StockRecord, error)
	FindByProduct(ctx context.Context, productColorID string) ([]StockRecord, error)
	// FindAvailableByProductForUpdate returns every active record for the
	// product with available > 0, locked for the current transaction.
	FindAvailableByProductForUpdate(ctx context.Context, productColorID string) ([]*StockRecord, error)
	FindBelowMinimum(ctx context.Context) ([]StockRecord, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]StockRecord, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	SumOnHandByZone(ctx context.Context, zoneID uuid.UUID) (int64, error)
	SumOnHandByProduct(ctx context.Context, productColorID string) (int64, error)
	SumAvailableByProduct(ctx context.Context, productColorID string) (int64, error)

	Save(ctx context.Context, record *StockRecord) error
	// SaveWithLock persists the record guarded by its version column and
	// fails with CONCURRENCY_CONFLICT if another writer got there first.
	SaveWithLock(ctx context.Context, record *StockRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReservationRepository persists reservations
type ReservationRepository interface {
	FindByOrderID(ctx context.Context, orderID int64) ([]Reservation, error)
	FindByOrderIDForUpdate(ctx context.Context, orderID int64) ([]Reservation, error)
	Save(ctx context.Context, reservation *Reservation) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TransactionFilter narrows transaction history queries
type TransactionFilter struct {
	ProductColorID string
	WarehouseID    *uuid.UUID
	ZoneID         *uuid.UUID
	Type           TransactionType
	From           *time.Time
	To             *time.Time
	Page           int
	PageSize       int
}

// TransactionRepository persists the append-only audit log. There is
// deliberately no update or delete: rows are immutable once written.
type TransactionRepository interface {
	Save(ctx context.Context, tx *StockTransaction) error
	FindByFilter(ctx context.Context, filter TransactionFilter) ([]StockTransaction, int64, error)
}

// ProcessedMessageRepository persists idempotency markers. Create must
// surface a unique-constraint violation as CONFLICT so the caller can
// treat a concurrent duplicate as "already processed".
type ProcessedMessageRepository interface {
	ExistsByOrderID(ctx context.Context, orderID int64) (bool, error)
	Create(ctx context.Context, message *ProcessedMessage) error
}
