package stock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wms/inventory/internal/domain/shared"
	"github.com/wms/inventory/internal/domain/stock"
	"github.com/wms/inventory/internal/domain/warehouse"
)

// In-memory repository fakes backing the NoOpTransactionScope. They
// keep live pointers, so mutations made by services are visible without
// a round trip; good enough for service-level behavior tests.

type fakeStockRecordRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*stock.StockRecord
}

func newFakeStockRecordRepo() *fakeStockRecordRepo {
	return &fakeStockRecordRepo{records: make(map[uuid.UUID]*stock.StockRecord)}
}

func (r *fakeStockRecordRepo) add(record *stock.StockRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = record
}

func (r *fakeStockRecordRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record, ok := r.records[id]; ok {
		return record, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeStockRecordRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*stock.StockRecord, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeStockRecordRepo) FindByLocationAndProduct(_ context.Context, locationID uuid.UUID, productColorID string) (*stock.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.LocationID == locationID && record.ProductColorID == productColorID {
			return record, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeStockRecordRepo) FindByLocationAndProductForUpdate(ctx context.Context, locationID uuid.UUID, productColorID string) (*stock.StockRecord, error) {
	return r.FindByLocationAndProduct(ctx, locationID, productColorID)
}

func (r *fakeStockRecordRepo) FindByProduct(_ context.Context, productColorID string) ([]stock.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []stock.StockRecord
	for _, record := range r.records {
		if record.ProductColorID == productColorID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (r *fakeStockRecordRepo) FindAvailableByProductForUpdate(_ context.Context, productColorID string) ([]*stock.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*stock.StockRecord
	for _, record := range r.records {
		if record.ProductColorID == productColorID && record.Available() > 0 {
			out = append(out, record)
		}
	}
	return out, nil
}

func (r *fakeStockRecordRepo) FindBelowMinimum(_ context.Context) ([]stock.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []stock.StockRecord
	for _, record := range r.records {
		if record.IsBelowMinimum() {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (r *fakeStockRecordRepo) FindAll(_ context.Context, _ shared.Filter) ([]stock.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]stock.StockRecord, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, *record)
	}
	return out, nil
}

func (r *fakeStockRecordRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.records)), nil
}

func (r *fakeStockRecordRepo) SumOnHandByZone(_ context.Context, zoneID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, record := range r.records {
		if record.ZoneID == zoneID {
			sum += record.OnHand
		}
	}
	return sum, nil
}

func (r *fakeStockRecordRepo) SumOnHandByProduct(_ context.Context, productColorID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, record := range r.records {
		if record.ProductColorID == productColorID {
			sum += record.OnHand
		}
	}
	return sum, nil
}

func (r *fakeStockRecordRepo) SumAvailableByProduct(_ context.Context, productColorID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, record := range r.records {
		if record.ProductColorID == productColorID {
			sum += record.Available()
		}
	}
	return sum, nil
}

func (r *fakeStockRecordRepo) Save(_ context.Context, record *stock.StockRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = record
	return nil
}

func (r *fakeStockRecordRepo) SaveWithLock(ctx context.Context, record *stock.StockRecord) error {
	return r.Save(ctx, record)
}

func (r *fakeStockRecordRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

type fakeReservationRepo struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]stock.Reservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: make(map[uuid.UUID]stock.Reservation)}
}

func (r *fakeReservationRepo) FindByOrderID(_ context.Context, orderID int64) ([]stock.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []stock.Reservation
	for _, res := range r.reservations {
		if res.OrderID == orderID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) FindByOrderIDForUpdate(ctx context.Context, orderID int64) ([]stock.Reservation, error) {
	return r.FindByOrderID(ctx, orderID)
}

func (r *fakeReservationRepo) Save(_ context.Context, reservation *stock.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reservations[reservation.ID] = *reservation
	return nil
}

func (r *fakeReservationRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reservations, id)
	return nil
}

func (r *fakeReservationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reservations)
}

type fakeTransactionRepo struct {
	mu  sync.Mutex
	log []stock.StockTransaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{}
}

func (r *fakeTransactionRepo) Save(_ context.Context, tx *stock.StockTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, *tx)
	return nil
}

func (r *fakeTransactionRepo) FindByFilter(_ context.Context, filter stock.TransactionFilter) ([]stock.StockTransaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []stock.StockTransaction
	for _, tx := range r.log {
		if filter.ProductColorID != "" && tx.ProductColorID != filter.ProductColorID {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		out = append(out, tx)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTransactionRepo) byType(txType stock.TransactionType) []stock.StockTransaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []stock.StockTransaction
	for _, tx := range r.log {
		if tx.Type == txType {
			out = append(out, tx)
		}
	}
	return out
}

type fakeProcessedMessageRepo struct {
	mu     sync.Mutex
	orders map[int64]struct{}
}

func newFakeProcessedMessageRepo() *fakeProcessedMessageRepo {
	return &fakeProcessedMessageRepo{orders: make(map[int64]struct{})}
}

func (r *fakeProcessedMessageRepo) ExistsByOrderID(_ context.Context, orderID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.orders[orderID]
	return ok, nil
}

func (r *fakeProcessedMessageRepo) Create(_ context.Context, message *stock.ProcessedMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[message.OrderID]; ok {
		return shared.NewConflictError("order already processed")
	}
	r.orders[message.OrderID] = struct{}{}
	return nil
}

func (r *fakeProcessedMessageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

type fakeZoneRepo struct {
	mu    sync.Mutex
	zones map[uuid.UUID]*warehouse.Zone
}

func newFakeZoneRepo() *fakeZoneRepo {
	return &fakeZoneRepo{zones: make(map[uuid.UUID]*warehouse.Zone)}
}

func (r *fakeZoneRepo) add(z *warehouse.Zone) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.zones[z.ID] = z
}

func (r *fakeZoneRepo) FindByID(_ context.Context, id uuid.UUID) (*warehouse.Zone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if z, ok := r.zones[id]; ok {
		return z, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeZoneRepo) FindByWarehouse(_ context.Context, warehouseID uuid.UUID) ([]warehouse.Zone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []warehouse.Zone
	for _, z := range r.zones {
		if z.WarehouseID == warehouseID {
			out = append(out, *z)
		}
	}
	return out, nil
}

func (r *fakeZoneRepo) Save(_ context.Context, z *warehouse.Zone) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.zones[z.ID] = z
	return nil
}

func (r *fakeZoneRepo) SaveWithLock(ctx context.Context, z *warehouse.Zone) error {
	return r.Save(ctx, z)
}

func (r *fakeZoneRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.zones, id)
	return nil
}

type fakeLocationRepo struct {
	mu        sync.Mutex
	locations map[uuid.UUID]*warehouse.StorageLocation
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{locations: make(map[uuid.UUID]*warehouse.StorageLocation)}
}

func (r *fakeLocationRepo) add(l *warehouse.StorageLocation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations[l.ID] = l
}

func (r *fakeLocationRepo) FindByID(_ context.Context, id uuid.UUID) (*warehouse.StorageLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.locations[id]; ok {
		return l, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeLocationRepo) FindByCode(_ context.Context, warehouseID uuid.UUID, code string) (*warehouse.StorageLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.locations {
		if l.WarehouseID == warehouseID && l.Code == code {
			return l, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeLocationRepo) FindByZone(_ context.Context, zoneID uuid.UUID) ([]warehouse.StorageLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []warehouse.StorageLocation
	for _, l := range r.locations {
		if l.ZoneID == zoneID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeLocationRepo) ExistsByCode(ctx context.Context, warehouseID uuid.UUID, code string) (bool, error) {
	if _, err := r.FindByCode(ctx, warehouseID, code); err != nil {
		return false, nil
	}
	return true, nil
}

func (r *fakeLocationRepo) Save(_ context.Context, l *warehouse.StorageLocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations[l.ID] = l
	return nil
}

func (r *fakeLocationRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locations, id)
	return nil
}

// fakeIdempotencyStore mirrors the Redis fast path
type fakeIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{keys: make(map[string]struct{})}
}

func (s *fakeIdempotencyStore) MarkProcessed(_ context.Context, messageID string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[messageID]; ok {
		return false, nil
	}
	s.keys[messageID] = struct{}{}
	return true, nil
}

func (s *fakeIdempotencyStore) IsProcessed(_ context.Context, messageID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[messageID]
	return ok, nil
}

func (s *fakeIdempotencyStore) Close() error { return nil }

// testEnv bundles the fakes behind a NoOpTransactionScope
type testEnv struct {
	records      *fakeStockRecordRepo
	reservations *fakeReservationRepo
	transactions *fakeTransactionRepo
	processed    *fakeProcessedMessageRepo
	zones        *fakeZoneRepo
	locations    *fakeLocationRepo
	scope        *NoOpTransactionScope
}

func newTestEnv() *testEnv {
	env := &testEnv{
		records:      newFakeStockRecordRepo(),
		reservations: newFakeReservationRepo(),
		transactions: newFakeTransactionRepo(),
		processed:    newFakeProcessedMessageRepo(),
		zones:        newFakeZoneRepo(),
		locations:    newFakeLocationRepo(),
	}
	env.scope = NewNoOpTransactionScope(env.records, env.reservations, env.transactions, env.processed, env.zones)
	return env
}
