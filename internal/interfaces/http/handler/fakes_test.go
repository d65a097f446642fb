package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appstock "github.com/wms/inventory/internal/application/stock"
	appwarehouse "github.com/wms/inventory/internal/application/warehouse"
	"github.com/wms/inventory/internal/domain/shared"
	"github.com/wms/inventory/internal/domain/stock"
	"github.com/wms/inventory/internal/domain/warehouse"
)

// In-memory repositories backing real application services. Handlers are
// tested end to end through the gin engine, the same way requests flow
// in production.

type memStockRecordRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*stock.StockRecord
}

func newMemStockRecordRepo() *memStockRecordRepo {
	return &memStockRecordRepo{records: make(map[uuid.UUID]*stock.StockRecord)}
}

func (r *memStockRecordRepo) add(record *stock.StockRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = record
}

func (r *memStockRecordRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record, ok := r.records[id]; ok {
		return record, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memStockRecordRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*stock.StockRecord, error) {
	return r.FindByID(ctx, id)
}

func (r *memStockRecordRepo) FindByLocationAndProduct(_ context.Context, locationID uuid.UUID, productColorID string) (*stock.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.LocationID == locationID && record.ProductColorID == productColorID {
			return record, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memStockRecordRepo) FindByLocationAndProductForUpdate(ctx context.Context, locationID uuid.UUID, productColorID string) (*stock.StockRecord, error) {
	return r.FindByLocationAndProduct(ctx, locationID, productColorID)
}

func (r *memStockRecordRepo) FindByProduct(_ context.Context, productColorID string) ([]stock.StockRecord, error) {
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

func (r *memStockRecordRepo) FindAvailableByProductForUpdate(_ context.Context, productColorID string) ([]*stock.StockRecord, error) {
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

func (r *memStockRecordRepo) FindBelowMinimum(_ context.Context) ([]stock.StockRecord, error) {
	return nil, nil
}

func (r *memStockRecordRepo) FindAll(_ context.Context, _ shared.Filter) ([]stock.StockRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]stock.StockRecord, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, *record)
	}
	return out, nil
}

func (r *memStockRecordRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.records)), nil
}

func (r *memStockRecordRepo) SumOnHandByZone(_ context.Context, zoneID uuid.UUID) (int64, error) {
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

func (r *memStockRecordRepo) SumOnHandByProduct(_ context.Context, productColorID string) (int64, error) {
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

func (r *memStockRecordRepo) SumAvailableByProduct(_ context.Context, productColorID string) (int64, error) {
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

func (r *memStockRecordRepo) Save(_ context.Context, record *stock.StockRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = record
	return nil
}

func (r *memStockRecordRepo) SaveWithLock(ctx context.Context, record *stock.StockRecord) error {
	return r.Save(ctx, record)
}

func (r *memStockRecordRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

type memReservationRepo struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]stock.Reservation
}

func newMemReservationRepo() *memReservationRepo {
	return &memReservationRepo{reservations: make(map[uuid.UUID]stock.Reservation)}
}

func (r *memReservationRepo) FindByOrderID(_ context.Context, orderID int64) ([]stock.Reservation, error) {
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

func (r *memReservationRepo) FindByOrderIDForUpdate(ctx context.Context, orderID int64) ([]stock.Reservation, error) {
	return r.FindByOrderID(ctx, orderID)
}

func (r *memReservationRepo) Save(_ context.Context, reservation *stock.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reservations[reservation.ID] = *reservation
	return nil
}

func (r *memReservationRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reservations, id)
	return nil
}

type memTransactionRepo struct {
	mu  sync.Mutex
	log []stock.StockTransaction
}

func (r *memTransactionRepo) Save(_ context.Context, tx *stock.StockTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, *tx)
	return nil
}

func (r *memTransactionRepo) FindByFilter(_ context.Context, filter stock.TransactionFilter) ([]stock.StockTransaction, int64, error) {
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

type memProcessedMessageRepo struct {
	mu     sync.Mutex
	orders map[int64]struct{}
}

func newMemProcessedMessageRepo() *memProcessedMessageRepo {
	return &memProcessedMessageRepo{orders: make(map[int64]struct{})}
}

func (r *memProcessedMessageRepo) ExistsByOrderID(_ context.Context, orderID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.orders[orderID]
	return ok, nil
}

func (r *memProcessedMessageRepo) Create(_ context.Context, message *stock.ProcessedMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[message.OrderID]; ok {
		return shared.NewConflictError("order already processed")
	}
	r.orders[message.OrderID] = struct{}{}
	return nil
}

type memWarehouseRepo struct {
	mu         sync.Mutex
	warehouses map[uuid.UUID]*warehouse.Warehouse
}

func newMemWarehouseRepo() *memWarehouseRepo {
	return &memWarehouseRepo{warehouses: make(map[uuid.UUID]*warehouse.Warehouse)}
}

func (r *memWarehouseRepo) add(w *warehouse.Warehouse) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warehouses[w.ID] = w
}

func (r *memWarehouseRepo) FindByID(_ context.Context, id uuid.UUID) (*warehouse.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.warehouses[id]; ok {
		return w, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memWarehouseRepo) FindByCode(_ context.Context, code string) (*warehouse.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.warehouses {
		if w.Code == code {
			return w, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memWarehouseRepo) FindAll(_ context.Context, _ shared.Filter) ([]warehouse.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]warehouse.Warehouse, 0, len(r.warehouses))
	for _, w := range r.warehouses {
		out = append(out, *w)
	}
	return out, nil
}

func (r *memWarehouseRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.warehouses)), nil
}

func (r *memWarehouseRepo) Save(_ context.Context, w *warehouse.Warehouse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warehouses[w.ID] = w
	return nil
}

func (r *memWarehouseRepo) SaveWithLock(ctx context.Context, w *warehouse.Warehouse) error {
	return r.Save(ctx, w)
}

func (r *memWarehouseRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.warehouses[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.warehouses, id)
	return nil
}

type memZoneRepo struct {
	mu    sync.Mutex
	zones map[uuid.UUID]*warehouse.Zone
}

func newMemZoneRepo() *memZoneRepo {
	return &memZoneRepo{zones: make(map[uuid.UUID]*warehouse.Zone)}
}

func (r *memZoneRepo) add(z *warehouse.Zone) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.zones[z.ID] = z
}

func (r *memZoneRepo) FindByID(_ context.Context, id uuid.UUID) (*warehouse.Zone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if z, ok := r.zones[id]; ok {
		return z, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memZoneRepo) FindByWarehouse(_ context.Context, warehouseID uuid.UUID) ([]warehouse.Zone, error) {
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

func (r *memZoneRepo) Save(_ context.Context, z *warehouse.Zone) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.zones[z.ID] = z
	return nil
}

func (r *memZoneRepo) SaveWithLock(ctx context.Context, z *warehouse.Zone) error {
	return r.Save(ctx, z)
}

func (r *memZoneRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.zones, id)
	return nil
}

type memLocationRepo struct {
	mu        sync.Mutex
	locations map[uuid.UUID]*warehouse.StorageLocation
}

func newMemLocationRepo() *memLocationRepo {
	return &memLocationRepo{locations: make(map[uuid.UUID]*warehouse.StorageLocation)}
}

func (r *memLocationRepo) add(l *warehouse.StorageLocation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations[l.ID] = l
}

func (r *memLocationRepo) FindByID(_ context.Context, id uuid.UUID) (*warehouse.StorageLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.locations[id]; ok {
		return l, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memLocationRepo) FindByCode(_ context.Context, warehouseID uuid.UUID, code string) (*warehouse.StorageLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.locations {
		if l.WarehouseID == warehouseID && l.Code == code {
			return l, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memLocationRepo) FindByZone(_ context.Context, zoneID uuid.UUID) ([]warehouse.StorageLocation, error) {
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

func (r *memLocationRepo) ExistsByCode(ctx context.Context, warehouseID uuid.UUID, code string) (bool, error) {
	if _, err := r.FindByCode(ctx, warehouseID, code); err != nil {
		return false, nil
	}
	return true, nil
}

func (r *memLocationRepo) Save(_ context.Context, l *warehouse.StorageLocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations[l.ID] = l
	return nil
}

func (r *memLocationRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locations, id)
	return nil
}

// testEnv wires the fakes into real services behind a full gin engine
type testEnv struct {
	engine *gin.Engine

	records      *memStockRecordRepo
	reservations *memReservationRepo
	transactions *memTransactionRepo
	processed    *memProcessedMessageRepo
	warehouses   *memWarehouseRepo
	zones        *memZoneRepo
	locations    *memLocationRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		records:      newMemStockRecordRepo(),
		reservations: newMemReservationRepo(),
		transactions: &memTransactionRepo{},
		processed:    newMemProcessedMessageRepo(),
		warehouses:   newMemWarehouseRepo(),
		zones:        newMemZoneRepo(),
		locations:    newMemLocationRepo(),
	}

	scope := appstock.NewNoOpTransactionScope(
		env.records, env.reservations, env.transactions, env.processed, env.zones)
	log := zap.NewNop()

	stockService := appstock.NewStockService(env.records, env.transactions, env.locations, scope, log)
	reservationService := appstock.NewReservationService(scope, log)
	warehouseService := appwarehouse.NewWarehouseService(
		env.warehouses, env.zones, env.locations, env.records, log)

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewStockHandler(stockService, nil).RegisterRoutes(api)
	NewReservationHandler(reservationService).RegisterRoutes(api)
	NewWarehouseHandler(warehouseService).RegisterRoutes(api)
	NewSystemHandler(nil, "test").RegisterRoutes(api)

	env.engine = engine
	return env
}

// seedHierarchy creates a warehouse with one zone and one location and
// returns them for stock setup
func (env *testEnv) seedHierarchy(t *testing.T, zoneCapacity int64) (*warehouse.Warehouse, *warehouse.Zone, *warehouse.StorageLocation) {
	t.Helper()

	w, err := warehouse.NewWarehouse("WH-001", "Main", "store-1")
	if err != nil {
		t.Fatalf("seed warehouse: %v", err)
	}
	env.warehouses.add(w)

	z, err := warehouse.NewZone(w.ID, "Zone A", "A", zoneCapacity)
	if err != nil {
		t.Fatalf("seed zone: %v", err)
	}
	env.zones.add(z)

	l, err := warehouse.NewStorageLocation(w.ID, z.ID, z.Code, "R1", 1)
	if err != nil {
		t.Fatalf("seed location: %v", err)
	}
	env.locations.add(l)

	return w, z, l
}

func (env *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	env.engine.ServeHTTP(w, req)
	return w
}
