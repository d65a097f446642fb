package stock

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/inventory/internal/domain/stock"
)

// The ledger bound 0 <= reserved <= on_hand must survive any
// interleaving of reservations and releases. These tests hammer one
// record from many goroutines; in production the same serialization is
// provided by row locks and the optimistic version check.

func TestReservationService_ConcurrentReservationsNeverOversell(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	h := seedZone(t, env, 1000)
	record := seedRecord(t, env, h, "PC-001", 100)
	svc := newReservationService(env)

	// 20 orders of 7 units demand 140 against 100 on hand.
	const orders = 20
	var (
		mu      sync.Mutex
		results []*ReservationResult
		wg      sync.WaitGroup
	)
	for i := 0; i < orders; i++ {
		wg.Add(1)
		go func(orderID int64) {
			defer wg.Done()
			result, err := svc.ReserveStock(ctx, ReserveStockInput{
				OrderID:        orderID,
				ProductColorID: "PC-001",
				Quantity:       7,
			})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}(int64(i + 1))
	}
	wg.Wait()

	require.Len(t, results, orders)

	assert.GreaterOrEqual(t, record.Reserved, int64(0))
	assert.LessOrEqual(t, record.Reserved, record.OnHand)
	assert.Equal(t, record.OnHand, record.Reserved, "over-demand must drain the record exactly, never past it")

	var totalReserved int64
	for _, result := range results {
		assert.LessOrEqual(t, result.TotalReserved, result.Requested)
		totalReserved += result.TotalReserved
	}
	assert.Equal(t, record.Reserved, totalReserved, "the record's reserved count must equal the sum of what orders were promised")
}

func TestReservationService_ConcurrentReserveReleaseKeepsLedgerBounds(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	h := seedZone(t, env, 1000)
	record := seedRecord(t, env, h, "PC-001", 50)
	svc := newReservationService(env)

	const orders = 10
	var wg sync.WaitGroup
	for i := 0; i < orders; i++ {
		wg.Add(1)
		go func(orderID int64) {
			defer wg.Done()
			_, err := svc.ReserveStock(ctx, ReserveStockInput{
				OrderID:        orderID,
				ProductColorID: "PC-001",
				Quantity:       5,
			})
			assert.NoError(t, err)
		}(int64(i + 1))
	}
	wg.Wait()

	require.Equal(t, int64(50), record.Reserved)
	require.Equal(t, orders, env.reservations.count())

	for i := 0; i < orders; i++ {
		wg.Add(1)
		go func(orderID int64) {
			defer wg.Done()
			assert.NoError(t, svc.ReleaseReservedStock(ctx, orderID))
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, int64(0), record.Reserved)
	assert.Equal(t, int64(50), record.OnHand, "releases must return units to the pool, not create or destroy them")
	assert.Equal(t, 0, env.reservations.count())
	assert.Len(t, env.transactions.byType(stock.TransactionTypeReserve), orders)
	assert.Len(t, env.transactions.byType(stock.TransactionTypeRelease), orders)
}

func TestReservationService_MixedStormSettlesClean(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	h := seedZone(t, env, 1000)
	record := seedRecord(t, env, h, "PC-001", 30)
	svc := newReservationService(env)

	// Each order reserves and immediately releases while 19 others do
	// the same. Demand outstrips supply, so some reservations are
	// partial or empty; the release path must stay safe for all of them.
	const orders = 20
	var wg sync.WaitGroup
	for i := 0; i < orders; i++ {
		wg.Add(1)
		go func(orderID int64) {
			defer wg.Done()
			_, err := svc.ReserveStock(ctx, ReserveStockInput{
				OrderID:        orderID,
				ProductColorID: "PC-001",
				Quantity:       3,
			})
			if !assert.NoError(t, err) {
				return
			}
			assert.NoError(t, svc.ReleaseReservedStock(ctx, orderID))
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, int64(0), record.Reserved)
	assert.Equal(t, int64(30), record.OnHand)
	assert.Equal(t, 0, env.reservations.count())
}
