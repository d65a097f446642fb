package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/inventory/internal/domain/shared"
	"github.com/wms/inventory/internal/domain/stock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB creates a GORM connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func stockRecordColumns() []string {
	return []string{
		"id", "created_at", "updated_at", "deleted_at", "version",
		"product_color_id", "location_id", "zone_id", "warehouse_id",
		"on_hand", "reserved", "min_quantity", "max_quantity", "status",
	}
}

func stockRecordRow(rows *sqlmock.Rows, id uuid.UUID, productColorID string, onHand, reserved int64) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id, now, now, nil, 1,
		productColorID, uuid.New(), uuid.New(), uuid.New(),
		onHand, reserved, 0, 0, "active",
	)
}

func TestGormStockRecordRepository_FindByID(t *testing.T) {
	t.Run("finds existing record", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockRecordRepository(gormDB)

		recordID := uuid.New()
		rows := stockRecordRow(sqlmock.NewRows(stockRecordColumns()), recordID, "PC-001", 10, 3)

		mock.ExpectQuery(`SELECT \* FROM "stock_records" WHERE id = \$1`).
			WithArgs(recordID, 1).
			WillReturnRows(rows)

		record, err := repo.FindByID(context.Background(), recordID)

		require.NoError(t, err)
		assert.Equal(t, recordID, record.ID)
		assert.Equal(t, "PC-001", record.ProductColorID)
		assert.Equal(t, int64(7), record.Available())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing record to NOT_FOUND", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockRecordRepository(gormDB)

		recordID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "stock_records" WHERE id = \$1`).
			WithArgs(recordID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		record, err := repo.FindByID(context.Background(), recordID)

		assert.Nil(t, record)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockRecordRepository_FindAvailableByProductForUpdate(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormStockRecordRepository(gormDB)

	rows := sqlmock.NewRows(stockRecordColumns())
	stockRecordRow(rows, uuid.New(), "PC-001", 10, 3)
	stockRecordRow(rows, uuid.New(), "PC-001", 5, 0)

	mock.ExpectQuery(`SELECT \* FROM "stock_records" WHERE .*FOR UPDATE`).
		WillReturnRows(rows)

	records, err := repo.FindAvailableByProductForUpdate(context.Background(), "PC-001")

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(7), records[0].Available())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStockRecordRepository_SaveWithLock(t *testing.T) {
	t.Run("persists when the version matches", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockRecordRepository(gormDB)

		record, err := stock.NewStockRecord("PC-001", uuid.New(), uuid.New(), uuid.New(), 10, 0, 0)
		require.NoError(t, err)
		require.NoError(t, record.Reserve(4))

		mock.ExpectExec(`UPDATE "stock_records" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SaveWithLock(context.Background(), record))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version fails with CONCURRENCY_CONFLICT", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockRecordRepository(gormDB)

		record, err := stock.NewStockRecord("PC-001", uuid.New(), uuid.New(), uuid.New(), 10, 0, 0)
		require.NoError(t, err)
		require.NoError(t, record.Reserve(4))

		mock.ExpectExec(`UPDATE "stock_records" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.SaveWithLock(context.Background(), record)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockRecordRepository_SumOnHandByZone(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormStockRecordRepository(gormDB)

	zoneID := uuid.New()
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(on_hand\), 0\) as total FROM "stock_records"`).
		WithArgs(zoneID).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(95))

	total, err := repo.SumOnHandByZone(context.Background(), zoneID)

	require.NoError(t, err)
	assert.Equal(t, int64(95), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
