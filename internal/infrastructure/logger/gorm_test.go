package logger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func selectStockRecords() (string, int64) {
	return "SELECT * FROM stock_records WHERE deleted_at IS NULL", 3
}

func TestNewGormLogger_Defaults(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Warn)

	assert.Equal(t, gormlogger.Warn, gl.logLevel)
	assert.Equal(t, 200*time.Millisecond, gl.slowThreshold)
	assert.True(t, gl.ignoreRecordNotFoundError)
}

func TestNewGormLogger_Options(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Info,
		WithSlowThreshold(time.Second),
		WithIgnoreRecordNotFoundError(false),
	)

	assert.Equal(t, time.Second, gl.slowThreshold)
	assert.False(t, gl.ignoreRecordNotFoundError)
}

func TestGormLogger_LogMode(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Warn)

	quiet := gl.LogMode(gormlogger.Silent)

	// LogMode clones; the original keeps its level
	assert.Equal(t, gormlogger.Warn, gl.logLevel)
	assert.Equal(t, gormlogger.Silent, quiet.(*GormLogger).logLevel)
}

func TestGormLogger_LevelGates(t *testing.T) {
	ctx := context.Background()

	gl, recorded := newObservedGormLogger(gormlogger.Error)
	gl.Info(ctx, "migrating %s", "stock_records")
	gl.Warn(ctx, "connection pool at %d", 90)
	assert.Equal(t, 0, recorded.Len())

	gl.Error(ctx, "connect failed: %v", assert.AnError)
	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, zapcore.ErrorLevel, recorded.All()[0].Level)

	verbose, chatty := newObservedGormLogger(gormlogger.Info)
	verbose.Info(ctx, "migrating %s", "stock_records")
	verbose.Warn(ctx, "connection pool at %d", 90)
	assert.Equal(t, 2, chatty.Len())
}

func TestGormLogger_Trace_Error(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), selectStockRecords, assert.AnError)

	require.Equal(t, 1, recorded.Len())
	entry := recorded.All()[0]
	assert.Equal(t, "SQL Error", entry.Message)
	fields := entry.ContextMap()
	assert.Contains(t, fields["sql"], "stock_records")
	assert.Equal(t, int64(3), fields["rows"])
}

func TestGormLogger_Trace_RecordNotFoundIgnored(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), selectStockRecords, gormlogger.ErrRecordNotFound)

	assert.Equal(t, 0, recorded.Len())
}

func TestGormLogger_Trace_RecordNotFoundLoggedWhenConfigured(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Error, WithIgnoreRecordNotFoundError(false))

	gl.Trace(context.Background(), time.Now(), selectStockRecords, gormlogger.ErrRecordNotFound)

	assert.Equal(t, 1, recorded.Len())
}

func TestGormLogger_Trace_SlowQuery(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Millisecond))

	gl.Trace(context.Background(), time.Now().Add(-time.Second), selectStockRecords, nil)

	require.Equal(t, 1, recorded.Len())
	entry := recorded.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Contains(t, entry.Message, "SLOW SQL")
}

func TestGormLogger_Trace_NormalQuery(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Info)

	gl.Trace(context.Background(), time.Now(), selectStockRecords, nil)

	require.Equal(t, 1, recorded.Len())
	entry := recorded.All()[0]
	assert.Equal(t, "SQL Query", entry.Message)
	assert.Equal(t, zapcore.DebugLevel, entry.Level)
}

func TestGormLogger_Trace_Silent(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), selectStockRecords, nil)

	assert.Equal(t, 0, recorded.Len())
}

func TestGormLogger_Trace_CarriesRequestID(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Info)

	ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-1138")
	gl.Trace(ctx, time.Now(), selectStockRecords, nil)

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "req-1138", recorded.All()[0].ContextMap()["request_id"])
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"bogus", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}

func TestGormLogger_ImplementsInterface(t *testing.T) {
	var _ gormlogger.Interface = NewGormLogger(zap.NewNop(), gormlogger.Warn)
}
