package stock

import (
	"context"

	"github.com/wms/inventory/internal/domain/shared"
	"github.com/wms/inventory/internal/domain/stock"
	"go.uber.org/zap"
)

// LowStockScanner is a periodic read-only pass over the ledger that
// flags records at or under their minimum threshold. It never mutates
// stock; downstream alerting hangs off the published events.
type LowStockScanner struct {
	records        stock.StockRecordRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewLowStockScanner creates a new LowStockScanner
func NewLowStockScanner(records stock.StockRecordRepository, eventPublisher shared.EventPublisher, logger *zap.Logger) *LowStockScanner {
	return &LowStockScanner{
		records:        records,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Scan reports every record below its minimum threshold and returns the
// number flagged.
func (s *LowStockScanner) Scan(ctx context.Context) (int, error) {
	records, err := s.records.FindBelowMinimum(ctx)
	if err != nil {
		return 0, err
	}

	for i := range records {
		record := &records[i]
		s.logger.Warn("stock below minimum threshold",
			zap.String("product_color_id", record.ProductColorID),
			zap.String("warehouse_id", record.WarehouseID.String()),
			zap.Int64("on_hand", record.OnHand),
			zap.Int64("min_quantity", record.MinQuantity))

		if s.eventPublisher != nil {
			event := stock.NewLowStockDetectedEvent(record)
			if err := s.eventPublisher.Publish(ctx, event); err != nil {
				s.logger.Warn("failed to publish low stock event", zap.Error(err))
			}
		}
	}

	return len(records), nil
}
