package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wms/inventory/internal/domain/shared"
	"github.com/wms/inventory/internal/domain/stock"
	"go.uber.org/zap"
)

// OrderItem is one product/quantity pair of an order notification
type OrderItem struct {
	ProductColorID string `json:"product_color_id"`
	Quantity       int64  `json:"quantity"`
}

// OrderCreatedMessage is the inbound order-created notification.
// WarehouseID, when set, pins the warehouse the order system wants the
// stock drawn from first; allocation spills over to other warehouses
// only for the remainder.
type OrderCreatedMessage struct {
	OrderID     int64       `json:"order_id"`
	WarehouseID string      `json:"warehouse_id,omitempty"`
	Items       []OrderItem `json:"items"`
}

// OrderCancelledMessage is the inbound cancellation/rollback notification
type OrderCancelledMessage struct {
	OrderID int64 `json:"order_id"`
}

// OrderEventProcessor is the idempotency gate in front of the
// reservation engine. The upstream order system delivers at least once;
// this processor guarantees the reservations for one order are taken at
// most once.
//
// The durable gate is the ProcessedMessage row: checked and written in
// the same atomic unit as the reservations themselves, with its unique
// index resolving races between concurrent deliveries. The
// IdempotencyStore in front of it is only a fast path that lets an
// obvious redelivery skip the transaction entirely.
type OrderEventProcessor struct {
	txScope      TransactionScope
	reservations *ReservationService
	idemStore    shared.IdempotencyStore
	idemConfig   shared.IdempotencyConfig
	logger       *zap.Logger
}

// NewOrderEventProcessor creates a new OrderEventProcessor
func NewOrderEventProcessor(
	txScope TransactionScope,
	reservations *ReservationService,
	idemStore shared.IdempotencyStore,
	idemConfig shared.IdempotencyConfig,
	logger *zap.Logger,
) *OrderEventProcessor {
	return &OrderEventProcessor{
		txScope:      txScope,
		reservations: reservations,
		idemStore:    idemStore,
		idemConfig:   idemConfig,
		logger:       logger,
	}
}

// HandleOrderCreated reserves stock for every item of the order exactly
// once. A redelivered notification is skipped as a normal, logged
// outcome; a failed item rolls back the whole unit so a later retry
// starts clean.
func (p *OrderEventProcessor) HandleOrderCreated(ctx context.Context, msg OrderCreatedMessage) error {
	if msg.OrderID <= 0 {
		return shared.NewInvalidRequestError("order id must be positive")
	}
	if len(msg.Items) == 0 {
		return shared.NewInvalidRequestError("order has no items")
	}
	var preferredWarehouseID uuid.UUID
	if msg.WarehouseID != "" {
		id, err := uuid.Parse(msg.WarehouseID)
		if err != nil {
			return shared.NewInvalidRequestError("invalid warehouse id: " + msg.WarehouseID)
		}
		preferredWarehouseID = id
	}

	if p.fastPathProcessed(ctx, msg.OrderID) {
		p.logger.Info("order already processed, skipping",
			zap.Int64("order_id", msg.OrderID))
		return nil
	}

	results := make([]*ReservationResult, 0, len(msg.Items))
	err := p.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		processed, err := repos.ProcessedMessages().ExistsByOrderID(ctx, msg.OrderID)
		if err != nil {
			return err
		}
		if processed {
			return errAlreadyProcessed
		}

		for _, item := range msg.Items {
			result, err := p.reservations.ReserveInScope(ctx, repos, ReserveStockInput{
				OrderID:              msg.OrderID,
				ProductColorID:       item.ProductColorID,
				Quantity:             item.Quantity,
				PreferredWarehouseID: preferredWarehouseID,
			})
			if err != nil {
				return fmt.Errorf("reserve %s: %w", item.ProductColorID, err)
			}
			results = append(results, result)
		}

		marker, err := stock.NewProcessedMessage(msg.OrderID)
		if err != nil {
			return err
		}
		// A CONFLICT here means a concurrent delivery won the unique
		// index race; returning it rolls back our duplicate reservations.
		return repos.ProcessedMessages().Create(ctx, marker)
	})

	switch {
	case err == nil:
	case errors.Is(err, errAlreadyProcessed), errors.Is(err, shared.ErrConflict):
		p.logger.Info("order already processed, skipping",
			zap.Int64("order_id", msg.OrderID))
		return nil
	default:
		return err
	}

	p.markProcessedFastPath(ctx, msg.OrderID)

	for _, result := range results {
		p.logger.Info("stock reserved for order",
			zap.Int64("order_id", msg.OrderID),
			zap.String("product_color_id", result.ProductColorID),
			zap.Int64("requested", result.Requested),
			zap.Int64("reserved", result.TotalReserved),
			zap.Int64("shortfall", result.Shortfall))
	}
	return nil
}

// HandleOrderCancelled releases whatever the order still holds. Safe to
// call for unknown orders and safe to repeat.
func (p *OrderEventProcessor) HandleOrderCancelled(ctx context.Context, msg OrderCancelledMessage) error {
	if msg.OrderID <= 0 {
		return shared.NewInvalidRequestError("order id must be positive")
	}
	return p.reservations.ReleaseReservedStock(ctx, msg.OrderID)
}

// errAlreadyProcessed aborts the transaction without treating the
// rollback as a failure.
var errAlreadyProcessed = errors.New("order already processed")

func (p *OrderEventProcessor) fastPathProcessed(ctx context.Context, orderID int64) bool {
	if p.idemStore == nil || !p.idemConfig.Enabled {
		return false
	}
	processed, err := p.idemStore.IsProcessed(ctx, orderKey(orderID))
	if err != nil {
		p.logger.Warn("idempotency store check failed, falling through to database gate",
			zap.Int64("order_id", orderID), zap.Error(err))
		return false
	}
	return processed
}

func (p *OrderEventProcessor) markProcessedFastPath(ctx context.Context, orderID int64) {
	if p.idemStore == nil || !p.idemConfig.Enabled {
		return
	}
	if _, err := p.idemStore.MarkProcessed(ctx, orderKey(orderID), p.idemConfig.TTL); err != nil {
		p.logger.Warn("failed to mark order in idempotency store",
			zap.Int64("order_id", orderID), zap.Error(err))
	}
}

func orderKey(orderID int64) string {
	return fmt.Sprintf("order-created:%d", orderID)
}
