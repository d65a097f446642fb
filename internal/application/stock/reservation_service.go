package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/wms/inventory/internal/domain/shared"
	"github.com/wms/inventory/internal/domain/stock"
	"github.com/wms/inventory/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ReserveStockInput carries one product's reservation request
type ReserveStockInput struct {
	OrderID              int64
	ProductColorID       string
	Quantity             int64
	PreferredWarehouseID uuid.UUID
	WarehousePriority    []uuid.UUID
}

// ReservationLine is one contribution to a reservation result
type ReservationLine struct {
	WarehouseID   uuid.UUID `json:"warehouse_id"`
	LocationID    uuid.UUID `json:"location_id"`
	StockRecordID uuid.UUID `json:"stock_record_id"`
	Quantity      int64     `json:"quantity"`
}

// ReservationResult reports what a reservation attempt actually held.
// Partial and even zero fulfillment are valid outcomes, not errors;
// rejecting an order over a shortfall is the caller's policy decision.
type ReservationResult struct {
	OrderID        int64             `json:"order_id"`
	ProductColorID string            `json:"product_color_id"`
	Requested      int64             `json:"requested"`
	TotalReserved  int64             `json:"total_reserved"`
	Shortfall      int64             `json:"shortfall"`
	Lines          []ReservationLine `json:"lines"`
}

// ReservationService satisfies reservation requests by spreading them
// across candidate stock records and records the inverse release path.
type ReservationService struct {
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewReservationService creates a new ReservationService
func NewReservationService(txScope TransactionScope, logger *zap.Logger) *ReservationService {
	return &ReservationService{
		txScope: txScope,
		logger:  logger,
	}
}

// SetEventPublisher sets the publisher for domain events
func (s *ReservationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ReserveStock runs one reservation in its own atomic unit. Used by the
// synchronous API path; the order-created consumer instead calls
// ReserveInScope so all items of one order share a single unit.
func (s *ReservationService) ReserveStock(ctx context.Context, input ReserveStockInput) (*ReservationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reservation", "reserve")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, input.OrderID,
		telemetry.SpanAttrProductColorID, input.ProductColorID,
		telemetry.SpanAttrQuantity, input.Quantity,
	)

	var (
		result  *ReservationResult
		touched []*stock.StockRecord
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		result, touched, err = s.reserveInScope(ctx, repos, input)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.AddEvent(span, "stock_reserved",
		"reserved", result.TotalReserved,
		"shortfall", result.Shortfall,
	)
	s.publishDomainEvents(ctx, touched)
	return result, nil
}

// ReserveInScope performs a reservation inside an already-open
// transaction scope. The caller owns the commit/rollback decision.
func (s *ReservationService) ReserveInScope(ctx context.Context, repos TransactionalRepositories, input ReserveStockInput) (*ReservationResult, error) {
	result, _, err := s.reserveInScope(ctx, repos, input)
	return result, err
}

func (s *ReservationService) reserveInScope(ctx context.Context, repos TransactionalRepositories, input ReserveStockInput) (*ReservationResult, []*stock.StockRecord, error) {
	if input.OrderID <= 0 {
		return nil, nil, shared.NewInvalidRequestError("order id must be positive")
	}

	candidates, err := repos.StockRecords().FindAvailableByProductForUpdate(ctx, input.ProductColorID)
	if err != nil {
		return nil, nil, err
	}

	plan, err := stock.PlanAllocation(input.ProductColorID, input.Quantity, candidates, stock.AllocationPolicy{
		PreferredWarehouseID: input.PreferredWarehouseID,
		WarehousePriority:    input.WarehousePriority,
	})
	if err != nil {
		return nil, nil, err
	}

	result := &ReservationResult{
		OrderID:        input.OrderID,
		ProductColorID: input.ProductColorID,
		Requested:      plan.Requested,
		TotalReserved:  plan.TotalAllocated,
		Shortfall:      plan.Shortfall,
		Lines:          make([]ReservationLine, 0, len(plan.Lines)),
	}

	touched := make([]*stock.StockRecord, 0, len(plan.Lines))
	for _, line := range plan.Lines {
		record := line.Record
		if err := record.Reserve(line.Quantity); err != nil {
			return nil, nil, err
		}
		if err := repos.StockRecords().SaveWithLock(ctx, record); err != nil {
			return nil, nil, err
		}

		reservation, err := stock.NewReservation(input.OrderID, input.ProductColorID, record, line.Quantity)
		if err != nil {
			return nil, nil, err
		}
		if err := repos.Reservations().Save(ctx, reservation); err != nil {
			return nil, nil, err
		}

		tx, err := stock.NewStockTransaction(stock.TransactionTypeReserve, record, line.Quantity)
		if err != nil {
			return nil, nil, err
		}
		if err := repos.Transactions().Save(ctx, tx.WithOrder(input.OrderID)); err != nil {
			return nil, nil, err
		}

		result.Lines = append(result.Lines, ReservationLine{
			WarehouseID:   record.WarehouseID,
			LocationID:    record.LocationID,
			StockRecordID: record.ID,
			Quantity:      line.Quantity,
		})
		touched = append(touched, record)
	}

	if result.TotalReserved < result.Requested {
		s.logger.Info("partial reservation",
			zap.Int64("order_id", input.OrderID),
			zap.String("product_color_id", input.ProductColorID),
			zap.Int64("requested", result.Requested),
			zap.Int64("reserved", result.TotalReserved),
			zap.Int64("shortfall", result.Shortfall))
	}

	return result, touched, nil
}

// ReleaseReservedStock returns every unit held for an order to the
// available pool and deletes the reservation rows. Calling it for an
// order with no reservations is a no-op: release must stay safe under
// redelivered cancellation events and repeated manual rollbacks.
func (s *ReservationService) ReleaseReservedStock(ctx context.Context, orderID int64) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "reservation", "release")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrOrderID, orderID)

	if orderID <= 0 {
		err := shared.NewInvalidRequestError("order id must be positive")
		telemetry.RecordError(span, err)
		return err
	}

	var touched []*stock.StockRecord
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		touched, err = s.releaseInScope(ctx, repos, orderID)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.publishDomainEvents(ctx, touched)
	return nil
}

// ReleaseInScope performs a release inside an already-open transaction scope.
func (s *ReservationService) ReleaseInScope(ctx context.Context, repos TransactionalRepositories, orderID int64) error {
	_, err := s.releaseInScope(ctx, repos, orderID)
	return err
}

func (s *ReservationService) releaseInScope(ctx context.Context, repos TransactionalRepositories, orderID int64) ([]*stock.StockRecord, error) {
	reservations, err := repos.Reservations().FindByOrderIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(reservations) == 0 {
		s.logger.Info("no reservations to release", zap.Int64("order_id", orderID))
		return nil, nil
	}

	touched := make([]*stock.StockRecord, 0, len(reservations))
	for i := range reservations {
		reservation := &reservations[i]

		record, err := repos.StockRecords().FindByIDForUpdate(ctx, reservation.StockRecordID)
		if err != nil {
			return nil, err
		}
		if err := record.Release(reservation.Quantity); err != nil {
			return nil, err
		}
		if err := repos.StockRecords().SaveWithLock(ctx, record); err != nil {
			return nil, err
		}

		tx, err := stock.NewStockTransaction(stock.TransactionTypeRelease, record, reservation.Quantity)
		if err != nil {
			return nil, err
		}
		if err := repos.Transactions().Save(ctx, tx.WithOrder(orderID)); err != nil {
			return nil, err
		}

		if err := repos.Reservations().Delete(ctx, reservation.ID); err != nil {
			return nil, err
		}
		touched = append(touched, record)
	}

	s.logger.Info("released reserved stock",
		zap.Int64("order_id", orderID),
		zap.Int("reservations", len(reservations)))

	return touched, nil
}

func (s *ReservationService) publishDomainEvents(ctx context.Context, records []*stock.StockRecord) {
	if s.eventPublisher == nil {
		return
	}
	for _, record := range records {
		events := record.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish domain events",
				zap.String("product_color_id", record.ProductColorID),
				zap.Error(err))
		}
		record.ClearDomainEvents()
	}
}
