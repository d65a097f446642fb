package stock

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wms/inventory/internal/domain/shared"
	"github.com/wms/inventory/internal/domain/stock"
	"github.com/wms/inventory/internal/domain/warehouse"
	"github.com/wms/inventory/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// StockService is the application surface of the stock ledger. Every
// mutation runs inside one transaction scope and pairs the quantity
// change with its audit row; reads go straight to the repositories.
type StockService struct {
	records        stock.StockRecordRepository
	transactions   stock.TransactionRepository
	locations      warehouse.LocationRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(
	records stock.StockRecordRepository,
	transactions stock.TransactionRepository,
	locations warehouse.LocationRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *StockService {
	return &StockService{
		records:      records,
		transactions: transactions,
		locations:    locations,
		txScope:      txScope,
		logger:       logger,
	}
}

// SetEventPublisher sets the publisher for domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// UpsertStockInput carries the parameters for UpsertStock
type UpsertStockInput struct {
	ProductColorID string
	LocationID     uuid.UUID
	Quantity       int64
	MinQuantity    int64
	MaxQuantity    int64
	ActorID        string
}

// UpsertStock creates the stock record for a (location, product color)
// pair or overwrites its quantity and thresholds. A growing quantity
// counts against the zone capacity bound like any other inbound stock.
func (s *StockService) UpsertStock(ctx context.Context, input UpsertStockInput) (*stock.StockRecord, error) {
	if input.Quantity < 0 {
		return nil, shared.NewInvalidRequestError("quantity cannot be negative")
	}

	location, err := s.locations.FindByID(ctx, input.LocationID)
	if err != nil {
		return nil, err
	}

	var record *stock.StockRecord
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		zone, err := repos.Zones().FindByID(ctx, location.ZoneID)
		if err != nil {
			return shared.NewZoneNotFoundError(location.ZoneID.String())
		}

		existing, err := repos.StockRecords().FindByLocationAndProductForUpdate(ctx, input.LocationID, input.ProductColorID)
		switch {
		case err == nil:
			record = existing
		case isNotFound(err):
			record = nil
		default:
			return err
		}

		var delta int64
		if record == nil {
			delta = input.Quantity
		} else {
			delta = input.Quantity - record.OnHand
		}
		if delta > 0 {
			if err := s.checkZoneCapacity(ctx, repos, zone, delta); err != nil {
				return err
			}
		}

		if record == nil {
			record, err = stock.NewStockRecord(input.ProductColorID, location.ID, location.ZoneID, location.WarehouseID,
				input.Quantity, input.MinQuantity, input.MaxQuantity)
			if err != nil {
				return err
			}
			if err := repos.StockRecords().Save(ctx, record); err != nil {
				return err
			}
		} else {
			if err := record.SetThresholds(input.MinQuantity, input.MaxQuantity); err != nil {
				return err
			}
			if err := record.SetQuantity(input.Quantity); err != nil {
				return err
			}
			if err := repos.StockRecords().SaveWithLock(ctx, record); err != nil {
				return err
			}
		}

		return s.writeDeltaTransaction(ctx, repos, record, delta, input.ActorID)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, record)
	return record, nil
}

// IncreaseStock adds amount physical units to a stock record, bounded by
// the zone capacity. Violating the bound fails with WAREHOUSE_FULL and
// nothing is applied.
func (s *StockService) IncreaseStock(ctx context.Context, productColorID string, locationID uuid.UUID, amount int64, actorID string) (*stock.StockRecord, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "increase")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProductColorID, productColorID,
		telemetry.SpanAttrLocationID, locationID,
		telemetry.SpanAttrQuantity, amount,
	)

	if amount <= 0 {
		err := shared.NewInvalidRequestError("increase amount must be positive")
		telemetry.RecordError(span, err)
		return nil, err
	}

	var record *stock.StockRecord
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		record, err = repos.StockRecords().FindByLocationAndProductForUpdate(ctx, locationID, productColorID)
		if err != nil {
			return err
		}

		zone, err := repos.Zones().FindByID(ctx, record.ZoneID)
		if err != nil {
			return shared.NewZoneNotFoundError(record.ZoneID.String())
		}
		if err := s.checkZoneCapacity(ctx, repos, zone, amount); err != nil {
			return err
		}

		if err := record.Increase(amount); err != nil {
			return err
		}
		if err := repos.StockRecords().SaveWithLock(ctx, record); err != nil {
			return err
		}

		tx, err := stock.NewStockTransaction(stock.TransactionTypeImport, record, amount)
		if err != nil {
			return err
		}
		return repos.Transactions().Save(ctx, tx.WithActor(actorID))
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishDomainEvents(ctx, record)
	return record, nil
}

// DecreaseStock removes amount physical units. Reserved units are already
// promised to orders, so only the available portion may leave.
func (s *StockService) DecreaseStock(ctx context.Context, productColorID string, locationID uuid.UUID, amount int64, actorID string) (*stock.StockRecord, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "decrease")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProductColorID, productColorID,
		telemetry.SpanAttrLocationID, locationID,
		telemetry.SpanAttrQuantity, amount,
	)

	if amount <= 0 {
		err := shared.NewInvalidRequestError("decrease amount must be positive")
		telemetry.RecordError(span, err)
		return nil, err
	}

	var record *stock.StockRecord
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		record, err = repos.StockRecords().FindByLocationAndProductForUpdate(ctx, locationID, productColorID)
		if err != nil {
			return err
		}

		if err := record.Decrease(amount); err != nil {
			return err
		}
		if err := repos.StockRecords().SaveWithLock(ctx, record); err != nil {
			return err
		}

		tx, err := stock.NewStockTransaction(stock.TransactionTypeExport, record, amount)
		if err != nil {
			return err
		}
		return repos.Transactions().Save(ctx, tx.WithActor(actorID))
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishDomainEvents(ctx, record)
	return record, nil
}

// TransferStock moves amount units between two locations as one atomic
// unit, writing a TRANSFER_OUT/TRANSFER_IN pair. The destination zone's
// capacity bound applies as if the units arrived from outside.
func (s *StockService) TransferStock(ctx context.Context, productColorID string, fromLocationID, toLocationID uuid.UUID, amount int64, actorID string) error {
	if amount <= 0 {
		return shared.NewInvalidRequestError("transfer amount must be positive")
	}
	if fromLocationID == toLocationID {
		return shared.NewInvalidRequestError("transfer source and destination must differ")
	}

	var from, to *stock.StockRecord
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		// Lock in a fixed order so two opposite transfers cannot deadlock.
		firstLoc, secondLoc := fromLocationID, toLocationID
		if secondLoc.String() < firstLoc.String() {
			firstLoc, secondLoc = secondLoc, firstLoc
		}
		first, err := repos.StockRecords().FindByLocationAndProductForUpdate(ctx, firstLoc, productColorID)
		if err != nil {
			return err
		}
		second, err := repos.StockRecords().FindByLocationAndProductForUpdate(ctx, secondLoc, productColorID)
		if err != nil {
			return err
		}
		from, to = first, second
		if from.LocationID != fromLocationID {
			from, to = second, first
		}

		if from.ZoneID != to.ZoneID {
			zone, err := repos.Zones().FindByID(ctx, to.ZoneID)
			if err != nil {
				return shared.NewZoneNotFoundError(to.ZoneID.String())
			}
			if err := s.checkZoneCapacity(ctx, repos, zone, amount); err != nil {
				return err
			}
		}

		if err := from.Decrease(amount); err != nil {
			return err
		}
		if err := to.Increase(amount); err != nil {
			return err
		}
		if err := repos.StockRecords().SaveWithLock(ctx, from); err != nil {
			return err
		}
		if err := repos.StockRecords().SaveWithLock(ctx, to); err != nil {
			return err
		}

		outTx, err := stock.NewStockTransaction(stock.TransactionTypeTransferOut, from, amount)
		if err != nil {
			return err
		}
		if err := repos.Transactions().Save(ctx, outTx.WithActor(actorID)); err != nil {
			return err
		}
		inTx, err := stock.NewStockTransaction(stock.TransactionTypeTransferIn, to, amount)
		if err != nil {
			return err
		}
		return repos.Transactions().Save(ctx, inTx.WithActor(actorID))
	})
	if err != nil {
		return err
	}

	s.publishDomainEvents(ctx, from, to)
	return nil
}

// HasSufficientStock checks availability at a single location. A missing
// record means zero availability, not an error.
func (s *StockService) HasSufficientStock(ctx context.Context, productColorID string, locationID uuid.UUID, required int64) (bool, error) {
	if required <= 0 {
		return false, shared.NewInvalidRequestError("required quantity must be positive")
	}
	record, err := s.records.FindByLocationAndProduct(ctx, locationID, productColorID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return record.CanFulfill(required), nil
}

// HasSufficientGlobalStock checks availability summed across every
// location in every warehouse.
func (s *StockService) HasSufficientGlobalStock(ctx context.Context, productColorID string, required int64) (bool, error) {
	if required <= 0 {
		return false, shared.NewInvalidRequestError("required quantity must be positive")
	}
	available, err := s.records.SumAvailableByProduct(ctx, productColorID)
	if err != nil {
		return false, err
	}
	return available >= required, nil
}

// TotalStock returns the summed on-hand quantity for a product across
// all locations, ignoring reservations. Reporting only.
func (s *StockService) TotalStock(ctx context.Context, productColorID string) (int64, error) {
	return s.records.SumOnHandByProduct(ctx, productColorID)
}

// ListTransactions returns a paginated slice of the audit log
func (s *StockService) ListTransactions(ctx context.Context, filter stock.TransactionFilter) (shared.Paginated[stock.StockTransaction], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	items, total, err := s.transactions.FindByFilter(ctx, filter)
	if err != nil {
		return shared.Paginated[stock.StockTransaction]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// checkZoneCapacity recomputes the zone's summed on-hand quantity inside
// the current transaction and verifies additional units still fit.
func (s *StockService) checkZoneCapacity(ctx context.Context, repos TransactionalRepositories, zone *warehouse.Zone, additional int64) error {
	current, err := repos.StockRecords().SumOnHandByZone(ctx, zone.ID)
	if err != nil {
		return err
	}
	if !zone.HasCapacityFor(current, additional) {
		return shared.NewWarehouseFullError("zone capacity exceeded")
	}
	return nil
}

func (s *StockService) writeDeltaTransaction(ctx context.Context, repos TransactionalRepositories, record *stock.StockRecord, delta int64, actorID string) error {
	if delta == 0 {
		return nil
	}
	txType := stock.TransactionTypeImport
	quantity := delta
	if delta < 0 {
		txType = stock.TransactionTypeExport
		quantity = -delta
	}
	tx, err := stock.NewStockTransaction(txType, record, quantity)
	if err != nil {
		return err
	}
	return repos.Transactions().Save(ctx, tx.WithActor(actorID).WithNote("stock upsert"))
}

// publishDomainEvents flushes pending aggregate events after a commit.
// Publication is best-effort: the ledger change is already durable.
func (s *StockService) publishDomainEvents(ctx context.Context, records ...*stock.StockRecord) {
	if s.eventPublisher == nil {
		return
	}
	for _, record := range records {
		if record == nil {
			continue
		}
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

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
