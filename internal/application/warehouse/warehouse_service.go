package warehouse

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wms/inventory/internal/domain/shared"
	"github.com/wms/inventory/internal/domain/stock"
	"github.com/wms/inventory/internal/domain/warehouse"
	"go.uber.org/zap"
)

// WarehouseService handles the administrative surface of the storage
// hierarchy plus the capacity query the stock ledger shares. None of
// these operations touch quantities; they carry no invariant beyond
// uniqueness and soft-delete bookkeeping.
type WarehouseService struct {
	warehouses     warehouse.WarehouseRepository
	zones          warehouse.ZoneRepository
	locations      warehouse.LocationRepository
	stockRecords   stock.StockRecordRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewWarehouseService creates a new WarehouseService
func NewWarehouseService(
	warehouses warehouse.WarehouseRepository,
	zones warehouse.ZoneRepository,
	locations warehouse.LocationRepository,
	stockRecords stock.StockRecordRepository,
	logger *zap.Logger,
) *WarehouseService {
	return &WarehouseService{
		warehouses:   warehouses,
		zones:        zones,
		locations:    locations,
		stockRecords: stockRecords,
		logger:       logger,
	}
}

// SetEventPublisher sets the publisher for domain events
func (s *WarehouseService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateWarehouse registers a new warehouse
func (s *WarehouseService) CreateWarehouse(ctx context.Context, code, name, storeID string) (*warehouse.Warehouse, error) {
	w, err := warehouse.NewWarehouse(code, name, storeID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.warehouses.FindByCode(ctx, w.Code); err == nil && existing != nil {
		return nil, shared.NewConflictError("warehouse code already in use")
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if err := s.warehouses.Save(ctx, w); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, w)
	return w, nil
}

// GetWarehouse loads one warehouse
func (s *WarehouseService) GetWarehouse(ctx context.Context, id uuid.UUID) (*warehouse.Warehouse, error) {
	return s.warehouses.FindByID(ctx, id)
}

// ListWarehouses returns a paginated warehouse listing
func (s *WarehouseService) ListWarehouses(ctx context.Context, filter shared.Filter) (shared.Paginated[warehouse.Warehouse], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	items, err := s.warehouses.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[warehouse.Warehouse]{}, err
	}
	total, err := s.warehouses.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[warehouse.Warehouse]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// UpdateWarehouse updates a warehouse's descriptive fields
func (s *WarehouseService) UpdateWarehouse(ctx context.Context, id uuid.UUID, name, address, notes string) (*warehouse.Warehouse, error) {
	w, err := s.warehouses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := w.Update(name, address, notes); err != nil {
		return nil, err
	}
	if err := s.warehouses.SaveWithLock(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// DisableWarehouse takes a warehouse out of service
func (s *WarehouseService) DisableWarehouse(ctx context.Context, id uuid.UUID) error {
	w, err := s.warehouses.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := w.Disable(); err != nil {
		return err
	}
	return s.warehouses.SaveWithLock(ctx, w)
}

// DeleteWarehouse soft-deletes a warehouse
func (s *WarehouseService) DeleteWarehouse(ctx context.Context, id uuid.UUID) error {
	return s.warehouses.Delete(ctx, id)
}

// CreateZone adds a zone to a warehouse
func (s *WarehouseService) CreateZone(ctx context.Context, warehouseID uuid.UUID, name string, code warehouse.ZoneCode, capacity int64) (*warehouse.Zone, error) {
	if _, err := s.warehouses.FindByID(ctx, warehouseID); err != nil {
		return nil, err
	}
	z, err := warehouse.NewZone(warehouseID, name, code, capacity)
	if err != nil {
		return nil, err
	}
	if err := s.zones.Save(ctx, z); err != nil {
		return nil, err
	}
	return z, nil
}

// ListZones returns the zones of a warehouse
func (s *WarehouseService) ListZones(ctx context.Context, warehouseID uuid.UUID) ([]warehouse.Zone, error) {
	return s.zones.FindByWarehouse(ctx, warehouseID)
}

// SetZoneCapacity adjusts a zone's capacity bound
func (s *WarehouseService) SetZoneCapacity(ctx context.Context, zoneID uuid.UUID, capacity int64) (*warehouse.Zone, error) {
	z, err := s.zones.FindByID(ctx, zoneID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewZoneNotFoundError(zoneID.String())
		}
		return nil, err
	}
	if err := z.SetCapacity(capacity); err != nil {
		return nil, err
	}
	if err := s.zones.SaveWithLock(ctx, z); err != nil {
		return nil, err
	}
	return z, nil
}

// CreateLocation adds a storage location to a zone. The derived code
// must be unique within the warehouse.
func (s *WarehouseService) CreateLocation(ctx context.Context, zoneID uuid.UUID, rowLabel string, columnNumber int) (*warehouse.StorageLocation, error) {
	zone, err := s.zones.FindByID(ctx, zoneID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewZoneNotFoundError(zoneID.String())
		}
		return nil, err
	}

	location, err := warehouse.NewStorageLocation(zone.WarehouseID, zone.ID, zone.Code, rowLabel, columnNumber)
	if err != nil {
		return nil, err
	}

	exists, err := s.locations.ExistsByCode(ctx, zone.WarehouseID, location.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewConflictError("location code already exists in this warehouse")
	}

	if err := s.locations.Save(ctx, location); err != nil {
		return nil, err
	}
	return location, nil
}

// ListLocations returns the storage locations of a zone
func (s *WarehouseService) ListLocations(ctx context.Context, zoneID uuid.UUID) ([]warehouse.StorageLocation, error) {
	return s.locations.FindByZone(ctx, zoneID)
}

// ZoneHasCapacityFor checks whether additionalQty more units fit under
// the zone's capacity bound. The sum is recomputed, never cached: a
// maintained counter would be a second source of truth that can drift
// from the ledger under concurrent writes.
func (s *WarehouseService) ZoneHasCapacityFor(ctx context.Context, zoneID uuid.UUID, additionalQty int64) (bool, error) {
	if additionalQty < 0 {
		return false, shared.NewInvalidRequestError("additional quantity cannot be negative")
	}
	zone, err := s.zones.FindByID(ctx, zoneID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, shared.NewZoneNotFoundError(zoneID.String())
		}
		return false, err
	}
	current, err := s.stockRecords.SumOnHandByZone(ctx, zoneID)
	if err != nil {
		return false, err
	}
	return zone.HasCapacityFor(current, additionalQty), nil
}

func (s *WarehouseService) publishDomainEvents(ctx context.Context, w *warehouse.Warehouse) {
	if s.eventPublisher == nil {
		return
	}
	events := w.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events",
			zap.String("warehouse_code", w.Code),
			zap.Error(err))
	}
	w.ClearDomainEvents()
}
