package warehouse

import (
	"context"

	"github.com/google/uuid"
	"github.com/wms/inventory/internal/domain/shared"
)

// WarehouseRepository persists warehouses
type WarehouseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)
	FindByCode(ctx context.Context, code string) (*Warehouse, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Warehouse, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, w *Warehouse) error
	SaveWithLock(ctx context.Context, w *Warehouse) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ZoneRepository persists zones
type ZoneRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Zone, error)
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]Zone, error)
	Save(ctx context.Context, z *Zone) error
	SaveWithLock(ctx context.Context, z *Zone) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// LocationRepository persists storage locations
type LocationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StorageLocation, error)
	FindByCode(ctx context.Context, warehouseID uuid.UUID, code string) (*StorageLocation, error)
	FindByZone(ctx context.Context, zoneID uuid.UUID) ([]StorageLocation, error)
	ExistsByCode(ctx context.Context, warehouseID uuid.UUID, code string) (bool, error)
	Save(ctx context.Context, l *StorageLocation) error
	Delete(ctx context.Context, id uuid.UUID) error
}
