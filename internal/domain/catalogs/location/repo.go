package location

import (
	"context"

	"stockroom/internal/core/id"
	"stockroom/internal/domain"
)

// Repository defines the interface for Location persistence.
type Repository interface {
	domain.CatalogRepository[*Location]

	// GetByWarehouseAndCode retrieves a location by its code within a warehouse.
	GetByWarehouseAndCode(ctx context.Context, warehouseID id.ID, code string) (*Location, error)

	// GetDefaultForWarehouse retrieves the active location with the lowest
	// code in the warehouse, the conventional receiving/shipping point.
	GetDefaultForWarehouse(ctx context.Context, warehouseID id.ID) (*Location, error)

	// ListByWarehouse retrieves all locations of a warehouse.
	ListByWarehouse(ctx context.Context, warehouseID id.ID) ([]*Location, error)
}
