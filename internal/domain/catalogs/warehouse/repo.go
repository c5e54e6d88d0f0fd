package warehouse

import (
	"context"

	"stockroom/internal/domain"
)

// Repository defines the interface for Warehouse persistence.
type Repository interface {
	domain.CatalogRepository[*Warehouse]

	// GetDefault retrieves the warehouse marked as default.
	GetDefault(ctx context.Context) (*Warehouse, error)

	// ClearDefault clears the default flag on all warehouses (before setting a new default).
	ClearDefault(ctx context.Context) error
}
