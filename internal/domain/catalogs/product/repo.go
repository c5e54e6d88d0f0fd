package product

import (
	"context"

	"stockroom/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// GetBySKU retrieves a product by its SKU.
	GetBySKU(ctx context.Context, sku string) (*Product, error)

	// ExistsBySKU checks if a product with the given SKU exists.
	ExistsBySKU(ctx context.Context, sku string) (bool, error)

	// ListLowStock retrieves active products whose cached stock is at or
	// below their reorder point.
	ListLowStock(ctx context.Context, limit int) ([]*Product, error)
}
