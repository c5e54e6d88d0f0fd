// Package ledger provides the stock ledger: per-location quantities,
// the cached product stock counter, and the append-only movement log.
package ledger

import (
	"context"
	"time"

	"stockroom/internal/core/entity"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
)

// Repository defines persistence operations for the stock ledger.
// All mutating methods are expected to run inside a transaction opened
// by the service; none of them opens its own.
type Repository interface {
	// Stock item operations

	// GetItem returns the stock item for (product, location).
	GetItem(ctx context.Context, productID, locationID id.ID) (entity.StockItem, error)

	// GetItemForUpdate returns the stock item with a row lock, serializing
	// concurrent issues against the same (product, location).
	GetItemForUpdate(ctx context.Context, productID, locationID id.ID) (entity.StockItem, error)

	// AddItemQuantity atomically increments the (product, location) quantity,
	// creating the row on first receipt.
	AddItemQuantity(ctx context.Context, productID, locationID id.ID, qty types.Quantity, at time.Time) error

	// SetItemQuantity overwrites the quantity of an existing row.
	SetItemQuantity(ctx context.Context, productID, locationID id.ID, qty types.Quantity, at time.Time) error

	// ListItemsByProduct returns all stock rows of a product.
	ListItemsByProduct(ctx context.Context, productID id.ID) ([]entity.StockItem, error)

	// ListItemsByLocation returns all stock rows at a location.
	ListItemsByLocation(ctx context.Context, locationID id.ID) ([]entity.StockItem, error)

	// Product counter

	// AdjustProductStock atomically adds delta to the product's cached total.
	AdjustProductStock(ctx context.Context, productID id.ID, delta types.Quantity) error

	// Movement log

	// CreateMovement appends one movement record.
	CreateMovement(ctx context.Context, m entity.StockMovement) error

	// CreateMovements batch inserts movements (used by seeding and imports).
	CreateMovements(ctx context.Context, movements []entity.StockMovement) error

	// ListMovements returns movement history, newest first.
	ListMovements(ctx context.Context, filter MovementFilter) ([]entity.StockMovement, error)

	// Reconciliation

	// ListStockTotals returns, per product, the cached counter, the sum of
	// stock item rows and the net of the movement log.
	ListStockTotals(ctx context.Context) ([]StockTotal, error)
}

// MovementFilter narrows movement history queries.
type MovementFilter struct {
	ProductID  *id.ID
	LocationID *id.ID
	Type       *entity.MovementType
	Reference  string
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

// StockTotal holds the three views of one product's stock that must agree.
type StockTotal struct {
	ProductID   id.ID          `db:"product_id" json:"productId"`
	SKU         string         `db:"sku" json:"sku"`
	CachedStock types.Quantity `db:"cached_stock" json:"cachedStock"`
	ItemSum     types.Quantity `db:"item_sum" json:"itemSum"`
	MovementNet types.Quantity `db:"movement_net" json:"movementNet"`
}
