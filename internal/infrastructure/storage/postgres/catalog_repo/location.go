package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockroom/internal/core/id"
	"stockroom/internal/domain/catalogs/location"
	"stockroom/internal/infrastructure/storage/postgres"
)

const locationTable = "cat_locations"

// LocationRepo implements location.Repository.
type LocationRepo struct {
	*BaseCatalogRepo[*location.Location]
}

// NewLocationRepo creates a new location repository.
func NewLocationRepo(txm *postgres.TxManager) *LocationRepo {
	return &LocationRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*location.Location](
			txm,
			locationTable,
			postgres.ExtractDBColumns[location.Location](),
			func() *location.Location { return &location.Location{} },
		),
	}
}

// GetByWarehouseAndCode retrieves a location by its code within a warehouse.
func (r *LocationRepo) GetByWarehouseAndCode(ctx context.Context, warehouseID id.ID, code string) (*location.Location, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[location.Location]()...).
		From(locationTable).
		Where(squirrel.Eq{"warehouse_id": warehouseID}).
		Where(squirrel.Eq{"code": code}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// GetDefaultForWarehouse retrieves the active location with the lowest code
// in the warehouse.
func (r *LocationRepo) GetDefaultForWarehouse(ctx context.Context, warehouseID id.ID) (*location.Location, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[location.Location]()...).
		From(locationTable).
		Where(squirrel.Eq{"warehouse_id": warehouseID}).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("code ASC").
		Limit(1)

	return r.FindOne(ctx, q)
}

// ListByWarehouse retrieves all locations of a warehouse.
func (r *LocationRepo) ListByWarehouse(ctx context.Context, warehouseID id.ID) ([]*location.Location, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[location.Location]()...).
		From(locationTable).
		Where(squirrel.Eq{"warehouse_id": warehouseID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("code ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*location.Location
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list by warehouse: %w", err)
	}
	return items, nil
}
