package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"stockroom/internal/domain/catalogs/warehouse"
	"stockroom/internal/infrastructure/storage/postgres"
)

const warehouseTable = "cat_warehouses"

// WarehouseRepo implements warehouse.Repository.
type WarehouseRepo struct {
	*BaseCatalogRepo[*warehouse.Warehouse]
}

// NewWarehouseRepo creates a new warehouse repository.
func NewWarehouseRepo(txm *postgres.TxManager) *WarehouseRepo {
	return &WarehouseRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*warehouse.Warehouse](
			txm,
			warehouseTable,
			postgres.ExtractDBColumns[warehouse.Warehouse](),
			func() *warehouse.Warehouse { return &warehouse.Warehouse{} },
		),
	}
}

// GetDefault retrieves the warehouse marked as default.
func (r *WarehouseRepo) GetDefault(ctx context.Context) (*warehouse.Warehouse, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[warehouse.Warehouse]()...).
		From(warehouseTable).
		Where(squirrel.Eq{"is_default": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// ClearDefault clears the default flag on all warehouses.
func (r *WarehouseRepo) ClearDefault(ctx context.Context) error {
	q := r.Builder().
		Update(warehouseTable).
		Set("is_default", false).
		Where(squirrel.Eq{"is_default": true})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("clear default: %w", err)
	}

	return nil
}
