package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"stockroom/internal/domain/catalogs/product"
	"stockroom/internal/infrastructure/storage/postgres"
)

const productTable = "cat_products"

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*product.Product](
			txm,
			productTable,
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		),
	}
}

// GetBySKU retrieves a product by its SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*product.Product, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[product.Product]()...).
		From(productTable).
		Where(squirrel.Eq{"sku": sku}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// ExistsBySKU checks if a product with the given SKU exists.
func (r *ProductRepo) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	q := r.Builder().
		Select("1").
		From(productTable).
		Where(squirrel.Eq{"sku": sku}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists by sku: %w", err)
	}
	return true, nil
}

// ListLowStock retrieves active products at or below their reorder point.
func (r *ProductRepo) ListLowStock(ctx context.Context, limit int) ([]*product.Product, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[product.Product]()...).
		From(productTable).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.Gt{"reorder_point": 0}).
		Where(squirrel.Expr("current_stock <= reorder_point")).
		OrderBy("current_stock - reorder_point ASC").
		Limit(uint64(limit))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*product.Product
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return items, nil
}
