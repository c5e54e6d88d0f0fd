// Package ledger_repo provides the PostgreSQL implementation of the
// stock ledger repository.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/entity"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/domain/ledger"
	"stockroom/internal/infrastructure/storage/postgres"
)

const (
	stockItemsTable     = "ledger_stock_items"
	stockMovementsTable = "ledger_stock_movements"
	productsTable       = "cat_products"
)

// Compile-time check.
var _ ledger.Repository = (*LedgerRepo)(nil)

// LedgerRepo implements ledger.Repository.
type LedgerRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new stock ledger repository.
func NewLedgerRepo(txm *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var stockItemColumns = postgres.ExtractDBColumns[entity.StockItem]()

// GetItem returns the stock item for (product, location).
func (r *LedgerRepo) GetItem(ctx context.Context, productID, locationID id.ID) (entity.StockItem, error) {
	return r.getItem(ctx, productID, locationID, false)
}

// GetItemForUpdate returns the stock item with a row lock.
func (r *LedgerRepo) GetItemForUpdate(ctx context.Context, productID, locationID id.ID) (entity.StockItem, error) {
	return r.getItem(ctx, productID, locationID, true)
}

func (r *LedgerRepo) getItem(ctx context.Context, productID, locationID id.ID, forUpdate bool) (entity.StockItem, error) {
	var item entity.StockItem

	q := r.builder.
		Select(stockItemColumns...).
		From(stockItemsTable).
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Eq{"location_id": locationID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return item, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return item, apperror.NewNotFound("stock_item", productID.String())
		}
		return item, fmt.Errorf("get stock item: %w", err)
	}
	return item, nil
}

// AddItemQuantity atomically increments the (product, location) quantity,
// creating the row on first receipt. The in-place increment makes
// concurrent receipts safe without an explicit lock.
func (r *LedgerRepo) AddItemQuantity(ctx context.Context, productID, locationID id.ID, qty types.Quantity, at time.Time) error {
	sql := fmt.Sprintf(`
		INSERT INTO %s (product_id, location_id, quantity, last_movement_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET
			quantity = %s.quantity + EXCLUDED.quantity,
			last_movement_at = EXCLUDED.last_movement_at,
			updated_at = EXCLUDED.updated_at
	`, stockItemsTable, stockItemsTable)

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, productID, locationID, qty, at); err != nil {
		return fmt.Errorf("upsert stock item: %w", err)
	}
	return nil
}

// SetItemQuantity overwrites the quantity of an existing row. The caller
// holds the row lock from GetItemForUpdate.
func (r *LedgerRepo) SetItemQuantity(ctx context.Context, productID, locationID id.ID, qty types.Quantity, at time.Time) error {
	q := r.builder.
		Update(stockItemsTable).
		Set("quantity", qty).
		Set("last_movement_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Eq{"location_id": locationID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update stock item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("stock_item", productID.String())
	}
	return nil
}

// ListItemsByProduct returns all stock rows of a product.
func (r *LedgerRepo) ListItemsByProduct(ctx context.Context, productID id.ID) ([]entity.StockItem, error) {
	return r.listItems(ctx, squirrel.Eq{"product_id": productID})
}

// ListItemsByLocation returns all stock rows at a location.
func (r *LedgerRepo) ListItemsByLocation(ctx context.Context, locationID id.ID) ([]entity.StockItem, error) {
	return r.listItems(ctx, squirrel.Eq{"location_id": locationID})
}

func (r *LedgerRepo) listItems(ctx context.Context, cond squirrel.Eq) ([]entity.StockItem, error) {
	q := r.builder.
		Select(stockItemColumns...).
		From(stockItemsTable).
		Where(cond).
		OrderBy("updated_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []entity.StockItem
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	return items, nil
}

// AdjustProductStock atomically adds delta to the product's cached total.
func (r *LedgerRepo) AdjustProductStock(ctx context.Context, productID id.ID, delta types.Quantity) error {
	q := r.builder.
		Update(productsTable).
		Set("current_stock", squirrel.Expr("current_stock + ?", delta)).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("adjust product stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}
	return nil
}

var movementColumns = postgres.ExtractDBColumns[entity.StockMovement]()

// CreateMovement appends one movement record.
func (r *LedgerRepo) CreateMovement(ctx context.Context, m entity.StockMovement) error {
	q := r.builder.
		Insert(stockMovementsTable).
		SetMap(postgres.StructToMap(m))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// CreateMovements batch inserts movements via COPY when a transaction is
// open, falling back to a multi-row insert.
func (r *LedgerRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	columns := []string{
		"id", "type", "product_id", "from_location_id", "to_location_id",
		"quantity", "reference", "created_by", "created_at",
	}

	if tx := r.txm.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txm)
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, []any{
				m.ID, m.Type, m.ProductID, m.FromLocationID, m.ToLocationID,
				m.Quantity, m.Reference, m.CreatedBy, m.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, stockMovementsTable, columns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(stockMovementsTable).Columns(columns...)
	for _, m := range movements {
		q = q.Values(
			m.ID, m.Type, m.ProductID, m.FromLocationID, m.ToLocationID,
			m.Quantity, m.Reference, m.CreatedBy, m.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}
	return nil
}

// ListMovements returns movement history, newest first.
func (r *LedgerRepo) ListMovements(ctx context.Context, filter ledger.MovementFilter) ([]entity.StockMovement, error) {
	q := r.builder.
		Select(movementColumns...).
		From(stockMovementsTable)

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.LocationID != nil {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"from_location_id": *filter.LocationID},
			squirrel.Eq{"to_location_id": *filter.LocationID},
		})
	}
	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"type": *filter.Type})
	}
	if filter.Reference != "" {
		q = q.Where(squirrel.Eq{"reference": filter.Reference})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.ToDate})
	}

	q = q.OrderBy("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.StockMovement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return movements, nil
}

// ListStockTotals returns, per product, the cached counter, the sum of
// stock item rows and the net of the movement log. Transfers cancel out
// of the movement net by construction.
func (r *LedgerRepo) ListStockTotals(ctx context.Context) ([]ledger.StockTotal, error) {
	sql := fmt.Sprintf(`
		SELECT
			p.id AS product_id,
			p.sku AS sku,
			p.current_stock AS cached_stock,
			COALESCE(si.total, 0) AS item_sum,
			COALESCE(sm.net, 0) AS movement_net
		FROM %s p
		LEFT JOIN (
			SELECT product_id, SUM(quantity) AS total
			FROM %s
			GROUP BY product_id
		) si ON si.product_id = p.id
		LEFT JOIN (
			SELECT product_id, SUM(
				CASE type
					WHEN 'IN' THEN quantity
					WHEN 'OUT' THEN -quantity
					ELSE 0
				END
			) AS net
			FROM %s
			GROUP BY product_id
		) sm ON sm.product_id = p.id
		WHERE p.deletion_mark = false
		ORDER BY p.sku
	`, productsTable, stockItemsTable, stockMovementsTable)

	var totals []ledger.StockTotal
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &totals, sql); err != nil {
		return nil, fmt.Errorf("list stock totals: %w", err)
	}
	return totals, nil
}
