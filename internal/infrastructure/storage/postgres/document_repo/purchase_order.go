package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockroom/internal/core/id"
	"stockroom/internal/domain"
	"stockroom/internal/domain/orders/purchase"
	"stockroom/internal/infrastructure/storage/postgres"
)

const (
	purchaseOrdersTable     = "doc_purchase_orders"
	purchaseOrderLinesTable = "doc_purchase_order_lines"
)

var _ purchase.Repository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo implements purchase.Repository.
type PurchaseOrderRepo struct {
	*BaseDocumentRepo[*purchase.PurchaseOrder]
}

// NewPurchaseOrderRepo creates a new purchase order repository.
func NewPurchaseOrderRepo(txm *postgres.TxManager) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			purchaseOrdersTable,
			purchaseOrderLinesTable,
			postgres.ExtractDBColumns[purchase.PurchaseOrder](),
			func() *purchase.PurchaseOrder { return &purchase.PurchaseOrder{} },
		),
	}
}

// GetItems retrieves lines for a purchase order.
func (r *PurchaseOrderRepo) GetItems(ctx context.Context, docID id.ID) ([]purchase.PurchaseOrderItem, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "product_id",
			"quantity", "received_qty", "unit_cost", "amount",
		).
		From(purchaseOrderLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []purchase.PurchaseOrderItem
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return items, nil
}

// SaveItems saves lines for a purchase order (delete existing + insert new).
func (r *PurchaseOrderRepo) SaveItems(ctx context.Context, docID id.ID, items []purchase.PurchaseOrderItem) error {
	querier := r.Querier(ctx)

	deleteSQL := "DELETE FROM " + purchaseOrderLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(purchaseOrderLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "product_id",
			"quantity", "received_qty", "unit_cost", "amount",
		)

	for _, item := range items {
		q = q.Values(
			item.LineID, docID, item.LineNo, item.ProductID,
			item.Quantity, item.ReceivedQty, item.UnitCost, item.Amount,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// List retrieves purchase orders with filtering.
func (r *PurchaseOrderRepo) List(ctx context.Context, filter purchase.ListFilter) (domain.ListResult[*purchase.PurchaseOrder], error) {
	result := domain.ListResult[*purchase.PurchaseOrder]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}

	q, err := r.countAndPage(ctx, q, filter.OrderBy, filter.Limit, filter.Offset, &result.TotalCount)
	if err != nil {
		return result, err
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.Querier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select: %w", err)
	}

	return result, nil
}
