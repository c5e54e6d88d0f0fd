package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockroom/internal/core/id"
	"stockroom/internal/domain"
	"stockroom/internal/domain/orders/sales"
	"stockroom/internal/infrastructure/storage/postgres"
)

const (
	salesOrdersTable     = "doc_sales_orders"
	salesOrderLinesTable = "doc_sales_order_lines"
)

var _ sales.Repository = (*SalesOrderRepo)(nil)

// SalesOrderRepo implements sales.Repository.
type SalesOrderRepo struct {
	*BaseDocumentRepo[*sales.SalesOrder]
}

// NewSalesOrderRepo creates a new sales order repository.
func NewSalesOrderRepo(txm *postgres.TxManager) *SalesOrderRepo {
	return &SalesOrderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			salesOrdersTable,
			salesOrderLinesTable,
			postgres.ExtractDBColumns[sales.SalesOrder](),
			func() *sales.SalesOrder { return &sales.SalesOrder{} },
		),
	}
}

// GetItems retrieves lines for a sales order.
func (r *SalesOrderRepo) GetItems(ctx context.Context, docID id.ID) ([]sales.SalesOrderItem, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "product_id",
			"quantity", "unit_price", "amount",
		).
		From(salesOrderLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []sales.SalesOrderItem
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return items, nil
}

// SaveItems saves lines for a sales order (delete existing + insert new).
func (r *SalesOrderRepo) SaveItems(ctx context.Context, docID id.ID, items []sales.SalesOrderItem) error {
	querier := r.Querier(ctx)

	deleteSQL := "DELETE FROM " + salesOrderLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(salesOrderLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "product_id",
			"quantity", "unit_price", "amount",
		)

	for _, item := range items {
		q = q.Values(
			item.LineID, docID, item.LineNo, item.ProductID,
			item.Quantity, item.UnitPrice, item.Amount,
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

// List retrieves sales orders with filtering.
func (r *SalesOrderRepo) List(ctx context.Context, filter sales.ListFilter) (domain.ListResult[*sales.SalesOrder], error) {
	result := domain.ListResult[*sales.SalesOrder]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
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
