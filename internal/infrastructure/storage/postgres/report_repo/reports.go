// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockroom/internal/core/id"
	"stockroom/internal/domain/reports"
	"stockroom/internal/infrastructure/storage/postgres"
)

var _ reports.Repository = (*ReportRepo)(nil)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetStockOnHandReport generates the stock on hand report with
// warehouse/location/product details.
func (r *ReportRepo) GetStockOnHandReport(ctx context.Context, filter reports.StockOnHandFilter) (*reports.StockOnHandReport, error) {
	query := `
		SELECT
			w.id AS warehouse_id,
			w.name AS warehouse_name,
			l.id AS location_id,
			l.code AS location_code,
			p.id AS product_id,
			p.name AS product_name,
			p.sku AS product_sku,
			si.quantity AS quantity
		FROM ledger_stock_items si
		JOIN cat_locations l ON si.location_id = l.id
		JOIN cat_warehouses w ON l.warehouse_id = w.id
		JOIN cat_products p ON si.product_id = p.id
		WHERE true
	`
	args := []any{}
	argIndex := 1

	appendIn := func(column string, ids []id.ID) {
		if len(ids) == 0 {
			return
		}
		placeholders := make([]string, len(ids))
		for i, v := range ids {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, v)
			argIndex++
		}
		query += fmt.Sprintf(" AND %s IN (%s)", column, strings.Join(placeholders, ","))
	}

	appendIn("w.id", filter.WarehouseIDs)
	appendIn("l.id", filter.LocationIDs)
	appendIn("p.id", filter.ProductIDs)

	if filter.ExcludeZero {
		query += " AND si.quantity != 0"
	}

	query += " ORDER BY w.name, l.code, p.sku"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
	}

	var items []reports.StockOnHandItem
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, query, args...); err != nil {
		return nil, fmt.Errorf("stock on hand report: %w", err)
	}

	report := &reports.StockOnHandReport{
		AsOfDate:   time.Now(),
		Items:      items,
		TotalItems: len(items),
	}
	for _, item := range items {
		report.TotalQuantity += item.Quantity
	}

	return report, nil
}

// GetLowStockReport lists active products at or below their reorder point.
func (r *ReportRepo) GetLowStockReport(ctx context.Context, limit int) (*reports.LowStockReport, error) {
	query := `
		SELECT
			p.id AS product_id,
			p.name AS product_name,
			p.sku AS product_sku,
			p.current_stock AS current_stock,
			p.reorder_point AS reorder_point,
			p.max_stock AS max_stock,
			CASE
				WHEN p.max_stock > p.current_stock THEN p.max_stock - p.current_stock
				ELSE 0
			END AS suggested_qty
		FROM cat_products p
		WHERE p.deletion_mark = false
		  AND p.is_active = true
		  AND p.reorder_point > 0
		  AND p.current_stock <= p.reorder_point
		ORDER BY p.current_stock - p.reorder_point ASC
		LIMIT $1
	`

	var items []reports.LowStockItem
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, query, limit); err != nil {
		return nil, fmt.Errorf("low stock report: %w", err)
	}

	return &reports.LowStockReport{
		AsOfDate:   time.Now(),
		Items:      items,
		TotalItems: len(items),
	}, nil
}

// GetOutstandingInvoicesReport generates the receivables/payables aging report.
func (r *ReportRepo) GetOutstandingInvoicesReport(ctx context.Context, filter reports.OutstandingInvoicesFilter) (*reports.OutstandingInvoicesReport, error) {
	asOfDate := time.Now()
	if filter.AsOfDate != nil {
		asOfDate = *filter.AsOfDate
	}

	query := `
		SELECT
			i.id AS invoice_id,
			i.number AS number,
			i.type AS type,
			i.status AS status,
			i.counterparty_id AS counterparty_id,
			cp.name AS counterparty_name,
			i.total AS total,
			i.amount_paid AS amount_paid,
			i.amount_due AS amount_due,
			i.due_date AS due_date,
			CASE
				WHEN i.due_date IS NOT NULL AND i.due_date < $1
					THEN EXTRACT(DAY FROM $1::timestamptz - i.due_date)::int
				ELSE 0
			END AS days_overdue
		FROM doc_invoices i
		JOIN cat_counterparties cp ON i.counterparty_id = cp.id
		WHERE i.status IN ('SENT', 'PARTIAL', 'OVERDUE')
		  AND i.amount_due > 0
	`
	args := []any{asOfDate}
	argIndex := 2

	if filter.Type != nil {
		query += fmt.Sprintf(" AND i.type = $%d", argIndex)
		args = append(args, *filter.Type)
		argIndex++
	}

	if len(filter.CounterpartyIDs) > 0 {
		placeholders := make([]string, len(filter.CounterpartyIDs))
		for i, cpID := range filter.CounterpartyIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, cpID)
			argIndex++
		}
		query += fmt.Sprintf(" AND i.counterparty_id IN (%s)", strings.Join(placeholders, ","))
	}

	query += " ORDER BY days_overdue DESC, i.due_date ASC NULLS LAST"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
	}

	var items []reports.OutstandingInvoiceItem
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, query, args...); err != nil {
		return nil, fmt.Errorf("outstanding invoices report: %w", err)
	}

	report := &reports.OutstandingInvoicesReport{
		AsOfDate:   asOfDate,
		Items:      items,
		TotalItems: len(items),
	}
	for _, item := range items {
		report.TotalDue = report.TotalDue.Add(item.AmountDue)
	}

	return report, nil
}
