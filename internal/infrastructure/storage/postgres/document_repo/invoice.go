package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockroom/internal/core/id"
	"stockroom/internal/domain"
	"stockroom/internal/domain/invoicing"
	"stockroom/internal/infrastructure/storage/postgres"
)

const (
	invoicesTable     = "doc_invoices"
	invoiceLinesTable = "doc_invoice_lines"
	paymentsTable     = "doc_invoice_payments"
)

var _ invoicing.Repository = (*InvoiceRepo)(nil)

// InvoiceRepo implements invoicing.Repository.
type InvoiceRepo struct {
	*BaseDocumentRepo[*invoicing.Invoice]
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txm *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			invoicesTable,
			invoiceLinesTable,
			postgres.ExtractDBColumns[invoicing.Invoice](),
			func() *invoicing.Invoice { return &invoicing.Invoice{} },
		),
	}
}

// GetItems retrieves lines for an invoice.
func (r *InvoiceRepo) GetItems(ctx context.Context, docID id.ID) ([]invoicing.InvoiceItem, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "description",
			"quantity", "unit_price", "tax_rate", "tax_amount", "total",
		).
		From(invoiceLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []invoicing.InvoiceItem
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return items, nil
}

// SaveItems saves lines for an invoice (delete existing + insert new).
func (r *InvoiceRepo) SaveItems(ctx context.Context, docID id.ID, items []invoicing.InvoiceItem) error {
	querier := r.Querier(ctx)

	deleteSQL := "DELETE FROM " + invoiceLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(invoiceLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "description",
			"quantity", "unit_price", "tax_rate", "tax_amount", "total",
		)

	for _, item := range items {
		q = q.Values(
			item.LineID, docID, item.LineNo, item.Description,
			item.Quantity, item.UnitPrice, item.TaxRate, item.TaxAmount, item.Total,
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

// GetPayments retrieves payments for an invoice, oldest first.
func (r *InvoiceRepo) GetPayments(ctx context.Context, docID id.ID) ([]invoicing.Payment, error) {
	q := r.Builder().
		Select(
			"id", "invoice_id", "amount", "method", "reference",
			"payment_date", "created_at",
		).
		From(paymentsTable).
		Where(squirrel.Eq{"invoice_id": docID}).
		OrderBy("payment_date", "created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var payments []invoicing.Payment
	if err := pgxscan.Select(ctx, r.Querier(ctx), &payments, sql, args...); err != nil {
		return nil, fmt.Errorf("get payments: %w", err)
	}

	return payments, nil
}

// CreatePayment appends a payment record.
func (r *InvoiceRepo) CreatePayment(ctx context.Context, p invoicing.Payment) error {
	q := r.Builder().
		Insert(paymentsTable).
		Columns(
			"id", "invoice_id", "amount", "method", "reference",
			"payment_date", "created_at",
		).
		Values(p.ID, p.InvoiceID, p.Amount, p.Method, p.Reference, p.PaymentDate, p.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	return nil
}

// DeletePayment removes a voided payment record.
func (r *InvoiceRepo) DeletePayment(ctx context.Context, paymentID id.ID) error {
	q := r.Builder().
		Delete(paymentsTable).
		Where(squirrel.Eq{"id": paymentID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("payment %s not found", paymentID)
	}

	return nil
}

// Delete physically removes a draft invoice with its payments and lines.
func (r *InvoiceRepo) Delete(ctx context.Context, docID id.ID) error {
	deleteSQL := "DELETE FROM " + paymentsTable + " WHERE invoice_id = $1"
	if _, err := r.Querier(ctx).Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete payments: %w", err)
	}

	return r.BaseDocumentRepo.Delete(ctx, docID)
}

// List retrieves invoices with filtering.
func (r *InvoiceRepo) List(ctx context.Context, filter invoicing.ListFilter) (domain.ListResult[*invoicing.Invoice], error) {
	result := domain.ListResult[*invoicing.Invoice]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if filter.CounterpartyID != nil {
		q = q.Where(squirrel.Eq{"counterparty_id": *filter.CounterpartyID})
	}

	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"type": *filter.Type})
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

	if filter.DueBefore != nil {
		q = q.Where(squirrel.Lt{"due_date": *filter.DueBefore})
	}

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": searchPattern},
			squirrel.ILike{"order_number": searchPattern},
		})
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

// ListDueBefore returns unpaid SENT/PARTIAL invoices whose due date has
// passed, for the overdue sweep.
func (r *InvoiceRepo) ListDueBefore(ctx context.Context, cutoff time.Time) ([]*invoicing.Invoice, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"status": []invoicing.Status{invoicing.StatusSent, invoicing.StatusPartial}}).
		Where(squirrel.NotEq{"due_date": nil}).
		Where(squirrel.Lt{"due_date": cutoff}).
		OrderBy("due_date")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var invoices []*invoicing.Invoice
	if err := pgxscan.Select(ctx, r.Querier(ctx), &invoices, sql, args...); err != nil {
		return nil, fmt.Errorf("list due before: %w", err)
	}

	return invoices, nil
}
