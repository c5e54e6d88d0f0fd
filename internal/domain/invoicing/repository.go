package invoicing

import (
	"context"
	"time"

	"stockroom/internal/core/id"
	"stockroom/internal/domain"
)

// Repository defines operations for invoice documents.
type Repository interface {
	Create(ctx context.Context, doc *Invoice) error
	GetByID(ctx context.Context, docID id.ID) (*Invoice, error)
	GetByNumber(ctx context.Context, number string) (*Invoice, error)
	Update(ctx context.Context, doc *Invoice) error

	// Delete physically removes a draft invoice with its lines.
	Delete(ctx context.Context, docID id.ID) error

	// Line operations
	GetItems(ctx context.Context, docID id.ID) ([]InvoiceItem, error)
	SaveItems(ctx context.Context, docID id.ID, items []InvoiceItem) error

	// Payment operations
	GetPayments(ctx context.Context, docID id.ID) ([]Payment, error)
	CreatePayment(ctx context.Context, p Payment) error
	DeletePayment(ctx context.Context, paymentID id.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error)

	// ListDueBefore returns unpaid SENT/PARTIAL invoices whose due date has
	// passed, for the overdue sweep.
	ListDueBefore(ctx context.Context, cutoff time.Time) ([]*Invoice, error)

	// GetForUpdate locks the header row for the duration of the transaction.
	GetForUpdate(ctx context.Context, docID id.ID) (*Invoice, error)
}

// ListFilter for filtering invoices.
type ListFilter struct {
	domain.ListFilter

	CounterpartyID *id.ID
	Type           *InvoiceType
	Status         *Status
	DateFrom       *time.Time
	DateTo         *time.Time
	DueBefore      *time.Time
}
