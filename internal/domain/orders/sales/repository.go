package sales

import (
	"context"
	"time"

	"stockroom/internal/core/id"
	"stockroom/internal/domain"
)

// Repository defines operations for sales order documents.
type Repository interface {
	Create(ctx context.Context, doc *SalesOrder) error
	GetByID(ctx context.Context, docID id.ID) (*SalesOrder, error)
	GetByNumber(ctx context.Context, number string) (*SalesOrder, error)
	Update(ctx context.Context, doc *SalesOrder) error

	// Delete physically removes a draft order, lines first, then the header.
	Delete(ctx context.Context, docID id.ID) error

	// Line operations
	GetItems(ctx context.Context, docID id.ID) ([]SalesOrderItem, error)
	SaveItems(ctx context.Context, docID id.ID, items []SalesOrderItem) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*SalesOrder], error)

	// GetForUpdate locks the header row for the duration of the transaction.
	GetForUpdate(ctx context.Context, docID id.ID) (*SalesOrder, error)
}

// ListFilter for filtering sales orders.
type ListFilter struct {
	domain.ListFilter

	CustomerID *id.ID
	Status     *Status
	DateFrom   *time.Time
	DateTo     *time.Time
}
