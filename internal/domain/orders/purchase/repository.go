package purchase

import (
	"context"
	"time"

	"stockroom/internal/core/id"
	"stockroom/internal/domain"
)

// Repository defines operations for purchase order documents.
type Repository interface {
	Create(ctx context.Context, doc *PurchaseOrder) error
	GetByID(ctx context.Context, docID id.ID) (*PurchaseOrder, error)
	GetByNumber(ctx context.Context, number string) (*PurchaseOrder, error)
	Update(ctx context.Context, doc *PurchaseOrder) error

	// Delete physically removes a draft order, lines first, then the header.
	Delete(ctx context.Context, docID id.ID) error

	// Line operations
	GetItems(ctx context.Context, docID id.ID) ([]PurchaseOrderItem, error)
	SaveItems(ctx context.Context, docID id.ID, items []PurchaseOrderItem) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseOrder], error)

	// GetForUpdate locks the header row for the duration of the transaction.
	GetForUpdate(ctx context.Context, docID id.ID) (*PurchaseOrder, error)
}

// ListFilter for filtering purchase orders.
type ListFilter struct {
	domain.ListFilter

	SupplierID *id.ID
	Status     *Status
	DateFrom   *time.Time
	DateTo     *time.Time
}
