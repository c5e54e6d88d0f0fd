package counterparty

import (
	"context"

	"stockroom/internal/domain"
)

// Repository defines the interface for Counterparty persistence.
type Repository interface {
	domain.CatalogRepository[*Counterparty]

	// ListByType retrieves counterparties of the given type, including
	// those marked as both.
	ListByType(ctx context.Context, cpType CounterpartyType, filter domain.ListFilter) (domain.ListResult[*Counterparty], error)
}
