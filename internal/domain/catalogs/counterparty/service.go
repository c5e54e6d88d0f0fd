package counterparty

import (
	"context"
	"fmt"
	"time"

	"stockroom/internal/core/numerator"
	"stockroom/internal/core/tx"
	"stockroom/internal/domain"
)

// Service provides business logic for the Counterparty catalog.
type Service struct {
	*domain.CatalogService[*Counterparty]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Counterparty service.
func NewService(repo Repository, txManager tx.Manager, num numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Counterparty]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "counterparty",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, cp *Counterparty) error {
	if cp.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("CP"), time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		cp.Code = code
	}
	return nil
}

// ListSuppliers retrieves supplier counterparties.
func (s *Service) ListSuppliers(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Counterparty], error) {
	return s.repo.ListByType(ctx, TypeSupplier, filter)
}

// ListCustomers retrieves customer counterparties.
func (s *Service) ListCustomers(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Counterparty], error) {
	return s.repo.ListByType(ctx, TypeCustomer, filter)
}
