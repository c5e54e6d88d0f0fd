package warehouse

import (
	"context"
	"fmt"
	"time"

	"stockroom/internal/core/numerator"
	"stockroom/internal/core/tx"
	"stockroom/internal/domain"
)

// Service provides business logic for the Warehouse catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Warehouse]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Warehouse service.
func NewService(repo Repository, txManager tx.Manager, num numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Warehouse]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "warehouse",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)

	return svc
}

// prepareForCreate handles code generation and the default flag.
func (s *Service) prepareForCreate(ctx context.Context, wh *Warehouse) error {
	if wh.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("WH"), time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		wh.Code = code
	}

	// If setting as default, clear other defaults
	if wh.IsDefault {
		if err := s.repo.ClearDefault(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) prepareForUpdate(ctx context.Context, wh *Warehouse) error {
	if wh.IsDefault {
		if err := s.repo.ClearDefault(ctx); err != nil {
			return err
		}
	}
	return nil
}

// GetDefault retrieves the default warehouse.
func (s *Service) GetDefault(ctx context.Context) (*Warehouse, error) {
	return s.repo.GetDefault(ctx)
}
