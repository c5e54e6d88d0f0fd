package product

import (
	"context"
	"fmt"
	"time"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/numerator"
	"stockroom/internal/core/tx"
	"stockroom/internal/domain"
)

// Service provides business logic for the Product catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Product]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Product service.
func NewService(repo Repository, txManager tx.Manager, num numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.guardUpdate)

	return svc
}

// prepareForCreate generates a code when missing and rejects duplicate SKUs.
func (s *Service) prepareForCreate(ctx context.Context, p *Product) error {
	if p.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("PRD"), time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		p.Code = code
	}

	exists, err := s.repo.ExistsBySKU(ctx, p.SKU)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("product", "sku", p.SKU)
	}
	return nil
}

// guardUpdate enforces SKU immutability and cached-stock ownership.
// CurrentStock is maintained by the stock ledger only; an update through
// the catalog keeps the stored value.
func (s *Service) guardUpdate(ctx context.Context, p *Product) error {
	existing, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if existing.SKU != p.SKU {
		return apperror.NewValidation("sku is immutable").
			WithDetail("field", "sku").
			WithDetail("current", existing.SKU).
			WithDetail("requested", p.SKU)
	}
	p.CurrentStock = existing.CurrentStock
	return nil
}

// GetBySKU retrieves a product by SKU.
func (s *Service) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	p, err := s.repo.GetBySKU(ctx, sku)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("product", sku)
		}
		return nil, err
	}
	return p, nil
}

// ListLowStock retrieves products at or below their reorder point.
func (s *Service) ListLowStock(ctx context.Context, limit int) ([]*Product, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListLowStock(ctx, limit)
}
