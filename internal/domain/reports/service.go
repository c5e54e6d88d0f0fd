package reports

import (
	"context"
	"fmt"
	"time"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetStockOnHand generates the stock on hand report.
func (s *Service) GetStockOnHand(ctx context.Context, filter StockOnHandFilter) (*StockOnHandReport, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	report, err := s.repo.GetStockOnHandReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get stock on hand report: %w", err)
	}
	return report, nil
}

// GetLowStock generates the low stock report.
func (s *Service) GetLowStock(ctx context.Context, limit int) (*LowStockReport, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}

	report, err := s.repo.GetLowStockReport(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("get low stock report: %w", err)
	}
	return report, nil
}

// GetOutstandingInvoices generates the receivables/payables aging report.
func (s *Service) GetOutstandingInvoices(ctx context.Context, filter OutstandingInvoicesFilter) (*OutstandingInvoicesReport, error) {
	if filter.AsOfDate == nil {
		now := time.Now()
		filter.AsOfDate = &now
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	report, err := s.repo.GetOutstandingInvoicesReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get outstanding invoices report: %w", err)
	}
	return report, nil
}
