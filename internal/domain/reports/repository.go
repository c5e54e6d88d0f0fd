package reports

import (
	"context"
)

// Repository defines report data access interface.
type Repository interface {
	GetStockOnHandReport(ctx context.Context, filter StockOnHandFilter) (*StockOnHandReport, error)
	GetLowStockReport(ctx context.Context, limit int) (*LowStockReport, error)
	GetOutstandingInvoicesReport(ctx context.Context, filter OutstandingInvoicesFilter) (*OutstandingInvoicesReport, error)
}
