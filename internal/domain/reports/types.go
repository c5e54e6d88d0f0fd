// Package reports provides read-only projections over the ledger,
// catalogs and documents.
package reports

import (
	"time"

	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
)

// --- Stock On Hand Report ---

// StockOnHandFilter defines filter for the stock on hand report.
type StockOnHandFilter struct {
	WarehouseIDs []id.ID
	LocationIDs  []id.ID
	ProductIDs   []id.ID

	ExcludeZero bool

	Limit  int
	Offset int
}

// StockOnHandItem represents a single row in the stock on hand report.
type StockOnHandItem struct {
	WarehouseID   id.ID          `json:"warehouseId"`
	WarehouseName string         `json:"warehouseName"`
	LocationID    id.ID          `json:"locationId"`
	LocationCode  string         `json:"locationCode"`
	ProductID     id.ID          `json:"productId"`
	ProductName   string         `json:"productName"`
	ProductSKU    string         `json:"productSku"`
	Quantity      types.Quantity `json:"quantity"`
}

// StockOnHandReport represents the full stock on hand report.
type StockOnHandReport struct {
	AsOfDate   time.Time         `json:"asOfDate"`
	Items      []StockOnHandItem `json:"items"`
	TotalItems int               `json:"totalItems"`

	TotalQuantity types.Quantity `json:"totalQuantity"`
}

// --- Low Stock Report ---

// LowStockItem is a product at or below its reorder point.
type LowStockItem struct {
	ProductID    id.ID          `json:"productId"`
	ProductName  string         `json:"productName"`
	ProductSKU   string         `json:"productSku"`
	CurrentStock types.Quantity `json:"currentStock"`
	ReorderPoint types.Quantity `json:"reorderPoint"`
	MaxStock     types.Quantity `json:"maxStock"`

	// SuggestedQty is maxStock - currentStock, zero when maxStock is unset
	SuggestedQty types.Quantity `json:"suggestedQty"`
}

// LowStockReport lists products needing replenishment.
type LowStockReport struct {
	AsOfDate   time.Time      `json:"asOfDate"`
	Items      []LowStockItem `json:"items"`
	TotalItems int            `json:"totalItems"`
}

// --- Outstanding Invoices Report ---

// OutstandingInvoicesFilter defines filter for the receivables/payables report.
type OutstandingInvoicesFilter struct {
	// Type narrows to SALES (receivables) or PURCHASE (payables)
	Type *string

	CounterpartyIDs []id.ID

	AsOfDate *time.Time

	Limit  int
	Offset int
}

// OutstandingInvoiceItem is one unpaid or partially paid invoice.
type OutstandingInvoiceItem struct {
	InvoiceID        id.ID       `json:"invoiceId"`
	Number           string      `json:"number"`
	Type             string      `json:"type"`
	Status           string      `json:"status"`
	CounterpartyID   id.ID       `json:"counterpartyId"`
	CounterpartyName string      `json:"counterpartyName"`
	Total            types.Money `json:"total"`
	AmountPaid       types.Money `json:"amountPaid"`
	AmountDue        types.Money `json:"amountDue"`
	DueDate          *time.Time  `json:"dueDate,omitempty"`

	// DaysOverdue is zero when not yet due
	DaysOverdue int `json:"daysOverdue"`
}

// OutstandingInvoicesReport represents the aging report.
type OutstandingInvoicesReport struct {
	AsOfDate   time.Time                `json:"asOfDate"`
	Items      []OutstandingInvoiceItem `json:"items"`
	TotalItems int                      `json:"totalItems"`

	TotalDue types.Money `json:"totalDue"`
}
