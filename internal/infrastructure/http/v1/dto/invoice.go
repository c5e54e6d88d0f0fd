package dto

import (
	"time"

	"stockroom/internal/core/types"
	"stockroom/internal/domain/invoicing"
)

// CreateInvoiceRequest is the request body for creating an invoice.
type CreateInvoiceRequest struct {
	Type           invoicing.InvoiceType `json:"type" binding:"required"`
	CounterpartyID string                `json:"counterpartyId" binding:"required"`
	OrderNumber    *string               `json:"orderNumber"`
	DueDate        *time.Time            `json:"dueDate"`
	Comment        string                `json:"comment"`
	Items          []InvoiceItemRequest  `json:"items"`
}

// InvoiceItemRequest is one invoice line. The tax amount is computed and
// frozen when the line is added.
type InvoiceItemRequest struct {
	Description string         `json:"description" binding:"required"`
	Quantity    types.Quantity `json:"quantity" binding:"required"`
	UnitPrice   types.Money    `json:"unitPrice"`
	TaxRate     types.Money    `json:"taxRate"`
}

// SetDiscountRequest replaces the header discount.
type SetDiscountRequest struct {
	Discount types.Money `json:"discount"`
}

// RecordPaymentRequest records a payment against an invoice.
type RecordPaymentRequest struct {
	Amount    types.Money             `json:"amount" binding:"required"`
	Method    invoicing.PaymentMethod `json:"method" binding:"required"`
	Reference string                  `json:"reference"`
}
