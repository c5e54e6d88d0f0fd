// Package invoicing provides the Invoice document and its payment ledger.
// Invoices carry their own money math, independent of orders: header
// totals are recomputed from line items, payment state from payments.
package invoicing

import (
	"context"
	"time"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/entity"
	"stockroom/internal/core/id"
	"stockroom/internal/core/statemachine"
	"stockroom/internal/core/types"
)

// InvoiceType distinguishes sell-side and buy-side invoices.
type InvoiceType string

const (
	TypeSales    InvoiceType = "SALES"
	TypePurchase InvoiceType = "PURCHASE"
)

// Status is the invoice lifecycle state.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSent      Status = "SENT"
	StatusPartial   Status = "PARTIAL"
	StatusPaid      Status = "PAID"
	StatusOverdue   Status = "OVERDUE"
	StatusCancelled Status = "CANCELLED"
	StatusRefunded  Status = "REFUNDED"
)

func (s Status) String() string { return string(s) }

// Lifecycle covers both the explicit edges (send, cancel, refund) and the
// payment-derived ones (partial, paid, overdue, and the policy-gated
// retreat from PAID). CANCELLED and REFUNDED are terminal and freeze all
// further recalculation.
var Lifecycle = statemachine.New("invoice", []statemachine.Edge[Status]{
	{From: StatusDraft, To: StatusSent},
	{From: StatusSent, To: StatusPartial},
	{From: StatusSent, To: StatusPaid},
	{From: StatusSent, To: StatusOverdue},
	{From: StatusPartial, To: StatusPaid},
	{From: StatusPartial, To: StatusOverdue},
	{From: StatusOverdue, To: StatusPartial},
	{From: StatusOverdue, To: StatusPaid},
	{From: StatusPaid, To: StatusPartial},
	{From: StatusDraft, To: StatusCancelled},
	{From: StatusSent, To: StatusCancelled},
	{From: StatusPartial, To: StatusCancelled},
	{From: StatusOverdue, To: StatusCancelled},
	{From: StatusSent, To: StatusRefunded},
	{From: StatusPartial, To: StatusRefunded},
	{From: StatusOverdue, To: StatusRefunded},
	{From: StatusPaid, To: StatusRefunded},
})

// RevertPolicy decides what happens to a PAID invoice when a correction
// (voided payment, added line) pushes amountDue back above zero.
type RevertPolicy string

const (
	// HoldPaid keeps the PAID status; the recomputed amounts are stored
	// but the status does not retreat. Default.
	HoldPaid RevertPolicy = "hold_paid"

	// RevertOnShortfall moves the invoice back to PARTIAL and clears
	// the paid date.
	RevertOnShortfall RevertPolicy = "revert_on_shortfall"
)

// Invoice represents an invoice document with line items and payments.
type Invoice struct {
	entity.Document

	// Type: SALES or PURCHASE
	Type InvoiceType `db:"type" json:"type"`

	// CounterpartyID is the billed customer or billing supplier
	CounterpartyID id.ID `db:"counterparty_id" json:"counterpartyId"`

	// OrderNumber optionally links the driving order
	OrderNumber *string `db:"order_number" json:"orderNumber,omitempty"`

	// Status is the lifecycle state
	Status Status `db:"status" json:"status"`

	// Totals, recomputed from lines: total = subtotal + taxAmount - discount
	Subtotal  types.Money `db:"subtotal" json:"subtotal"`
	TaxAmount types.Money `db:"tax_amount" json:"taxAmount"`
	Discount  types.Money `db:"discount" json:"discount"`
	Total     types.Money `db:"total" json:"total"`

	// Payment state: amountPaid = sum of payments,
	// amountDue = max(0, total - amountPaid)
	AmountPaid types.Money `db:"amount_paid" json:"amountPaid"`
	AmountDue  types.Money `db:"amount_due" json:"amountDue"`

	DueDate  *time.Time `db:"due_date" json:"dueDate,omitempty"`
	PaidDate *time.Time `db:"paid_date" json:"paidDate,omitempty"`

	// Table parts
	Items    []InvoiceItem `db:"-" json:"items"`
	Payments []Payment     `db:"-" json:"payments"`
}

// InvoiceItem represents a line in the invoice. Tax math is frozen at add
// time: taxAmount = quantity*unitPrice*taxRate/100, total = base + tax.
// The stored values are never recomputed afterwards.
type InvoiceItem struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	Description string `db:"description" json:"description"`

	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`

	// TaxRate in percent
	TaxRate types.Money `db:"tax_rate" json:"taxRate"`

	TaxAmount types.Money `db:"tax_amount" json:"taxAmount"`
	Total     types.Money `db:"total" json:"total"`
}

// PaymentMethod is the free-form payment channel label.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodCard     PaymentMethod = "card"
	MethodTransfer PaymentMethod = "transfer"
)

// Payment represents money received (or sent) against an invoice.
type Payment struct {
	ID        id.ID         `db:"id" json:"id"`
	InvoiceID id.ID         `db:"invoice_id" json:"invoiceId"`
	Amount    types.Money   `db:"amount" json:"amount"`
	Method    PaymentMethod `db:"method" json:"method"`
	Reference string        `db:"reference" json:"reference,omitempty"`

	PaymentDate time.Time `db:"payment_date" json:"paymentDate"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// NewInvoice creates a draft invoice.
func NewInvoice(invType InvoiceType, counterpartyID id.ID) *Invoice {
	return &Invoice{
		Document:       entity.NewDocument(),
		Type:           invType,
		CounterpartyID: counterpartyID,
		Status:         StatusDraft,
		Subtotal:       types.ZeroMoney(),
		TaxAmount:      types.ZeroMoney(),
		Discount:       types.ZeroMoney(),
		Total:          types.ZeroMoney(),
		AmountPaid:     types.ZeroMoney(),
		AmountDue:      types.ZeroMoney(),
		Items:          make([]InvoiceItem, 0),
		Payments:       make([]Payment, 0),
	}
}

// IsFrozen reports whether the invoice is in a terminal state that blocks
// all recalculation.
func (inv *Invoice) IsFrozen() bool {
	return inv.Status == StatusCancelled || inv.Status == StatusRefunded
}

// AddItem appends a line with its tax math computed once, then recomputes
// header totals. Legal only in DRAFT.
func (inv *Invoice) AddItem(description string, qty types.Quantity, unitPrice, taxRate types.Money) error {
	if err := Lifecycle.Require(inv.Status, "add_item", StatusDraft); err != nil {
		return err
	}
	if description == "" {
		return apperror.NewValidation("description is required").
			WithDetail("field", "description")
	}
	if !qty.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}
	if unitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}
	if taxRate.IsNegative() {
		return apperror.NewValidation("tax rate cannot be negative").
			WithDetail("field", "taxRate")
	}

	base := unitPrice.Mul(qty.Decimal())
	taxAmount := base.Mul(taxRate).Div(types.NewMoney(100))

	inv.Items = append(inv.Items, InvoiceItem{
		LineID:      id.New(),
		LineNo:      len(inv.Items) + 1,
		Description: description,
		Quantity:    qty,
		UnitPrice:   unitPrice,
		TaxRate:     taxRate,
		TaxAmount:   taxAmount,
		Total:       base.Add(taxAmount),
	})

	inv.RecalculateTotals()
	return nil
}

// RemoveItem deletes a line by its line id and recomputes header totals.
// Legal only in DRAFT.
func (inv *Invoice) RemoveItem(lineID id.ID) error {
	if err := Lifecycle.Require(inv.Status, "remove_item", StatusDraft); err != nil {
		return err
	}

	idx := -1
	for i := range inv.Items {
		if inv.Items[i].LineID == lineID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apperror.NewNotFound("invoice_item", lineID.String())
	}

	inv.Items = append(inv.Items[:idx], inv.Items[idx+1:]...)
	for i := range inv.Items {
		inv.Items[i].LineNo = i + 1
	}

	inv.RecalculateTotals()
	return nil
}

// RecalculateTotals rebuilds header money fields from the current lines
// and payments. Frozen invoices are left untouched. The per-line tax
// amounts are read as stored, never recomputed.
func (inv *Invoice) RecalculateTotals() {
	if inv.IsFrozen() {
		return
	}

	subtotal := types.ZeroMoney()
	tax := types.ZeroMoney()
	for _, item := range inv.Items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(item.Quantity.Decimal()))
		tax = tax.Add(item.TaxAmount)
	}

	inv.Subtotal = subtotal
	inv.TaxAmount = tax
	inv.Total = subtotal.Add(tax).Sub(inv.Discount)

	paid := types.ZeroMoney()
	for _, p := range inv.Payments {
		paid = paid.Add(p.Amount)
	}
	inv.AmountPaid = paid

	due := inv.Total.Sub(paid)
	if due.IsNegative() {
		due = types.ZeroMoney()
	}
	inv.AmountDue = due
}

// RecordPayment appends a payment and re-derives the payment status.
// Legal on SENT, PARTIAL, OVERDUE.
func (inv *Invoice) RecordPayment(amount types.Money, method PaymentMethod, reference string, policy RevertPolicy) (*Payment, error) {
	if err := Lifecycle.Require(inv.Status, "record_payment", StatusSent, StatusPartial, StatusOverdue); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, apperror.NewValidation("payment amount must be positive").
			WithDetail("field", "amount")
	}

	now := time.Now().UTC()
	payment := Payment{
		ID:          id.New(),
		InvoiceID:   inv.ID,
		Amount:      amount,
		Method:      method,
		Reference:   reference,
		PaymentDate: now,
		CreatedAt:   now,
	}
	inv.Payments = append(inv.Payments, payment)

	inv.RecalculateTotals()
	inv.deriveStatus(policy)
	return &payment, nil
}

// VoidPayment removes a payment and re-derives the payment status. Whether
// a fully paid invoice retreats to PARTIAL is decided by the policy.
func (inv *Invoice) VoidPayment(paymentID id.ID, policy RevertPolicy) error {
	if inv.IsFrozen() {
		return apperror.NewInvalidTransition("invoice", string(inv.Status), "void_payment")
	}

	idx := -1
	for i := range inv.Payments {
		if inv.Payments[i].ID == paymentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apperror.NewNotFound("payment", paymentID.String())
	}

	inv.Payments = append(inv.Payments[:idx], inv.Payments[idx+1:]...)
	inv.RecalculateTotals()
	inv.deriveStatus(policy)
	return nil
}

// deriveStatus moves the status according to the recomputed amounts.
func (inv *Invoice) deriveStatus(policy RevertPolicy) {
	if inv.IsFrozen() || inv.Status == StatusDraft {
		return
	}

	switch {
	case !inv.AmountDue.IsPositive() && inv.Total.IsPositive():
		if inv.Status != StatusPaid {
			inv.Status = StatusPaid
			now := time.Now().UTC()
			inv.PaidDate = &now
		}
	case inv.AmountPaid.IsPositive():
		if inv.Status == StatusPaid {
			// A correction reopened the balance of a paid invoice.
			if policy == RevertOnShortfall {
				inv.Status = StatusPartial
				inv.PaidDate = nil
			}
			return
		}
		inv.Status = StatusPartial
	default:
		// Nothing paid: retreat from PARTIAL back to SENT, leave other
		// states (SENT, OVERDUE) as they are.
		if inv.Status == StatusPartial {
			inv.Status = StatusSent
		}
		if inv.Status == StatusPaid && policy == RevertOnShortfall {
			inv.Status = StatusSent
			inv.PaidDate = nil
		}
	}
}

// MarkOverdue moves an unpaid invoice to OVERDUE once its due date has
// passed. Returns true when the status changed.
func (inv *Invoice) MarkOverdue(now time.Time) bool {
	if inv.Status != StatusSent && inv.Status != StatusPartial {
		return false
	}
	if inv.DueDate == nil || !now.After(*inv.DueDate) {
		return false
	}
	if !inv.AmountDue.IsPositive() {
		return false
	}
	inv.Status = StatusOverdue
	return true
}

// Advance explicitly sets a lifecycle status (send, cancel, refund),
// bypassing the payment-derived logic but still validating the edge.
func (inv *Invoice) Advance(next Status) error {
	updated, err := Lifecycle.Transition(inv.Status, next, "advance")
	if err != nil {
		return err
	}
	inv.Status = updated
	return nil
}

// Validate implements entity.Validatable.
func (inv *Invoice) Validate(ctx context.Context) error {
	if err := inv.Document.Validate(ctx); err != nil {
		return err
	}

	if inv.Type != TypeSales && inv.Type != TypePurchase {
		return apperror.NewValidation("invalid invoice type").
			WithDetail("field", "type").
			WithDetail("value", string(inv.Type))
	}
	if id.IsNil(inv.CounterpartyID) {
		return apperror.NewValidation("counterparty is required").
			WithDetail("field", "counterpartyId")
	}
	if inv.Discount.IsNegative() {
		return apperror.NewValidation("discount cannot be negative").
			WithDetail("field", "discount")
	}

	return nil
}
