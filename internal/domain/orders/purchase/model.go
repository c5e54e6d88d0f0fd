// Package purchase provides the PurchaseOrder document.
// Purchase orders buy goods from suppliers; receiving one drives the
// stock ledger.
package purchase

import (
	"context"
	"time"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/entity"
	"stockroom/internal/core/id"
	"stockroom/internal/core/statemachine"
	"stockroom/internal/core/types"
)

// Status is the purchase order lifecycle state.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSent      Status = "SENT"
	StatusConfirmed Status = "CONFIRMED"
	StatusPartial   Status = "PARTIAL"
	StatusReceived  Status = "RECEIVED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) String() string { return string(s) }

// Lifecycle: DRAFT > SENT > CONFIRMED > (PARTIAL) > RECEIVED, any
// non-terminal state may be cancelled. RECEIVED and CANCELLED are terminal.
var Lifecycle = statemachine.New("purchase_order", []statemachine.Edge[Status]{
	{From: StatusDraft, To: StatusSent},
	{From: StatusSent, To: StatusConfirmed},
	{From: StatusConfirmed, To: StatusPartial},
	{From: StatusConfirmed, To: StatusReceived},
	{From: StatusPartial, To: StatusReceived},
	{From: StatusDraft, To: StatusCancelled},
	{From: StatusSent, To: StatusCancelled},
	{From: StatusConfirmed, To: StatusCancelled},
	{From: StatusPartial, To: StatusCancelled},
})

// PurchaseOrder represents a purchase order document.
type PurchaseOrder struct {
	entity.Document

	// SupplierID references the supplier counterparty
	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	// Status is the lifecycle state
	Status Status `db:"status" json:"status"`

	// Total is the sum of quantity*unitCost over current lines,
	// recomputed after every line mutation
	Total types.Money `db:"total" json:"total"`

	// ExpectedDate is the promised delivery date
	ExpectedDate *time.Time `db:"expected_date" json:"expectedDate,omitempty"`

	// ReceivedDate is stamped when the order reaches RECEIVED
	ReceivedDate *time.Time `db:"received_date" json:"receivedDate,omitempty"`

	// Table part: ordered goods
	Items []PurchaseOrderItem `db:"-" json:"items"`
}

// PurchaseOrderItem represents a line in the purchase order.
type PurchaseOrderItem struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID `db:"product_id" json:"productId"`

	// Quantity ordered
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// ReceivedQty is the cumulative received amount. Monotonically
	// non-decreasing and never above Quantity; the receive watermark.
	ReceivedQty types.Quantity `db:"received_qty" json:"receivedQty"`

	UnitCost types.Money `db:"unit_cost" json:"unitCost"`

	// Amount is quantity*unitCost
	Amount types.Money `db:"amount" json:"amount"`
}

// Outstanding returns the quantity still to receive.
func (i PurchaseOrderItem) Outstanding() types.Quantity {
	if i.ReceivedQty >= i.Quantity {
		return 0
	}
	return i.Quantity - i.ReceivedQty
}

// NewPurchaseOrder creates a draft purchase order.
func NewPurchaseOrder(supplierID id.ID) *PurchaseOrder {
	return &PurchaseOrder{
		Document:   entity.NewDocument(),
		SupplierID: supplierID,
		Status:     StatusDraft,
		Total:      types.ZeroMoney(),
		Items:      make([]PurchaseOrderItem, 0),
	}
}

// AddItem adds a line, merging into an existing line when the product is
// already present: the quantity is incremented and the unit cost
// overwritten, so no duplicate lines arise. Legal only in DRAFT.
func (p *PurchaseOrder) AddItem(productID id.ID, qty types.Quantity, unitCost types.Money) error {
	if err := p.requireDraft("add_item"); err != nil {
		return err
	}
	if id.IsNil(productID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if !qty.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}
	if unitCost.IsNegative() {
		return apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "unitCost")
	}

	if idx := p.itemIndex(productID); idx >= 0 {
		p.Items[idx].Quantity += qty
		p.Items[idx].UnitCost = unitCost
	} else {
		p.Items = append(p.Items, PurchaseOrderItem{
			LineID:    id.New(),
			LineNo:    len(p.Items) + 1,
			ProductID: productID,
			Quantity:  qty,
			UnitCost:  unitCost,
		})
	}

	p.RecalculateTotal()
	return nil
}

// UpdateItem replaces the quantity and unit cost of an existing line.
// Legal only in DRAFT.
func (p *PurchaseOrder) UpdateItem(productID id.ID, qty types.Quantity, unitCost types.Money) error {
	if err := p.requireDraft("update_item"); err != nil {
		return err
	}
	if !qty.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}

	idx := p.itemIndex(productID)
	if idx < 0 {
		return apperror.NewNotFound("purchase_order_item", productID.String())
	}

	p.Items[idx].Quantity = qty
	p.Items[idx].UnitCost = unitCost
	p.RecalculateTotal()
	return nil
}

// RemoveItem deletes a line. Legal only in DRAFT.
func (p *PurchaseOrder) RemoveItem(productID id.ID) error {
	if err := p.requireDraft("remove_item"); err != nil {
		return err
	}

	idx := p.itemIndex(productID)
	if idx < 0 {
		return apperror.NewNotFound("purchase_order_item", productID.String())
	}

	p.Items = append(p.Items[:idx], p.Items[idx+1:]...)
	for i := range p.Items {
		p.Items[i].LineNo = i + 1
	}
	p.RecalculateTotal()
	return nil
}

// RecalculateTotal updates line amounts and the header total from lines.
func (p *PurchaseOrder) RecalculateTotal() {
	total := types.ZeroMoney()
	for i := range p.Items {
		p.Items[i].Amount = p.Items[i].UnitCost.Mul(p.Items[i].Quantity.Decimal())
		total = total.Add(p.Items[i].Amount)
	}
	p.Total = total
}

// Advance moves the order to the next status, validating the edge.
func (p *PurchaseOrder) Advance(next Status) error {
	updated, err := Lifecycle.Transition(p.Status, next, "advance")
	if err != nil {
		return err
	}
	p.Status = updated
	if next == StatusReceived {
		now := time.Now().UTC()
		p.ReceivedDate = &now
	}
	return nil
}

// IsFullyReceived reports whether every line has been received in full.
func (p *PurchaseOrder) IsFullyReceived() bool {
	for _, item := range p.Items {
		if item.Outstanding() > 0 {
			return false
		}
	}
	return true
}

// Validate implements entity.Validatable.
func (p *PurchaseOrder) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}

	for _, item := range p.Items {
		if !item.Quantity.IsPositive() {
			return apperror.NewValidation("line quantity must be positive").
				WithDetail("lineNo", item.LineNo)
		}
		if item.ReceivedQty.IsNegative() || item.ReceivedQty > item.Quantity {
			return apperror.NewValidation("received quantity out of range").
				WithDetail("lineNo", item.LineNo)
		}
		if item.UnitCost.IsNegative() {
			return apperror.NewValidation("line unit cost cannot be negative").
				WithDetail("lineNo", item.LineNo)
		}
	}

	return nil
}

func (p *PurchaseOrder) itemIndex(productID id.ID) int {
	for i := range p.Items {
		if p.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (p *PurchaseOrder) requireDraft(action string) error {
	return Lifecycle.Require(p.Status, action, StatusDraft)
}
