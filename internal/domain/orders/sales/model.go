// Package sales provides the SalesOrder document.
// Sales orders sell goods to customers; shipping one issues stock
// through the ledger.
package sales

import (
	"context"
	"time"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/entity"
	"stockroom/internal/core/id"
	"stockroom/internal/core/statemachine"
	"stockroom/internal/core/types"
)

// Status is the sales order lifecycle state.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) String() string { return string(s) }

// Lifecycle: DRAFT > PENDING > CONFIRMED > SHIPPED > DELIVERED, any
// non-terminal state may be cancelled. DELIVERED and CANCELLED are terminal.
var Lifecycle = statemachine.New("sales_order", []statemachine.Edge[Status]{
	{From: StatusDraft, To: StatusPending},
	{From: StatusPending, To: StatusConfirmed},
	{From: StatusConfirmed, To: StatusShipped},
	{From: StatusShipped, To: StatusDelivered},
	{From: StatusDraft, To: StatusCancelled},
	{From: StatusPending, To: StatusCancelled},
	{From: StatusConfirmed, To: StatusCancelled},
	{From: StatusShipped, To: StatusCancelled},
})

// SalesOrder represents a sales order document.
type SalesOrder struct {
	entity.Document

	// CustomerID references the customer counterparty
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// Status is the lifecycle state
	Status Status `db:"status" json:"status"`

	// Total is the sum of quantity*unitPrice over current lines,
	// recomputed after every line mutation
	Total types.Money `db:"total" json:"total"`

	// ShippedDate is stamped when the order ships
	ShippedDate *time.Time `db:"shipped_date" json:"shippedDate,omitempty"`

	// DeliveredDate is stamped when the order reaches DELIVERED
	DeliveredDate *time.Time `db:"delivered_date" json:"deliveredDate,omitempty"`

	// Table part: ordered goods
	Items []SalesOrderItem `db:"-" json:"items"`
}

// SalesOrderItem represents a line in the sales order.
type SalesOrderItem struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID `db:"product_id" json:"productId"`

	Quantity types.Quantity `db:"quantity" json:"quantity"`

	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// Amount is quantity*unitPrice
	Amount types.Money `db:"amount" json:"amount"`
}

// NewSalesOrder creates a draft sales order.
func NewSalesOrder(customerID id.ID) *SalesOrder {
	return &SalesOrder{
		Document:   entity.NewDocument(),
		CustomerID: customerID,
		Status:     StatusDraft,
		Total:      types.ZeroMoney(),
		Items:      make([]SalesOrderItem, 0),
	}
}

// AddItem adds a line, merging into an existing line when the product is
// already present: the quantity is incremented and the unit price
// overwritten. Legal in DRAFT and PENDING.
func (o *SalesOrder) AddItem(productID id.ID, qty types.Quantity, unitPrice types.Money) error {
	if err := o.requireMutable("add_item"); err != nil {
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
	if unitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}

	if idx := o.itemIndex(productID); idx >= 0 {
		o.Items[idx].Quantity += qty
		o.Items[idx].UnitPrice = unitPrice
	} else {
		o.Items = append(o.Items, SalesOrderItem{
			LineID:    id.New(),
			LineNo:    len(o.Items) + 1,
			ProductID: productID,
			Quantity:  qty,
			UnitPrice: unitPrice,
		})
	}

	o.RecalculateTotal()
	return nil
}

// RemoveItem deletes a line. Legal in DRAFT and PENDING.
func (o *SalesOrder) RemoveItem(productID id.ID) error {
	if err := o.requireMutable("remove_item"); err != nil {
		return err
	}

	idx := o.itemIndex(productID)
	if idx < 0 {
		return apperror.NewNotFound("sales_order_item", productID.String())
	}

	o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
	for i := range o.Items {
		o.Items[i].LineNo = i + 1
	}
	o.RecalculateTotal()
	return nil
}

// RecalculateTotal updates line amounts and the header total from lines.
func (o *SalesOrder) RecalculateTotal() {
	total := types.ZeroMoney()
	for i := range o.Items {
		o.Items[i].Amount = o.Items[i].UnitPrice.Mul(o.Items[i].Quantity.Decimal())
		total = total.Add(o.Items[i].Amount)
	}
	o.Total = total
}

// Advance moves the order to the next status, validating the edge.
func (o *SalesOrder) Advance(next Status) error {
	updated, err := Lifecycle.Transition(o.Status, next, "advance")
	if err != nil {
		return err
	}
	o.Status = updated

	now := time.Now().UTC()
	switch next {
	case StatusShipped:
		o.ShippedDate = &now
	case StatusDelivered:
		o.DeliveredDate = &now
	}
	return nil
}

// Validate implements entity.Validatable.
func (o *SalesOrder) Validate(ctx context.Context) error {
	if err := o.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(o.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}

	for _, item := range o.Items {
		if !item.Quantity.IsPositive() {
			return apperror.NewValidation("line quantity must be positive").
				WithDetail("lineNo", item.LineNo)
		}
		if item.UnitPrice.IsNegative() {
			return apperror.NewValidation("line unit price cannot be negative").
				WithDetail("lineNo", item.LineNo)
		}
	}

	return nil
}

func (o *SalesOrder) itemIndex(productID id.ID) int {
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (o *SalesOrder) requireMutable(action string) error {
	return Lifecycle.Require(o.Status, action, StatusDraft, StatusPending)
}
