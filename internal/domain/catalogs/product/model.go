// Package product provides the Product catalog.
// Products are the stockable items moved by the ledger and sold or
// purchased through orders.
package product

import (
	"context"
	"regexp"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/entity"
	"stockroom/internal/core/types"
)

// SKU pattern: uppercase alphanumeric with dashes, 3..32 chars.
var skuRE = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{2,31}$`)

// Product represents a stockable item.
type Product struct {
	entity.Catalog

	// SKU is the stock keeping unit, unique and immutable once set
	SKU string `db:"sku" json:"sku"`

	// Category is a free-form grouping label
	Category *string `db:"category" json:"category,omitempty"`

	// UnitPrice is the selling price per unit
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// CostPrice is the purchase cost per unit
	CostPrice types.Money `db:"cost_price" json:"costPrice"`

	// CurrentStock is the cached total quantity across all locations.
	// Maintained by the stock ledger; must equal the sum of the
	// product's StockItem quantities.
	CurrentStock types.Quantity `db:"current_stock" json:"currentStock"`

	// ReorderPoint triggers the low-stock report when CurrentStock falls to or below it
	ReorderPoint types.Quantity `db:"reorder_point" json:"reorderPoint"`

	// MaxStock is the advisory upper bound for replenishment
	MaxStock types.Quantity `db:"max_stock" json:"maxStock"`

	// Unit is the unit of measure label (pcs, kg, box)
	Unit string `db:"unit" json:"unit"`

	// Barcode is the item barcode (EAN-13, etc.)
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	// Description is a detailed description
	Description *string `db:"description" json:"description,omitempty"`

	// IsActive indicates whether the product can appear on new order lines
	IsActive bool `db:"is_active" json:"isActive"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(code, name, sku string) *Product {
	return &Product{
		Catalog:   entity.NewCatalog(code, name),
		SKU:       sku,
		UnitPrice: types.ZeroMoney(),
		CostPrice: types.ZeroMoney(),
		Unit:      "pcs",
		IsActive:  true,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.SKU == "" {
		return apperror.NewValidation("sku is required").
			WithDetail("field", "sku")
	}
	if !skuRE.MatchString(p.SKU) {
		return apperror.NewValidation("sku must be 3-32 uppercase alphanumeric characters").
			WithDetail("field", "sku").
			WithDetail("value", p.SKU)
	}

	if p.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}
	if p.CostPrice.IsNegative() {
		return apperror.NewValidation("cost price cannot be negative").
			WithDetail("field", "costPrice")
	}

	if p.ReorderPoint.IsNegative() {
		return apperror.NewValidation("reorder point cannot be negative").
			WithDetail("field", "reorderPoint")
	}
	if p.MaxStock.IsNegative() {
		return apperror.NewValidation("max stock cannot be negative").
			WithDetail("field", "maxStock")
	}
	if !p.MaxStock.IsZero() && p.MaxStock < p.ReorderPoint {
		return apperror.NewValidation("max stock cannot be below reorder point").
			WithDetail("field", "maxStock")
	}

	return nil
}

// IsLowStock reports whether the cached stock is at or below the reorder point.
func (p *Product) IsLowStock() bool {
	return !p.ReorderPoint.IsZero() && p.CurrentStock <= p.ReorderPoint
}

// Margin returns unit price minus cost price.
func (p *Product) Margin() types.Money {
	return p.UnitPrice.Sub(p.CostPrice)
}
