package dto

import (
	"stockroom/internal/core/types"
	"stockroom/internal/domain/catalogs/product"
)

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	Code         string         `json:"code"`
	Name         string         `json:"name" binding:"required"`
	SKU          string         `json:"sku" binding:"required"`
	Category     *string        `json:"category"`
	UnitPrice    types.Money    `json:"unitPrice"`
	CostPrice    types.Money    `json:"costPrice"`
	ReorderPoint types.Quantity `json:"reorderPoint"`
	MaxStock     types.Quantity `json:"maxStock"`
	Unit         string         `json:"unit"`
	Barcode      *string        `json:"barcode"`
	Description  *string        `json:"description"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() *product.Product {
	p := product.NewProduct(r.Code, r.Name, r.SKU)
	p.Category = r.Category
	p.UnitPrice = r.UnitPrice
	p.CostPrice = r.CostPrice
	p.ReorderPoint = r.ReorderPoint
	p.MaxStock = r.MaxStock
	if r.Unit != "" {
		p.Unit = r.Unit
	}
	p.Barcode = r.Barcode
	p.Description = r.Description
	return p
}

// UpdateProductRequest is the request body for updating a product.
// SKU is immutable and current stock belongs to the ledger, so neither
// appears here.
type UpdateProductRequest struct {
	Name         string         `json:"name" binding:"required"`
	Category     *string        `json:"category"`
	UnitPrice    types.Money    `json:"unitPrice"`
	CostPrice    types.Money    `json:"costPrice"`
	ReorderPoint types.Quantity `json:"reorderPoint"`
	MaxStock     types.Quantity `json:"maxStock"`
	Unit         string         `json:"unit"`
	Barcode      *string        `json:"barcode"`
	Description  *string        `json:"description"`
	IsActive     *bool          `json:"isActive"`
	Version      int            `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	p.Name = r.Name
	p.Category = r.Category
	p.UnitPrice = r.UnitPrice
	p.CostPrice = r.CostPrice
	p.ReorderPoint = r.ReorderPoint
	p.MaxStock = r.MaxStock
	if r.Unit != "" {
		p.Unit = r.Unit
	}
	p.Barcode = r.Barcode
	p.Description = r.Description
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	p.Version = r.Version
}
