// Package entity provides core domain entities.
package entity

import (
	"time"

	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
)

// MovementType defines the direction of a stock movement.
type MovementType string

const (
	// MovementIn increases stock at the destination location
	MovementIn MovementType = "IN"
	// MovementOut decreases stock at the source location
	MovementOut MovementType = "OUT"
	// MovementTransfer moves stock between two locations; total stock unchanged
	MovementTransfer MovementType = "TRANSFER"
)

// StockMovement is the append-only audit record of a quantity change.
// This is the system of record for "why did stock change"; StockItem and
// Product.CurrentStock are derived caches that must stay in lockstep with it.
// Movements are immutable - never updated after creation.
type StockMovement struct {
	// ID is unique identifier for this movement (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Type: IN, OUT or TRANSFER
	Type MovementType `db:"type" json:"type"`

	ProductID id.ID `db:"product_id" json:"productId"`

	// FromLocationID is set for OUT and TRANSFER
	FromLocationID *id.ID `db:"from_location_id" json:"fromLocationId,omitempty"`

	// ToLocationID is set for IN and TRANSFER
	ToLocationID *id.ID `db:"to_location_id" json:"toLocationId,omitempty"`

	// Quantity is always positive; direction is carried by Type
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// Reference is free text, typically the driving order number
	Reference string `db:"reference" json:"reference,omitempty"`

	// CreatedBy is the caller recorded for audit attribution
	CreatedBy string `db:"created_by" json:"createdBy,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewStockMovement creates a movement record.
func NewStockMovement(mt MovementType, productID id.ID, from, to *id.ID, qty types.Quantity, reference, createdBy string) StockMovement {
	return StockMovement{
		ID:             id.New(),
		Type:           mt,
		ProductID:      productID,
		FromLocationID: from,
		ToLocationID:   to,
		Quantity:       qty,
		Reference:      reference,
		CreatedBy:      createdBy,
		CreatedAt:      time.Now().UTC(),
	}
}

// NetQuantity returns the movement's effect on total product stock.
// TRANSFER nets to zero; IN is positive, OUT negative.
func (m *StockMovement) NetQuantity() types.Quantity {
	switch m.Type {
	case MovementIn:
		return m.Quantity
	case MovementOut:
		return m.Quantity.Neg()
	default:
		return 0
	}
}

// StockItem is the cached quantity for one (product, location) pair.
// Created on first receipt into a location; rows are left in place at zero.
type StockItem struct {
	ProductID  id.ID `db:"product_id" json:"productId"`
	LocationID id.ID `db:"location_id" json:"locationId"`

	// Quantity is never negative
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	LastMovementAt time.Time `db:"last_movement_at" json:"lastMovementAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
