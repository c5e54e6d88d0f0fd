// Package location provides the storage Location catalog.
// Locations form a tree inside a warehouse: zone, rack, shelf, bin.
// Stock is held at any location, bins being the usual leaf level.
package location

import (
	"context"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/entity"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
)

// LocationType defines the level of a location in the storage hierarchy.
type LocationType string

const (
	TypeZone  LocationType = "ZONE"
	TypeRack  LocationType = "RACK"
	TypeShelf LocationType = "SHELF"
	TypeBin   LocationType = "BIN"
)

// hierarchy maps each type to its required parent type. Zones are roots.
var hierarchy = map[LocationType]LocationType{
	TypeRack:  TypeZone,
	TypeShelf: TypeRack,
	TypeBin:   TypeShelf,
}

// Location represents a storage spot inside a warehouse.
// Code is unique within the warehouse; by convention the location with
// the lowest code is the warehouse's default receiving/shipping point.
type Location struct {
	entity.Catalog

	// Type is the hierarchy level: ZONE, RACK, SHELF or BIN
	Type LocationType `db:"type" json:"type"`

	// WarehouseID is the owning warehouse
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// Capacity is the maximum quantity the location can hold.
	// Only meaningful for bins; nil means unbounded.
	Capacity *types.Quantity `db:"capacity" json:"capacity,omitempty"`

	// IsActive indicates whether the location can receive stock
	IsActive bool `db:"is_active" json:"isActive"`
}

// NewLocation creates a new Location with required fields.
func NewLocation(code, name string, locType LocationType, warehouseID id.ID) *Location {
	return &Location{
		Catalog:     entity.NewCatalog(code, name),
		Type:        locType,
		WarehouseID: warehouseID,
		IsActive:    true,
	}
}

// Validate implements entity.Validatable interface.
func (l *Location) Validate(ctx context.Context) error {
	if err := l.Catalog.Validate(ctx); err != nil {
		return err
	}

	if l.Code == "" {
		return apperror.NewValidation("location code is required").
			WithDetail("field", "code")
	}

	if !isValidLocationType(l.Type) {
		return apperror.NewValidation("invalid location type").
			WithDetail("field", "type").
			WithDetail("value", string(l.Type))
	}

	if id.IsNil(l.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}

	if l.Type == TypeZone && l.ParentID != nil {
		return apperror.NewValidation("zone cannot have a parent location").
			WithDetail("field", "parentId")
	}

	if l.Capacity != nil {
		if l.Type != TypeBin {
			return apperror.NewValidation("capacity is only allowed for bins").
				WithDetail("field", "capacity").
				WithDetail("type", string(l.Type))
		}
		if !l.Capacity.IsPositive() {
			return apperror.NewValidation("capacity must be positive").
				WithDetail("field", "capacity")
		}
	}

	return nil
}

// RequiredParentType returns the type the parent location must have.
// Zones have no parent; ok is false for them.
func (l *Location) RequiredParentType() (LocationType, bool) {
	t, ok := hierarchy[l.Type]
	return t, ok
}

func isValidLocationType(t LocationType) bool {
	switch t {
	case TypeZone, TypeRack, TypeShelf, TypeBin:
		return true
	}
	return false
}
