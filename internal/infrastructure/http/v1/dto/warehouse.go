package dto

import (
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/domain/catalogs/location"
	"stockroom/internal/domain/catalogs/warehouse"
)

// CreateWarehouseRequest is the request body for creating a warehouse.
type CreateWarehouseRequest struct {
	Code        string                  `json:"code"`
	Name        string                  `json:"name" binding:"required"`
	Type        warehouse.WarehouseType `json:"type" binding:"required"`
	Address     *string                 `json:"address"`
	IsDefault   bool                    `json:"isDefault"`
	Description *string                 `json:"description"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateWarehouseRequest) ToEntity() *warehouse.Warehouse {
	wh := warehouse.NewWarehouse(r.Code, r.Name, r.Type)
	wh.Address = r.Address
	wh.IsDefault = r.IsDefault
	wh.Description = r.Description
	return wh
}

// UpdateWarehouseRequest is the request body for updating a warehouse.
type UpdateWarehouseRequest struct {
	Name        string                  `json:"name" binding:"required"`
	Type        warehouse.WarehouseType `json:"type" binding:"required"`
	Address     *string                 `json:"address"`
	IsActive    *bool                   `json:"isActive"`
	IsDefault   *bool                   `json:"isDefault"`
	Description *string                 `json:"description"`
	Version     int                     `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateWarehouseRequest) ApplyTo(wh *warehouse.Warehouse) {
	wh.Name = r.Name
	wh.Type = r.Type
	wh.Address = r.Address
	if r.IsActive != nil {
		wh.IsActive = *r.IsActive
	}
	if r.IsDefault != nil {
		wh.IsDefault = *r.IsDefault
	}
	wh.Description = r.Description
	wh.Version = r.Version
}

// CreateLocationRequest is the request body for creating a storage location.
type CreateLocationRequest struct {
	Code        string                `json:"code" binding:"required"`
	Name        string                `json:"name" binding:"required"`
	Type        location.LocationType `json:"type" binding:"required"`
	WarehouseID string                `json:"warehouseId" binding:"required"`
	ParentID    *string               `json:"parentId"`
	Capacity    *types.Quantity       `json:"capacity"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateLocationRequest) ToEntity(warehouseID id.ID) *location.Location {
	loc := location.NewLocation(r.Code, r.Name, r.Type, warehouseID)
	loc.ParentID = r.ParentID
	loc.Capacity = r.Capacity
	return loc
}

// UpdateLocationRequest is the request body for updating a storage location.
type UpdateLocationRequest struct {
	Name     string          `json:"name" binding:"required"`
	Capacity *types.Quantity `json:"capacity"`
	IsActive *bool           `json:"isActive"`
	Version  int             `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity. Type, warehouse and
// parent are fixed at creation: moving a location would silently move
// its stock.
func (r *UpdateLocationRequest) ApplyTo(loc *location.Location) {
	loc.Name = r.Name
	loc.Capacity = r.Capacity
	if r.IsActive != nil {
		loc.IsActive = *r.IsActive
	}
	loc.Version = r.Version
}
