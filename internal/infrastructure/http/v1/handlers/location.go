package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/catalogs/location"
	"stockroom/internal/infrastructure/http/v1/dto"
)

// LocationHandler handles HTTP requests for storage locations.
type LocationHandler struct {
	*CatalogHandler[*location.Location, dto.CreateLocationRequest, dto.UpdateLocationRequest]
	service *location.Service
}

// NewLocationHandler creates a new location handler.
func NewLocationHandler(base *BaseHandler, service *location.Service) *LocationHandler {
	cfg := CatalogHandlerConfig[*location.Location, dto.CreateLocationRequest, dto.UpdateLocationRequest]{
		Service:    service.CatalogService,
		EntityName: "location",
		MapCreateDTO: func(req dto.CreateLocationRequest) *location.Location {
			// WarehouseID parsing happens in the Create override; the
			// generic path never runs for locations.
			return nil
		},
		MapUpdateDTO: func(req dto.UpdateLocationRequest, existing *location.Location) *location.Location {
			req.ApplyTo(existing)
			return existing
		},
	}

	return &LocationHandler{
		CatalogHandler: NewCatalogHandler(base, cfg),
		service:        service,
	}
}

// Create overrides the generic create to parse the warehouse reference.
func (h *LocationHandler) Create(c *gin.Context) {
	var req dto.CreateLocationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	warehouseID, err := id.Parse(req.WarehouseID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid warehouseId format"))
		return
	}

	loc := req.ToEntity(warehouseID)

	if err := h.service.Create(c.Request.Context(), loc); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, loc)
}

// ListByWarehouse handles GET /catalog/locations/warehouse/:warehouseId.
func (h *LocationHandler) ListByWarehouse(c *gin.Context) {
	warehouseID, ok := h.ParseID(c, "warehouseId")
	if !ok {
		return
	}

	items, err := h.service.ListByWarehouse(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetDefaultForWarehouse handles GET /catalog/locations/warehouse/:warehouseId/default.
func (h *LocationHandler) GetDefaultForWarehouse(c *gin.Context) {
	warehouseID, ok := h.ParseID(c, "warehouseId")
	if !ok {
		return
	}

	loc, err := h.service.GetDefaultForWarehouse(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, loc)
}
