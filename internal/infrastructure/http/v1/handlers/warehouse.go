package handlers

import (
	"stockroom/internal/domain/catalogs/warehouse"
	"stockroom/internal/infrastructure/http/v1/dto"

	"github.com/gin-gonic/gin"
)

// WarehouseHandler handles HTTP requests for warehouses.
type WarehouseHandler struct {
	*CatalogHandler[*warehouse.Warehouse, dto.CreateWarehouseRequest, dto.UpdateWarehouseRequest]
	service *warehouse.Service
}

// NewWarehouseHandler creates a new warehouse handler.
func NewWarehouseHandler(base *BaseHandler, service *warehouse.Service) *WarehouseHandler {
	cfg := CatalogHandlerConfig[*warehouse.Warehouse, dto.CreateWarehouseRequest, dto.UpdateWarehouseRequest]{
		Service:    service.CatalogService,
		EntityName: "warehouse",
		MapCreateDTO: func(req dto.CreateWarehouseRequest) *warehouse.Warehouse {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateWarehouseRequest, existing *warehouse.Warehouse) *warehouse.Warehouse {
			req.ApplyTo(existing)
			return existing
		},
	}

	return &WarehouseHandler{
		CatalogHandler: NewCatalogHandler(base, cfg),
		service:        service,
	}
}

// GetDefault handles GET /catalog/warehouses/default.
func (h *WarehouseHandler) GetDefault(c *gin.Context) {
	wh, err := h.service.GetDefault(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, wh)
}
