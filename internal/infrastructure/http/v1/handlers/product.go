package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockroom/internal/core/apperror"
	"stockroom/internal/domain/catalogs/product"
	"stockroom/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	*CatalogHandler[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]
	service *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	cfg := CatalogHandlerConfig[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]{
		Service:    service.CatalogService,
		EntityName: "product",
		MapCreateDTO: func(req dto.CreateProductRequest) *product.Product {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateProductRequest, existing *product.Product) *product.Product {
			req.ApplyTo(existing)
			return existing
		},
	}

	return &ProductHandler{
		CatalogHandler: NewCatalogHandler(base, cfg),
		service:        service,
	}
}

// GetBySKU handles GET /catalog/products/sku/:sku.
func (h *ProductHandler) GetBySKU(c *gin.Context) {
	sku := c.Param("sku")
	if sku == "" {
		h.Error(c, apperror.NewValidation("sku is required"))
		return
	}

	p, err := h.service.GetBySKU(c.Request.Context(), sku)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// ListLowStock handles GET /catalog/products/low-stock.
func (h *ProductHandler) ListLowStock(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 100)

	items, err := h.service.ListLowStock(c.Request.Context(), limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
