package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockroom/internal/domain"
	"stockroom/internal/domain/catalogs/counterparty"
	"stockroom/internal/infrastructure/http/v1/dto"
)

// CounterpartyHandler handles HTTP requests for suppliers and customers.
type CounterpartyHandler struct {
	*CatalogHandler[*counterparty.Counterparty, dto.CreateCounterpartyRequest, dto.UpdateCounterpartyRequest]
	service *counterparty.Service
}

// NewCounterpartyHandler creates a new counterparty handler.
func NewCounterpartyHandler(base *BaseHandler, service *counterparty.Service) *CounterpartyHandler {
	cfg := CatalogHandlerConfig[*counterparty.Counterparty, dto.CreateCounterpartyRequest, dto.UpdateCounterpartyRequest]{
		Service:    service.CatalogService,
		EntityName: "counterparty",
		MapCreateDTO: func(req dto.CreateCounterpartyRequest) *counterparty.Counterparty {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateCounterpartyRequest, existing *counterparty.Counterparty) *counterparty.Counterparty {
			req.ApplyTo(existing)
			return existing
		},
	}

	return &CounterpartyHandler{
		CatalogHandler: NewCatalogHandler(base, cfg),
		service:        service,
	}
}

// ListSuppliers handles GET /catalog/counterparties/suppliers.
func (h *CounterpartyHandler) ListSuppliers(c *gin.Context) {
	result, err := h.service.ListSuppliers(c.Request.Context(), h.typeListFilter(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// ListCustomers handles GET /catalog/counterparties/customers.
func (h *CounterpartyHandler) ListCustomers(c *gin.Context) {
	result, err := h.service.ListCustomers(c.Request.Context(), h.typeListFilter(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

func (h *CounterpartyHandler) typeListFilter(c *gin.Context) domain.ListFilter {
	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	return filter
}
