package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/orders/sales"
	"stockroom/internal/infrastructure/http/v1/dto"
)

// SalesOrderHandler handles HTTP requests for sales orders.
type SalesOrderHandler struct {
	*BaseHandler
	service *sales.Service
}

// NewSalesOrderHandler creates a new sales order handler.
func NewSalesOrderHandler(base *BaseHandler, service *sales.Service) *SalesOrderHandler {
	return &SalesOrderHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /documents/sales-orders.
func (h *SalesOrderHandler) Create(c *gin.Context) {
	var req dto.CreateSalesOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	customerID, err := id.Parse(req.CustomerID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid customerId format"))
		return
	}

	doc := sales.NewSalesOrder(customerID)
	doc.Comment = req.Comment
	doc.CreatedBy = h.GetUserID(c)

	for _, item := range req.Items {
		productID, err := id.Parse(item.ProductID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid productId format").
				WithDetail("productId", item.ProductID))
			return
		}
		if err := doc.AddItem(productID, item.Quantity, item.Price); err != nil {
			h.Error(c, err)
			return
		}
	}

	if err := h.service.Create(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc)
}

// Get handles GET /documents/sales-orders/:id.
func (h *SalesOrderHandler) Get(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// List handles GET /documents/sales-orders with optional filters.
func (h *SalesOrderHandler) List(c *gin.Context) {
	filter, ok := h.parseListFilter(c)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// AddItem handles POST /documents/sales-orders/:id/items.
func (h *SalesOrderHandler) AddItem(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.OrderItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	doc, err := h.service.AddItem(c.Request.Context(), docID, productID, req.Quantity, req.Price)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// RemoveItem handles DELETE /documents/sales-orders/:id/items/:productId.
func (h *SalesOrderHandler) RemoveItem(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	doc, err := h.service.RemoveItem(c.Request.Context(), docID, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Advance handles POST /documents/sales-orders/:id/advance.
func (h *SalesOrderHandler) Advance(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.AdvanceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.Advance(c.Request.Context(), docID, sales.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Ship handles POST /documents/sales-orders/:id/ship. All lines issue
// from the ledger atomically; a single shortage aborts the whole
// shipment.
func (h *SalesOrderHandler) Ship(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.FulfillOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	warehouseID, err := id.Parse(req.WarehouseID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid warehouseId format"))
		return
	}

	doc, err := h.service.Ship(c.Request.Context(), docID, warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Delete handles DELETE /documents/sales-orders/:id.
func (h *SalesOrderHandler) Delete(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *SalesOrderHandler) parseListFilter(c *gin.Context) (sales.ListFilter, bool) {
	var filter sales.ListFilter

	if v := c.Query("customerId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid customerId format"))
			return filter, false
		}
		filter.CustomerID = &parsed
	}
	if v := c.Query("status"); v != "" {
		status := sales.Status(v)
		filter.Status = &status
	}
	if v := c.Query("dateFrom"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dateFrom, expected RFC3339"))
			return filter, false
		}
		filter.DateFrom = &t
	}
	if v := c.Query("dateTo"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dateTo, expected RFC3339"))
			return filter, false
		}
		filter.DateTo = &t
	}
	filter.Search = c.Query("search")
	filter.OrderBy = c.Query("orderBy")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	return filter, true
}
