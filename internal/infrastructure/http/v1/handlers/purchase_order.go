package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/orders/purchase"
	"stockroom/internal/infrastructure/http/v1/dto"
)

// PurchaseOrderHandler handles HTTP requests for purchase orders.
type PurchaseOrderHandler struct {
	*BaseHandler
	service *purchase.Service
}

// NewPurchaseOrderHandler creates a new purchase order handler.
func NewPurchaseOrderHandler(base *BaseHandler, service *purchase.Service) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /documents/purchase-orders.
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	supplierID, err := id.Parse(req.SupplierID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid supplierId format"))
		return
	}

	doc := purchase.NewPurchaseOrder(supplierID)
	doc.ExpectedDate = req.ExpectedDate
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

// Get handles GET /documents/purchase-orders/:id.
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
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

// List handles GET /documents/purchase-orders with optional filters.
func (h *PurchaseOrderHandler) List(c *gin.Context) {
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

// AddItem handles POST /documents/purchase-orders/:id/items.
func (h *PurchaseOrderHandler) AddItem(c *gin.Context) {
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

// UpdateItem handles PUT /documents/purchase-orders/:id/items/:productId.
func (h *PurchaseOrderHandler) UpdateItem(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	var req dto.OrderItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.UpdateItem(c.Request.Context(), docID, productID, req.Quantity, req.Price)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// RemoveItem handles DELETE /documents/purchase-orders/:id/items/:productId.
func (h *PurchaseOrderHandler) RemoveItem(c *gin.Context) {
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

// Advance handles POST /documents/purchase-orders/:id/advance.
func (h *PurchaseOrderHandler) Advance(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.AdvanceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.Advance(c.Request.Context(), docID, purchase.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Receive handles POST /documents/purchase-orders/:id/receive. It posts
// all outstanding quantities into the stock ledger.
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
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

	doc, err := h.service.Receive(c.Request.Context(), docID, warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Delete handles DELETE /documents/purchase-orders/:id.
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
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

func (h *PurchaseOrderHandler) parseListFilter(c *gin.Context) (purchase.ListFilter, bool) {
	var filter purchase.ListFilter

	if v := c.Query("supplierId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid supplierId format"))
			return filter, false
		}
		filter.SupplierID = &parsed
	}
	if v := c.Query("status"); v != "" {
		status := purchase.Status(v)
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
