package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/invoicing"
	"stockroom/internal/infrastructure/http/v1/dto"
)

// InvoiceHandler handles HTTP requests for invoices and payments.
type InvoiceHandler struct {
	*BaseHandler
	service *invoicing.Service
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *invoicing.Service) *InvoiceHandler {
	return &InvoiceHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /documents/invoices.
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	counterpartyID, err := id.Parse(req.CounterpartyID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid counterpartyId format"))
		return
	}

	doc := invoicing.NewInvoice(req.Type, counterpartyID)
	doc.OrderNumber = req.OrderNumber
	doc.DueDate = req.DueDate
	doc.Comment = req.Comment
	doc.CreatedBy = h.GetUserID(c)

	for _, item := range req.Items {
		if err := doc.AddItem(item.Description, item.Quantity, item.UnitPrice, item.TaxRate); err != nil {
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

// Get handles GET /documents/invoices/:id.
func (h *InvoiceHandler) Get(c *gin.Context) {
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

// List handles GET /documents/invoices with optional filters.
func (h *InvoiceHandler) List(c *gin.Context) {
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

// AddItem handles POST /documents/invoices/:id/items.
func (h *InvoiceHandler) AddItem(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.InvoiceItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.AddItem(c.Request.Context(), docID, req.Description, req.Quantity, req.UnitPrice, req.TaxRate)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// RemoveItem handles DELETE /documents/invoices/:id/items/:lineId.
func (h *InvoiceHandler) RemoveItem(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.ParseID(c, "lineId")
	if !ok {
		return
	}

	doc, err := h.service.RemoveItem(c.Request.Context(), docID, lineID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// SetDiscount handles PUT /documents/invoices/:id/discount.
func (h *InvoiceHandler) SetDiscount(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetDiscountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.SetDiscount(c.Request.Context(), docID, req.Discount)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// RecordPayment handles POST /documents/invoices/:id/payments.
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.RecordPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.RecordPayment(c.Request.Context(), docID, req.Amount, req.Method, req.Reference)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc)
}

// VoidPayment handles DELETE /documents/invoices/:id/payments/:paymentId.
func (h *InvoiceHandler) VoidPayment(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	paymentID, ok := h.ParseID(c, "paymentId")
	if !ok {
		return
	}

	doc, err := h.service.VoidPayment(c.Request.Context(), docID, paymentID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Advance handles POST /documents/invoices/:id/advance.
func (h *InvoiceHandler) Advance(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.AdvanceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.Advance(c.Request.Context(), docID, invoicing.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Delete handles DELETE /documents/invoices/:id.
func (h *InvoiceHandler) Delete(c *gin.Context) {
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

func (h *InvoiceHandler) parseListFilter(c *gin.Context) (invoicing.ListFilter, bool) {
	var filter invoicing.ListFilter

	if v := c.Query("counterpartyId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid counterpartyId format"))
			return filter, false
		}
		filter.CounterpartyID = &parsed
	}
	if v := c.Query("type"); v != "" {
		invType := invoicing.InvoiceType(v)
		filter.Type = &invType
	}
	if v := c.Query("status"); v != "" {
		status := invoicing.Status(v)
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
	if v := c.Query("dueBefore"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dueBefore, expected RFC3339"))
			return filter, false
		}
		filter.DueBefore = &t
	}
	filter.Search = c.Query("search")
	filter.OrderBy = c.Query("orderBy")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	return filter, true
}
