package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/reports"
)

// ReportHandler serves read-only analytical reports.
type ReportHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportHandler creates a new report handler.
func NewReportHandler(base *BaseHandler, service *reports.Service) *ReportHandler {
	return &ReportHandler{
		BaseHandler: base,
		service:     service,
	}
}

// StockOnHand handles GET /reports/stock-on-hand.
func (h *ReportHandler) StockOnHand(c *gin.Context) {
	var filter reports.StockOnHandFilter

	var ok bool
	if filter.WarehouseIDs, ok = h.parseIDList(c, "warehouseIds"); !ok {
		return
	}
	if filter.LocationIDs, ok = h.parseIDList(c, "locationIds"); !ok {
		return
	}
	if filter.ProductIDs, ok = h.parseIDList(c, "productIds"); !ok {
		return
	}
	filter.ExcludeZero = c.Query("excludeZero") == "true"
	filter.Limit = h.ParseIntQuery(c, "limit", 100)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	report, err := h.service.GetStockOnHand(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// LowStock handles GET /reports/low-stock.
func (h *ReportHandler) LowStock(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 100)

	report, err := h.service.GetLowStock(c.Request.Context(), limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// OutstandingInvoices handles GET /reports/outstanding-invoices.
func (h *ReportHandler) OutstandingInvoices(c *gin.Context) {
	var filter reports.OutstandingInvoicesFilter

	if v := c.Query("type"); v != "" {
		filter.Type = &v
	}
	var ok bool
	if filter.CounterpartyIDs, ok = h.parseIDList(c, "counterpartyIds"); !ok {
		return
	}
	if v := c.Query("asOf"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid asOf date, expected RFC3339"))
			return
		}
		filter.AsOfDate = &t
	}
	filter.Limit = h.ParseIntQuery(c, "limit", 100)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	report, err := h.service.GetOutstandingInvoices(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// parseIDList reads a comma-separated list of UUIDs from a query param.
func (h *ReportHandler) parseIDList(c *gin.Context, name string) ([]id.ID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}

	parts := strings.Split(raw, ",")
	ids := make([]id.ID, 0, len(parts))
	for _, part := range parts {
		parsed, err := id.Parse(strings.TrimSpace(part))
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid "+name+" value").
				WithDetail("value", part))
			return nil, false
		}
		ids = append(ids, parsed)
	}
	return ids, true
}
