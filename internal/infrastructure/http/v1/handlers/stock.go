package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/entity"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/ledger"
	"stockroom/internal/infrastructure/http/v1/dto"
)

// StockHandler exposes the stock ledger over HTTP.
type StockHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewStockHandler creates a new stock ledger handler.
func NewStockHandler(base *BaseHandler, service *ledger.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Receive handles POST /stock/receive.
func (h *StockHandler) Receive(c *gin.Context) {
	var req dto.ReceiveStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, locationID, ok := h.parseItemIDs(c, req.ProductID, req.LocationID)
	if !ok {
		return
	}

	movement, err := h.service.Receive(c.Request.Context(), productID, locationID, req.Quantity, req.Reference)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, movement)
}

// Issue handles POST /stock/issue.
func (h *StockHandler) Issue(c *gin.Context) {
	var req dto.IssueStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, locationID, ok := h.parseItemIDs(c, req.ProductID, req.LocationID)
	if !ok {
		return
	}

	movement, err := h.service.Issue(c.Request.Context(), productID, locationID, req.Quantity, req.Reference)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, movement)
}

// Transfer handles POST /stock/transfer.
func (h *StockHandler) Transfer(c *gin.Context) {
	var req dto.TransferStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}
	fromID, err := id.Parse(req.FromLocationID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid fromLocationId format"))
		return
	}
	toID, err := id.Parse(req.ToLocationID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid toLocationId format"))
		return
	}

	movement, err := h.service.Transfer(c.Request.Context(), productID, fromID, toID, req.Quantity, req.Reference)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, movement)
}

// GetQuantity handles GET /stock/quantity?productId=&locationId=.
func (h *StockHandler) GetQuantity(c *gin.Context) {
	productID, locationID, ok := h.parseItemIDs(c, c.Query("productId"), c.Query("locationId"))
	if !ok {
		return
	}

	qty, err := h.service.GetQuantity(c.Request.Context(), productID, locationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.QuantityResponse{
		ProductID:  productID.String(),
		LocationID: locationID.String(),
		Quantity:   qty,
	})
}

// GetProductStock handles GET /stock/product/:id.
func (h *StockHandler) GetProductStock(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	items, err := h.service.GetProductStock(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetLocationStock handles GET /stock/location/:id.
func (h *StockHandler) GetLocationStock(c *gin.Context) {
	locationID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	items, err := h.service.GetLocationStock(c.Request.Context(), locationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetMovements handles GET /stock/movements with optional filters.
func (h *StockHandler) GetMovements(c *gin.Context) {
	filter, ok := h.parseMovementFilter(c)
	if !ok {
		return
	}

	movements, err := h.service.GetMovementHistory(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": movements})
}

// Reconcile handles POST /stock/reconcile. It returns the drifts found,
// which is an empty list when the ledger is consistent.
func (h *StockHandler) Reconcile(c *gin.Context) {
	drifts, err := h.service.Reconcile(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"consistent": len(drifts) == 0,
		"drifts":     drifts,
	})
}

func (h *StockHandler) parseItemIDs(c *gin.Context, product, location string) (id.ID, id.ID, bool) {
	productID, err := id.Parse(product)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return id.Nil(), id.Nil(), false
	}
	locationID, err := id.Parse(location)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid locationId format"))
		return id.Nil(), id.Nil(), false
	}
	return productID, locationID, true
}

func (h *StockHandler) parseMovementFilter(c *gin.Context) (ledger.MovementFilter, bool) {
	var filter ledger.MovementFilter

	if v := c.Query("productId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid productId format"))
			return filter, false
		}
		filter.ProductID = &parsed
	}
	if v := c.Query("locationId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid locationId format"))
			return filter, false
		}
		filter.LocationID = &parsed
	}
	if v := c.Query("type"); v != "" {
		mt := entity.MovementType(v)
		if mt != entity.MovementIn && mt != entity.MovementOut && mt != entity.MovementTransfer {
			h.Error(c, apperror.NewValidation("invalid movement type"))
			return filter, false
		}
		filter.Type = &mt
	}
	filter.Reference = c.Query("reference")
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid from date, expected RFC3339"))
			return filter, false
		}
		filter.FromDate = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid to date, expected RFC3339"))
			return filter, false
		}
		filter.ToDate = &t
	}
	filter.Limit = h.ParseIntQuery(c, "limit", 100)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	return filter, true
}
