package dto

import (
	"stockroom/internal/core/types"
)

// ReceiveStockRequest records an inbound stock movement.
type ReceiveStockRequest struct {
	ProductID  string         `json:"productId" binding:"required"`
	LocationID string         `json:"locationId" binding:"required"`
	Quantity   types.Quantity `json:"quantity" binding:"required"`
	Reference  string         `json:"reference"`
}

// IssueStockRequest records an outbound stock movement.
type IssueStockRequest struct {
	ProductID  string         `json:"productId" binding:"required"`
	LocationID string         `json:"locationId" binding:"required"`
	Quantity   types.Quantity `json:"quantity" binding:"required"`
	Reference  string         `json:"reference"`
}

// TransferStockRequest moves stock between two locations.
type TransferStockRequest struct {
	ProductID      string         `json:"productId" binding:"required"`
	FromLocationID string         `json:"fromLocationId" binding:"required"`
	ToLocationID   string         `json:"toLocationId" binding:"required"`
	Quantity       types.Quantity `json:"quantity" binding:"required"`
	Reference      string         `json:"reference"`
}

// QuantityResponse returns a single on-hand quantity.
type QuantityResponse struct {
	ProductID  string         `json:"productId"`
	LocationID string         `json:"locationId"`
	Quantity   types.Quantity `json:"quantity"`
}
