package dto

import (
	"time"

	"stockroom/internal/core/types"
)

// CreatePurchaseOrderRequest is the request body for creating a purchase order.
type CreatePurchaseOrderRequest struct {
	SupplierID   string             `json:"supplierId" binding:"required"`
	ExpectedDate *time.Time         `json:"expectedDate"`
	Comment      string             `json:"comment"`
	Items        []OrderItemRequest `json:"items"`
}

// CreateSalesOrderRequest is the request body for creating a sales order.
type CreateSalesOrderRequest struct {
	CustomerID string             `json:"customerId" binding:"required"`
	Comment    string             `json:"comment"`
	Items      []OrderItemRequest `json:"items"`
}

// OrderItemRequest is one line of an order.
// Price is the unit cost on purchase orders and the unit price on sales
// orders.
type OrderItemRequest struct {
	ProductID string         `json:"productId" binding:"required"`
	Quantity  types.Quantity `json:"quantity" binding:"required"`
	Price     types.Money    `json:"price"`
}

// FulfillOrderRequest names the warehouse that receives or ships the goods.
type FulfillOrderRequest struct {
	WarehouseID string `json:"warehouseId" binding:"required"`
}
