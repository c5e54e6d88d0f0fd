package v1

import (
	"github.com/gin-gonic/gin"

	"stockroom/internal/core/security"
	"stockroom/internal/domain/catalogs/counterparty"
	"stockroom/internal/domain/catalogs/location"
	"stockroom/internal/domain/catalogs/product"
	"stockroom/internal/domain/catalogs/warehouse"
	"stockroom/internal/domain/invoicing"
	"stockroom/internal/domain/ledger"
	"stockroom/internal/domain/orders/purchase"
	"stockroom/internal/domain/orders/sales"
	"stockroom/internal/domain/reports"
	"stockroom/internal/infrastructure/http/v1/handlers"
	"stockroom/internal/infrastructure/http/v1/middleware"
	"stockroom/internal/infrastructure/storage/postgres"
	"stockroom/pkg/logger"
)

// Services bundles the domain services the API exposes. They are
// constructed once at startup, after hook registration.
type Services struct {
	Products       *product.Service
	Warehouses     *warehouse.Service
	Locations      *location.Service
	Counterparties *counterparty.Service
	Ledger         *ledger.Service
	PurchaseOrders *purchase.Service
	SalesOrders    *sales.Service
	Invoices       *invoicing.Service
	Reports        *reports.Service
}

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// Validator for bearer token validation
	Validator middleware.TokenValidator

	// Oracle decides role-based permissions
	Oracle security.Oracle

	// Services are the wired domain services
	Services Services
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1, bearer token required
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.Validator))

	registerCatalogRoutes(api, cfg)
	registerStockRoutes(api, cfg)
	registerDocumentRoutes(api, cfg)
	registerReportRoutes(api, cfg)

	return router
}

func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()
	oracle := cfg.Oracle

	// --- PRODUCTS ---
	{
		handler := handlers.NewProductHandler(baseHandler, cfg.Services.Products)
		group := catalogs.Group("/products")
		RegisterCatalogRoutes(group, handler, oracle, "product")
		group.GET("/sku/:sku", middleware.RequirePermission(oracle, "product.read"), handler.GetBySKU)
		group.GET("/low-stock", middleware.RequirePermission(oracle, "product.read"), handler.ListLowStock)
	}

	// --- WAREHOUSES ---
	{
		handler := handlers.NewWarehouseHandler(baseHandler, cfg.Services.Warehouses)
		group := catalogs.Group("/warehouses")
		RegisterCatalogRoutes(group, handler, oracle, "warehouse")
		group.GET("/default", middleware.RequirePermission(oracle, "warehouse.read"), handler.GetDefault)
	}

	// --- LOCATIONS ---
	{
		handler := handlers.NewLocationHandler(baseHandler, cfg.Services.Locations)
		group := catalogs.Group("/locations")
		RegisterCatalogRoutes(group, handler, oracle, "location")
		group.GET("/warehouse/:warehouseId", middleware.RequirePermission(oracle, "location.read"), handler.ListByWarehouse)
		group.GET("/warehouse/:warehouseId/default", middleware.RequirePermission(oracle, "location.read"), handler.GetDefaultForWarehouse)
	}

	// --- COUNTERPARTIES ---
	{
		handler := handlers.NewCounterpartyHandler(baseHandler, cfg.Services.Counterparties)
		group := catalogs.Group("/counterparties")
		RegisterCatalogRoutes(group, handler, oracle, "counterparty")
		group.GET("/suppliers", middleware.RequirePermission(oracle, "counterparty.read"), handler.ListSuppliers)
		group.GET("/customers", middleware.RequirePermission(oracle, "counterparty.read"), handler.ListCustomers)
	}
}

func registerStockRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	oracle := cfg.Oracle
	handler := handlers.NewStockHandler(baseHandler, cfg.Services.Ledger)

	stock := rg.Group("/stock")
	{
		stock.POST("/receive", middleware.RequirePermission(oracle, "stock.receive"), handler.Receive)
		stock.POST("/issue", middleware.RequirePermission(oracle, "stock.issue"), handler.Issue)
		stock.POST("/transfer", middleware.RequirePermission(oracle, "stock.transfer"), handler.Transfer)
		stock.GET("/quantity", middleware.RequirePermission(oracle, "stock.read"), handler.GetQuantity)
		stock.GET("/product/:id", middleware.RequirePermission(oracle, "stock.read"), handler.GetProductStock)
		stock.GET("/location/:id", middleware.RequirePermission(oracle, "stock.read"), handler.GetLocationStock)
		stock.GET("/movements", middleware.RequirePermission(oracle, "stock.read"), handler.GetMovements)
		stock.POST("/reconcile", middleware.RequirePermission(oracle, "stock.reconcile"), handler.Reconcile)
	}
}

func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	docs := rg.Group("/documents")
	baseHandler := handlers.NewBaseHandler()
	oracle := cfg.Oracle

	// --- PURCHASE ORDERS ---
	{
		handler := handlers.NewPurchaseOrderHandler(baseHandler, cfg.Services.PurchaseOrders)
		group := docs.Group("/purchase-orders")
		group.GET("", middleware.RequirePermission(oracle, "purchase_order.read"), handler.List)
		group.POST("", middleware.RequirePermission(oracle, "purchase_order.create"), handler.Create)
		group.GET("/:id", middleware.RequirePermission(oracle, "purchase_order.read"), handler.Get)
		group.DELETE("/:id", middleware.RequirePermission(oracle, "purchase_order.delete"), handler.Delete)
		group.POST("/:id/items", middleware.RequirePermission(oracle, "purchase_order.update"), handler.AddItem)
		group.PUT("/:id/items/:productId", middleware.RequirePermission(oracle, "purchase_order.update"), handler.UpdateItem)
		group.DELETE("/:id/items/:productId", middleware.RequirePermission(oracle, "purchase_order.update"), handler.RemoveItem)
		group.POST("/:id/advance", middleware.RequirePermission(oracle, "purchase_order.advance"), handler.Advance)
		group.POST("/:id/receive", middleware.RequirePermission(oracle, "purchase_order.receive"), handler.Receive)
	}

	// --- SALES ORDERS ---
	{
		handler := handlers.NewSalesOrderHandler(baseHandler, cfg.Services.SalesOrders)
		group := docs.Group("/sales-orders")
		group.GET("", middleware.RequirePermission(oracle, "sales_order.read"), handler.List)
		group.POST("", middleware.RequirePermission(oracle, "sales_order.create"), handler.Create)
		group.GET("/:id", middleware.RequirePermission(oracle, "sales_order.read"), handler.Get)
		group.DELETE("/:id", middleware.RequirePermission(oracle, "sales_order.delete"), handler.Delete)
		group.POST("/:id/items", middleware.RequirePermission(oracle, "sales_order.update"), handler.AddItem)
		group.DELETE("/:id/items/:productId", middleware.RequirePermission(oracle, "sales_order.update"), handler.RemoveItem)
		group.POST("/:id/advance", middleware.RequirePermission(oracle, "sales_order.advance"), handler.Advance)
		group.POST("/:id/ship", middleware.RequirePermission(oracle, "sales_order.ship"), handler.Ship)
	}

	// --- INVOICES ---
	{
		handler := handlers.NewInvoiceHandler(baseHandler, cfg.Services.Invoices)
		group := docs.Group("/invoices")
		group.GET("", middleware.RequirePermission(oracle, "invoice.read"), handler.List)
		group.POST("", middleware.RequirePermission(oracle, "invoice.create"), handler.Create)
		group.GET("/:id", middleware.RequirePermission(oracle, "invoice.read"), handler.Get)
		group.DELETE("/:id", middleware.RequirePermission(oracle, "invoice.delete"), handler.Delete)
		group.POST("/:id/items", middleware.RequirePermission(oracle, "invoice.update"), handler.AddItem)
		group.DELETE("/:id/items/:lineId", middleware.RequirePermission(oracle, "invoice.update"), handler.RemoveItem)
		group.PUT("/:id/discount", middleware.RequirePermission(oracle, "invoice.update"), handler.SetDiscount)
		group.POST("/:id/advance", middleware.RequirePermission(oracle, "invoice.advance"), handler.Advance)
		group.POST("/:id/payments", middleware.RequirePermission(oracle, "invoice.payment"), handler.RecordPayment)
		group.DELETE("/:id/payments/:paymentId", middleware.RequirePermission(oracle, "invoice.payment"), handler.VoidPayment)
	}
}

func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	oracle := cfg.Oracle
	handler := handlers.NewReportHandler(baseHandler, cfg.Services.Reports)

	reportsGroup := rg.Group("/reports")
	{
		reportsGroup.GET("/stock-on-hand", middleware.RequirePermission(oracle, "report.stock_on_hand"), handler.StockOnHand)
		reportsGroup.GET("/low-stock", middleware.RequirePermission(oracle, "report.low_stock"), handler.LowStock)
		reportsGroup.GET("/outstanding-invoices", middleware.RequirePermission(oracle, "report.outstanding_invoices"), handler.OutstandingInvoices)
	}
}
