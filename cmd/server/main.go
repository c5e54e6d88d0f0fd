// Package main is the entry point for the stockroom API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

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
	v1 "stockroom/internal/infrastructure/http/v1"
	"stockroom/internal/infrastructure/http/v1/middleware"
	"stockroom/internal/infrastructure/numerator"
	"stockroom/internal/infrastructure/storage/postgres"
	"stockroom/internal/infrastructure/storage/postgres/catalog_repo"
	"stockroom/internal/infrastructure/storage/postgres/document_repo"
	"stockroom/internal/infrastructure/storage/postgres/ledger_repo"
	"stockroom/internal/infrastructure/storage/postgres/report_repo"
	"stockroom/pkg/config"
	"stockroom/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.App.Env == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting stockroom server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DB.ConnectionString())
	poolCfg.MaxConns = cfg.DB.MaxConns
	poolCfg.MinConns = cfg.DB.MinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Shared infrastructure ---
	num := numerator.New(pool)

	oracle, err := security.NewCELOracle(security.DefaultRules())
	if err != nil {
		log.Fatalw("failed to compile permission rules", "error", err)
	}

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Repositories ---
	productRepo := catalog_repo.NewProductRepo(txManager)
	warehouseRepo := catalog_repo.NewWarehouseRepo(txManager)
	locationRepo := catalog_repo.NewLocationRepo(txManager)
	counterpartyRepo := catalog_repo.NewCounterpartyRepo(txManager)
	ledgerRepo := ledger_repo.NewLedgerRepo(txManager)
	purchaseRepo := document_repo.NewPurchaseOrderRepo(txManager)
	salesRepo := document_repo.NewSalesOrderRepo(txManager)
	invoiceRepo := document_repo.NewInvoiceRepo(txManager)
	reportRepo := report_repo.NewReportRepo(txManager)

	// --- Services ---
	productService := product.NewService(productRepo, txManager, num)
	warehouseService := warehouse.NewService(warehouseRepo, txManager, num)
	locationService := location.NewService(locationRepo, txManager)
	counterpartyService := counterparty.NewService(counterpartyRepo, txManager, num)
	ledgerService := ledger.NewService(ledgerRepo, txManager)
	purchaseService := purchase.NewService(purchaseRepo, ledgerService, locationService, num, txManager)
	salesService := sales.NewService(salesRepo, ledgerService, locationService, num, txManager)

	revertPolicy := invoicing.HoldPaid
	if cfg.Invoicing.RevertOnPartialVoid {
		revertPolicy = invoicing.RevertOnShortfall
	}
	invoiceService := invoicing.NewService(invoiceRepo, num, txManager, revertPolicy)

	reportService := reports.NewService(reportRepo)

	registerAuditHooks(auditService,
		productService, warehouseService, locationService, counterpartyService,
		purchaseService, salesService, invoiceService)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:      pool,
		Logger:    log,
		Validator: middleware.NewHMACValidator([]byte(cfg.JWT.Secret)),
		Oracle:    oracle,
		Services: v1.Services{
			Products:       productService,
			Warehouses:     warehouseService,
			Locations:      locationService,
			Counterparties: counterpartyService,
			Ledger:         ledgerService,
			PurchaseOrders: purchaseService,
			SalesOrders:    salesService,
			Invoices:       invoiceService,
			Reports:        reportService,
		},
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// registerAuditHooks writes an audit trail for every catalog and document
// mutation. Hook failures are logged by the services, never surfaced to
// the caller.
func registerAuditHooks(
	audit *postgres.AuditService,
	products *product.Service,
	warehouses *warehouse.Service,
	locations *location.Service,
	counterparties *counterparty.Service,
	purchases *purchase.Service,
	salesOrders *sales.Service,
	invoices *invoicing.Service,
) {
	products.Hooks().OnAfterCreate(func(ctx context.Context, p *product.Product) error {
		return audit.LogChange(ctx, "product", p.ID, postgres.AuditActionCreate, postgres.StructToMap(p))
	})
	products.Hooks().OnAfterUpdate(func(ctx context.Context, p *product.Product) error {
		return audit.LogChange(ctx, "product", p.ID, postgres.AuditActionUpdate, postgres.StructToMap(p))
	})
	products.Hooks().OnAfterDelete(func(ctx context.Context, p *product.Product) error {
		return audit.LogChange(ctx, "product", p.ID, postgres.AuditActionDelete, nil)
	})

	warehouses.Hooks().OnAfterCreate(func(ctx context.Context, w *warehouse.Warehouse) error {
		return audit.LogChange(ctx, "warehouse", w.ID, postgres.AuditActionCreate, postgres.StructToMap(w))
	})
	warehouses.Hooks().OnAfterUpdate(func(ctx context.Context, w *warehouse.Warehouse) error {
		return audit.LogChange(ctx, "warehouse", w.ID, postgres.AuditActionUpdate, postgres.StructToMap(w))
	})
	warehouses.Hooks().OnAfterDelete(func(ctx context.Context, w *warehouse.Warehouse) error {
		return audit.LogChange(ctx, "warehouse", w.ID, postgres.AuditActionDelete, nil)
	})

	locations.Hooks().OnAfterCreate(func(ctx context.Context, l *location.Location) error {
		return audit.LogChange(ctx, "location", l.ID, postgres.AuditActionCreate, postgres.StructToMap(l))
	})
	locations.Hooks().OnAfterUpdate(func(ctx context.Context, l *location.Location) error {
		return audit.LogChange(ctx, "location", l.ID, postgres.AuditActionUpdate, postgres.StructToMap(l))
	})
	locations.Hooks().OnAfterDelete(func(ctx context.Context, l *location.Location) error {
		return audit.LogChange(ctx, "location", l.ID, postgres.AuditActionDelete, nil)
	})

	counterparties.Hooks().OnAfterCreate(func(ctx context.Context, cp *counterparty.Counterparty) error {
		return audit.LogChange(ctx, "counterparty", cp.ID, postgres.AuditActionCreate, postgres.StructToMap(cp))
	})
	counterparties.Hooks().OnAfterUpdate(func(ctx context.Context, cp *counterparty.Counterparty) error {
		return audit.LogChange(ctx, "counterparty", cp.ID, postgres.AuditActionUpdate, postgres.StructToMap(cp))
	})
	counterparties.Hooks().OnAfterDelete(func(ctx context.Context, cp *counterparty.Counterparty) error {
		return audit.LogChange(ctx, "counterparty", cp.ID, postgres.AuditActionDelete, nil)
	})

	purchases.Hooks().OnAfterCreate(func(ctx context.Context, doc *purchase.PurchaseOrder) error {
		return audit.LogChange(ctx, "purchase_order", doc.ID, postgres.AuditActionCreate, postgres.StructToMap(doc))
	})
	purchases.Hooks().OnAfterUpdate(func(ctx context.Context, doc *purchase.PurchaseOrder) error {
		return audit.LogChange(ctx, "purchase_order", doc.ID, postgres.AuditActionUpdate, postgres.StructToMap(doc))
	})

	salesOrders.Hooks().OnAfterCreate(func(ctx context.Context, doc *sales.SalesOrder) error {
		return audit.LogChange(ctx, "sales_order", doc.ID, postgres.AuditActionCreate, postgres.StructToMap(doc))
	})
	salesOrders.Hooks().OnAfterUpdate(func(ctx context.Context, doc *sales.SalesOrder) error {
		return audit.LogChange(ctx, "sales_order", doc.ID, postgres.AuditActionUpdate, postgres.StructToMap(doc))
	})

	invoices.Hooks().OnAfterCreate(func(ctx context.Context, doc *invoicing.Invoice) error {
		return audit.LogChange(ctx, "invoice", doc.ID, postgres.AuditActionCreate, postgres.StructToMap(doc))
	})
	invoices.Hooks().OnAfterUpdate(func(ctx context.Context, doc *invoicing.Invoice) error {
		return audit.LogChange(ctx, "invoice", doc.ID, postgres.AuditActionUpdate, postgres.StructToMap(doc))
	})
}
