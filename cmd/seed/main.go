// Package main provides a CLI tool for seeding the database with demo
// data: a warehouse with locations, a small product catalog,
// counterparties and opening stock.
package main

import (
	"context"
	"fmt"
	"os"

	appctx "stockroom/internal/core/context"
	"stockroom/internal/core/security"
	"stockroom/internal/core/types"
	"stockroom/internal/domain/catalogs/counterparty"
	"stockroom/internal/domain/catalogs/location"
	"stockroom/internal/domain/catalogs/product"
	"stockroom/internal/domain/catalogs/warehouse"
	"stockroom/internal/domain/ledger"
	"stockroom/internal/infrastructure/numerator"
	"stockroom/internal/infrastructure/storage/postgres"
	"stockroom/internal/infrastructure/storage/postgres/catalog_repo"
	"stockroom/internal/infrastructure/storage/postgres/ledger_repo"
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
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Seeded rows carry a recognizable author.
	ctx = appctx.WithUser(ctx, &appctx.User{
		ID:    "seed",
		Name:  "seed",
		Roles: []string{security.AdminRole},
	})

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.ConnectionString()))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	num := numerator.New(pool)

	productService := product.NewService(catalog_repo.NewProductRepo(txManager), txManager, num)
	warehouseService := warehouse.NewService(catalog_repo.NewWarehouseRepo(txManager), txManager, num)
	locationService := location.NewService(catalog_repo.NewLocationRepo(txManager), txManager)
	counterpartyService := counterparty.NewService(catalog_repo.NewCounterpartyRepo(txManager), txManager, num)
	ledgerService := ledger.NewService(ledger_repo.NewLedgerRepo(txManager), txManager)

	wh, loc, err := seedWarehouse(ctx, warehouseService, locationService)
	if err != nil {
		log.Fatalw("failed to seed warehouse", "error", err)
	}
	log.Infow("warehouse ready", "code", wh.Code, "default_location", loc.Code)

	products, err := seedProducts(ctx, productService)
	if err != nil {
		log.Fatalw("failed to seed products", "error", err)
	}
	log.Infow("products ready", "count", len(products))

	if err := seedCounterparties(ctx, counterpartyService); err != nil {
		log.Fatalw("failed to seed counterparties", "error", err)
	}
	log.Info("counterparties ready")

	if os.Getenv("SEED_OPENING_STOCK") == "true" {
		if err := seedOpeningStock(ctx, ledgerService, products, loc); err != nil {
			log.Fatalw("failed to seed opening stock", "error", err)
		}
		log.Info("opening stock booked")
	}

	log.Info("seeding complete")
}

func seedWarehouse(ctx context.Context, warehouses *warehouse.Service, locations *location.Service) (*warehouse.Warehouse, *location.Location, error) {
	wh, err := warehouses.GetDefault(ctx)
	if err == nil {
		loc, err := locations.GetDefaultForWarehouse(ctx, wh.ID)
		if err != nil {
			return nil, nil, err
		}
		return wh, loc, nil
	}

	wh = warehouse.NewWarehouse("WH-MAIN", "Main Warehouse", warehouse.TypeMain)
	wh.IsDefault = true
	if err := warehouses.Create(ctx, wh); err != nil {
		return nil, nil, err
	}

	zone := location.NewLocation("A", "Zone A", location.TypeZone, wh.ID)
	if err := locations.Create(ctx, zone); err != nil {
		return nil, nil, err
	}

	rack := location.NewLocation("A-01", "Rack A-01", location.TypeRack, wh.ID)
	rack.SetParent(zone.ID.String())
	if err := locations.Create(ctx, rack); err != nil {
		return nil, nil, err
	}

	return wh, zone, nil
}

func seedProducts(ctx context.Context, products *product.Service) ([]*product.Product, error) {
	demo := []struct {
		code, name, sku, unit string
		unitPrice, costPrice  float64
		reorderPoint          int64
	}{
		{"PRD-SEED-1", "Cardboard Box M", "BOX-M", "pcs", 1.20, 0.70, 200},
		{"PRD-SEED-2", "Cardboard Box L", "BOX-L", "pcs", 1.80, 1.05, 150},
		{"PRD-SEED-3", "Packing Tape 48mm", "TAPE-48", "pcs", 2.50, 1.10, 50},
		{"PRD-SEED-4", "Bubble Wrap Roll", "WRAP-R", "pcs", 9.90, 5.40, 20},
		{"PRD-SEED-5", "Pallet EUR", "PAL-EUR", "pcs", 14.00, 8.00, 10},
	}

	result := make([]*product.Product, 0, len(demo))
	for _, d := range demo {
		if existing, err := products.GetBySKU(ctx, d.sku); err == nil {
			result = append(result, existing)
			continue
		}

		p := product.NewProduct(d.code, d.name, d.sku)
		p.Unit = d.unit
		p.UnitPrice = types.NewMoney(d.unitPrice)
		p.CostPrice = types.NewMoney(d.costPrice)
		p.ReorderPoint = types.NewQuantityFromInt(d.reorderPoint)
		if err := products.Create(ctx, p); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

func seedCounterparties(ctx context.Context, counterparties *counterparty.Service) error {
	demo := []struct {
		code, name string
		cpType     counterparty.CounterpartyType
	}{
		{"CP-SEED-1", "Packmaster Supplies Ltd", counterparty.TypeSupplier},
		{"CP-SEED-2", "Nordic Carton OY", counterparty.TypeSupplier},
		{"CP-SEED-3", "Brightline Retail GmbH", counterparty.TypeCustomer},
		{"CP-SEED-4", "Harbor Logistics SA", counterparty.TypeBoth},
	}

	for _, d := range demo {
		if _, err := counterparties.GetByCode(ctx, d.code); err == nil {
			continue
		}
		cp := counterparty.NewCounterparty(d.code, d.name, d.cpType)
		if err := counterparties.Create(ctx, cp); err != nil {
			return err
		}
	}
	return nil
}

func seedOpeningStock(ctx context.Context, stockLedger *ledger.Service, products []*product.Product, loc *location.Location) error {
	for _, p := range products {
		qty, err := stockLedger.GetQuantity(ctx, p.ID, loc.ID)
		if err != nil {
			return err
		}
		if qty.IsPositive() {
			continue
		}
		if _, err := stockLedger.Receive(ctx, p.ID, loc.ID, types.NewQuantityFromInt(500), "OPENING"); err != nil {
			return err
		}
	}
	return nil
}
