// Package main is the entry point for the stockroom background worker.
// It periodically reconciles the stock ledger and sweeps overdue
// invoices.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"stockroom/internal/domain/invoicing"
	"stockroom/internal/domain/ledger"
	"stockroom/internal/infrastructure/numerator"
	"stockroom/internal/infrastructure/storage/postgres"
	"stockroom/internal/infrastructure/storage/postgres/document_repo"
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
		Level:       cfg.Log.Level,
		Development: cfg.App.Env == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting stockroom worker")

	poolCfg := postgres.DefaultPoolConfig(cfg.DB.ConnectionString())
	poolCfg.MaxConns = 5
	poolCfg.MinConns = 1

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	num := numerator.New(pool)

	ledgerService := ledger.NewService(ledger_repo.NewLedgerRepo(txManager), txManager)

	revertPolicy := invoicing.HoldPaid
	if cfg.Invoicing.RevertOnPartialVoid {
		revertPolicy = invoicing.RevertOnShortfall
	}
	invoiceService := invoicing.NewService(document_repo.NewInvoiceRepo(txManager), num, txManager, revertPolicy)

	worker := &Worker{
		ledger:   ledgerService,
		invoices: invoiceService,
		interval: cfg.Worker.ReconcileInterval,
		log:      log,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker runs the periodic maintenance sweeps.
type Worker struct {
	ledger   *ledger.Service
	invoices *invoicing.Service
	interval time.Duration
	log      *logger.Logger
}

// Run executes sweeps on the configured interval until the context is
// cancelled. The first sweep runs immediately.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	start := time.Now()

	drifts, err := w.ledger.Reconcile(ctx)
	if err != nil {
		w.log.Errorw("ledger reconciliation failed", "error", err)
	} else if len(drifts) > 0 {
		for _, d := range drifts {
			w.log.Errorw("stock drift detected",
				"product_id", d.ProductID,
				"sku", d.SKU,
				"cached_stock", d.CachedStock,
				"item_sum", d.ItemSum,
				"movement_net", d.MovementNet)
		}
	}

	overdue, err := w.invoices.MarkOverdue(ctx, time.Now().UTC())
	if err != nil {
		w.log.Errorw("overdue invoice sweep failed", "error", err)
	}

	w.log.Infow("maintenance sweep finished",
		"drifts", len(drifts),
		"marked_overdue", overdue,
		"duration_ms", time.Since(start).Milliseconds())
}
