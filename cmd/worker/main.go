package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/marufrahmandev/inventory-management-system/internal/app"
	"github.com/marufrahmandev/inventory-management-system/internal/inventory"
	"github.com/marufrahmandev/inventory-management-system/internal/invoices"
	"github.com/marufrahmandev/inventory-management-system/internal/platform/db"
	"github.com/marufrahmandev/inventory-management-system/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	invoiceService := invoices.NewService(invoices.NewRepository(pool), nil, nil, nil, logger)
	inventoryService := inventory.NewService(inventory.NewRepository(pool), logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskInvoiceMarkOverdue, Handler: jobs.HandleInvoiceMarkOverdue(invoiceService, logger)},
			{Type: jobs.TaskLowStockScan, Handler: jobs.HandleLowStockScan(inventoryService, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 1 * * *", Task: jobs.NewInvoiceMarkOverdueTask()},
			{Spec: "0 * * * *", Task: jobs.NewLowStockScanTask()},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
