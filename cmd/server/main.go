package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/marufrahmandev/inventory-management-system/internal/app"
	"github.com/marufrahmandev/inventory-management-system/internal/auth"
	"github.com/marufrahmandev/inventory-management-system/internal/inventory"
	"github.com/marufrahmandev/inventory-management-system/internal/invoices"
	"github.com/marufrahmandev/inventory-management-system/internal/masterdata/categories"
	"github.com/marufrahmandev/inventory-management-system/internal/masterdata/products"
	"github.com/marufrahmandev/inventory-management-system/internal/masterdata/suppliers"
	"github.com/marufrahmandev/inventory-management-system/internal/platform/cache"
	"github.com/marufrahmandev/inventory-management-system/internal/platform/db"
	"github.com/marufrahmandev/inventory-management-system/internal/platform/imghost"
	"github.com/marufrahmandev/inventory-management-system/internal/procurement"
	"github.com/marufrahmandev/inventory-management-system/internal/reports"
	"github.com/marufrahmandev/inventory-management-system/internal/sales/customers"
	"github.com/marufrahmandev/inventory-management-system/internal/sales/orders"
	"github.com/marufrahmandev/inventory-management-system/internal/users"
	"github.com/marufrahmandev/inventory-management-system/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, report caching disabled", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	images := imghost.NewClient(cfg.ImgHostURL, cfg.ImgHostKey)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, cfg.JWTSecret, cfg.JWTTTL)

	userService := users.NewService(users.NewRepository(pool))

	categoryService := categories.NewService(categories.NewRepository(pool), images, logger)

	productRepo := products.NewRepository(pool)
	productService := products.NewService(productRepo, images, logger)

	supplierService := suppliers.NewService(suppliers.NewRepository(pool))
	customerService := customers.NewService(customers.NewRepository(pool))

	orderService := orders.NewService(orders.NewRepository(pool), productRepo, customerService, logger)
	purchaseService := procurement.NewService(procurement.NewRepository(pool), productRepo, supplierService, logger)
	invoiceService := invoices.NewService(invoices.NewRepository(pool), productRepo, customerService, orderService, logger)

	inventoryService := inventory.NewService(inventory.NewRepository(pool), logger)

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportService := reports.NewService(reports.NewRepository(pool), reportCache)

	var jobsHandler *jobs.Handler
	if redisClient != nil {
		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		jobsHandler = jobs.NewHandler(inspector, logger)
	}

	router := app.BuildRouter(app.RouterParams{
		Config: cfg,
		Auth:   auth.Middleware{Service: authService},
		Handlers: app.Handlers{
			Auth:        auth.NewHandler(logger, authService),
			Users:       users.NewHandler(logger, userService),
			Categories:  categories.NewHandler(logger, categoryService),
			Products:    products.NewHandler(logger, productService),
			Suppliers:   suppliers.NewHandler(logger, supplierService),
			Customers:   customers.NewHandler(logger, customerService),
			SalesOrders: orders.NewHandler(logger, orderService),
			Procurement: procurement.NewHandler(logger, purchaseService),
			Invoices:    invoices.NewHandler(logger, invoiceService),
			Inventory:   inventory.NewHandler(logger, inventoryService),
			Reports:     reports.NewHandler(logger, reportService),
			Jobs:        jobsHandler,
		},
	}, app.MiddlewareStack(app.MiddlewareConfig{Logger: logger, Config: cfg}))

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
