// Package jobs wires the background worker: scheduled maintenance over
// invoices and stock levels.
package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskInvoiceMarkOverdue flips unpaid invoices past their due date.
	TaskInvoiceMarkOverdue = "invoice:mark_overdue"
	// TaskLowStockScan logs products at or below their minimum stock.
	TaskLowStockScan = "inventory:low_stock_scan"
)

// InvoiceMaintainer is the invoices-module surface the worker drives.
type InvoiceMaintainer interface {
	MarkOverdue(ctx context.Context) (int64, error)
}

// StockScanner is the inventory-module surface the worker drives.
type StockScanner interface {
	ScanLowStock(ctx context.Context) (int, error)
}

// NewInvoiceMarkOverdueTask constructs the overdue-sweep task.
func NewInvoiceMarkOverdueTask() *asynq.Task {
	return asynq.NewTask(TaskInvoiceMarkOverdue, nil)
}

// NewLowStockScanTask constructs the low-stock-scan task.
func NewLowStockScanTask() *asynq.Task {
	return asynq.NewTask(TaskLowStockScan, nil)
}

// HandleInvoiceMarkOverdue returns the handler for TaskInvoiceMarkOverdue.
func HandleInvoiceMarkOverdue(invoices InvoiceMaintainer, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		n, err := invoices.MarkOverdue(ctx)
		if err != nil {
			return err
		}
		logger.Info("overdue sweep finished", "flipped", n)
		return nil
	}
}

// HandleLowStockScan returns the handler for TaskLowStockScan.
func HandleLowStockScan(stock StockScanner, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		n, err := stock.ScanLowStock(ctx)
		if err != nil {
			return err
		}
		logger.Info("low stock scan finished", "flagged", n)
		return nil
	}
}
