// Package reports serves read-only aggregations over orders, invoices and
// stock. Nothing here mutates state.
package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Period bounds a report to a date window. Zero values mean unbounded.
type Period struct {
	From time.Time
	To   time.Time
}

// StatusSlice is one status bucket in a breakdown.
type StatusSlice struct {
	Status string  `json:"status"`
	Count  int     `json:"count"`
	Total  float64 `json:"total"`
}

// ProductSlice is one product bucket in a top-seller breakdown.
type ProductSlice struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Total     float64 `json:"total"`
}

// Repository runs the aggregation queries.
type Repository interface {
	CountProducts(ctx context.Context) (int, error)
	CountCustomers(ctx context.Context) (int, error)
	CountSuppliers(ctx context.Context) (int, error)
	CountLowStock(ctx context.Context) (int, error)
	SalesTotal(ctx context.Context, period Period) (float64, int, error)
	PurchaseTotal(ctx context.Context, period Period) (float64, int, error)
	OutstandingInvoiceTotal(ctx context.Context) (float64, error)
	SalesByStatus(ctx context.Context, period Period) ([]StatusSlice, error)
	PurchasesByStatus(ctx context.Context, period Period) ([]StatusSlice, error)
	TopSellingProducts(ctx context.Context, period Period, limit int) ([]ProductSlice, error)
	StockValuation(ctx context.Context) (cost float64, retail float64, err error)
	CountOutOfStock(ctx context.Context) (int, error)
	InvoicesByStatus(ctx context.Context, period Period) ([]StatusSlice, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) CountProducts(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM products")
}

func (r *repository) CountCustomers(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM customers")
}

func (r *repository) CountSuppliers(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM suppliers")
}

func (r *repository) CountLowStock(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM products WHERE stock <= min_stock")
}

func (r *repository) CountOutOfStock(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM products WHERE stock <= 0")
}

func (r *repository) count(ctx context.Context, query string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, query).Scan(&n)
	return n, err
}

func (r *repository) SalesTotal(ctx context.Context, period Period) (float64, int, error) {
	var total float64
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0), COUNT(*)
		FROM sales_orders
		WHERE status <> 'cancelled'
		  AND ($1::timestamptz IS NULL OR order_date >= $1)
		  AND ($2::timestamptz IS NULL OR order_date <= $2)`,
		nullable(period.From), nullable(period.To)).Scan(&total, &count)
	return total, count, err
}

func (r *repository) PurchaseTotal(ctx context.Context, period Period) (float64, int, error) {
	var total float64
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0), COUNT(*)
		FROM purchase_orders
		WHERE status <> 'cancelled'
		  AND ($1::timestamptz IS NULL OR order_date >= $1)
		  AND ($2::timestamptz IS NULL OR order_date <= $2)`,
		nullable(period.From), nullable(period.To)).Scan(&total, &count)
	return total, count, err
}

func (r *repository) OutstandingInvoiceTotal(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total - paid_amount), 0)
		FROM invoices WHERE status IN ('unpaid', 'partial', 'overdue')`).Scan(&total)
	return total, err
}

func (r *repository) SalesByStatus(ctx context.Context, period Period) ([]StatusSlice, error) {
	return r.byStatus(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total), 0)
		FROM sales_orders
		WHERE ($1::timestamptz IS NULL OR order_date >= $1)
		  AND ($2::timestamptz IS NULL OR order_date <= $2)
		GROUP BY status ORDER BY status`, period)
}

func (r *repository) PurchasesByStatus(ctx context.Context, period Period) ([]StatusSlice, error) {
	return r.byStatus(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total), 0)
		FROM purchase_orders
		WHERE ($1::timestamptz IS NULL OR order_date >= $1)
		  AND ($2::timestamptz IS NULL OR order_date <= $2)
		GROUP BY status ORDER BY status`, period)
}

func (r *repository) InvoicesByStatus(ctx context.Context, period Period) ([]StatusSlice, error) {
	return r.byStatus(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total), 0)
		FROM invoices
		WHERE ($1::timestamptz IS NULL OR invoice_date >= $1)
		  AND ($2::timestamptz IS NULL OR invoice_date <= $2)
		GROUP BY status ORDER BY status`, period)
}

func (r *repository) byStatus(ctx context.Context, query string, period Period) ([]StatusSlice, error) {
	rows, err := r.db.Query(ctx, query, nullable(period.From), nullable(period.To))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slices []StatusSlice
	for rows.Next() {
		var s StatusSlice
		if err := rows.Scan(&s.Status, &s.Count, &s.Total); err != nil {
			return nil, err
		}
		slices = append(slices, s)
	}
	return slices, rows.Err()
}

func (r *repository) TopSellingProducts(ctx context.Context, period Period, limit int) ([]ProductSlice, error) {
	if limit < 1 {
		limit = 5
	}
	rows, err := r.db.Query(ctx, `
		SELECT i.product_id, i.product_name, SUM(i.quantity), SUM(i.total)
		FROM sales_order_items i
		JOIN sales_orders o ON o.id = i.order_id
		WHERE o.status <> 'cancelled'
		  AND ($1::timestamptz IS NULL OR o.order_date >= $1)
		  AND ($2::timestamptz IS NULL OR o.order_date <= $2)
		GROUP BY i.product_id, i.product_name
		ORDER BY SUM(i.total) DESC
		LIMIT $3`, nullable(period.From), nullable(period.To), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slices []ProductSlice
	for rows.Next() {
		var p ProductSlice
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Quantity, &p.Total); err != nil {
			return nil, err
		}
		slices = append(slices, p)
	}
	return slices, rows.Err()
}

func (r *repository) StockValuation(ctx context.Context) (float64, float64, error) {
	var cost, retail float64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(stock * cost), 0), COALESCE(SUM(stock * price), 0)
		FROM products WHERE stock > 0`).Scan(&cost, &retail)
	return cost, retail, err
}

func nullable(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
