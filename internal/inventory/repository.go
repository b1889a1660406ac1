package inventory

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marufrahmandev/inventory-management-system/internal/platform/db"
)

// MovementFilters narrows the movement history listing.
type MovementFilters struct {
	Page      int
	Limit     int
	ProductID *int64
	Reason    string
}

// Normalize applies listing defaults.
func (f *MovementFilters) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

// Offset converts page/limit into a row offset.
func (f *MovementFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}

// LowStockProduct is a product at or below its reorder threshold.
type LowStockProduct struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	SKU      string  `json:"sku"`
	Stock    int     `json:"stock"`
	MinStock int     `json:"minStock"`
	Unit     string  `json:"unit"`
}

// Repository persists stock movements and reads the counter side of the
// ledger.
type Repository interface {
	RecordEntry(ctx context.Context, delta Delta) (Movement, error)
	ListMovements(ctx context.Context, filters MovementFilters) ([]Movement, int, error)
	LowStock(ctx context.Context) ([]LowStockProduct, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) RecordEntry(ctx context.Context, delta Delta) (Movement, error) {
	var movement Movement
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := Apply(ctx, tx, []Delta{delta}); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			SELECT m.id, m.product_id, p.name, m.quantity, m.reason, m.reference, m.notes, m.created_at
			FROM stock_movements m JOIN products p ON p.id = m.product_id
			WHERE m.product_id = $1 ORDER BY m.id DESC LIMIT 1`,
			delta.ProductID,
		).Scan(&movement.ID, &movement.ProductID, &movement.Product, &movement.Quantity,
			&movement.Reason, &movement.Reference, &movement.Notes, &movement.CreatedAt)
	})
	if err != nil {
		return Movement{}, err
	}
	return movement, nil
}

func (r *repository) ListMovements(ctx context.Context, filters MovementFilters) ([]Movement, int, error) {
	filters.Normalize()

	where := " WHERE 1=1"
	args := []interface{}{}
	if filters.ProductID != nil {
		args = append(args, *filters.ProductID)
		where += " AND m.product_id = $" + strconv.Itoa(len(args))
	}
	if filters.Reason != "" {
		args = append(args, filters.Reason)
		where += " AND m.reason = $" + strconv.Itoa(len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM stock_movements m"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT m.id, m.product_id, p.name, m.quantity, m.reason, m.reference, m.notes, m.created_at
		FROM stock_movements m JOIN products p ON p.id = m.product_id` + where +
		" ORDER BY m.id DESC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var movements []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Product, &m.Quantity, &m.Reason,
			&m.Reference, &m.Notes, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		movements = append(movements, m)
	}
	return movements, total, rows.Err()
}

func (r *repository) LowStock(ctx context.Context) ([]LowStockProduct, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, sku, stock, min_stock, unit
		FROM products WHERE stock <= min_stock ORDER BY stock ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []LowStockProduct
	for rows.Next() {
		var p LowStockProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Stock, &p.MinStock, &p.Unit); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
