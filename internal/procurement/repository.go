package procurement

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marufrahmandev/inventory-management-system/internal/inventory"
	"github.com/marufrahmandev/inventory-management-system/internal/platform/db"
	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

// Repository persists purchase orders.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]PurchaseOrder, int, error)
	Get(ctx context.Context, id int64) (PurchaseOrder, error)
	Create(ctx context.Context, order *PurchaseOrder, deltas []inventory.Delta) error
	Update(ctx context.Context, order *PurchaseOrder, deltas []inventory.Delta) error
	Delete(ctx context.Context, id int64, deltas []inventory.Delta) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const orderColumns = `id, order_number, supplier_id, supplier_name, supplier_email,
	supplier_phone, supplier_address, order_date, expected_date, subtotal, tax,
	discount, total, status, notes, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]PurchaseOrder, int, error) {
	filters.Normalize()

	where := " WHERE 1=1"
	args := []interface{}{}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += " AND (order_number ILIKE $" + n + " OR supplier_name ILIKE $" + n + ")"
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		where += " AND status = $" + strconv.Itoa(len(args))
	}
	if filters.StartDate != nil {
		args = append(args, *filters.StartDate)
		where += " AND order_date >= $" + strconv.Itoa(len(args))
	}
	if filters.EndDate != nil {
		args = append(args, *filters.EndDate)
		where += " AND order_date <= $" + strconv.Itoa(len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM purchase_orders"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + orderColumns + " FROM purchase_orders" + where +
		" ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []PurchaseOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range orders {
		items, err := r.items(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Items = items
	}
	return orders, total, nil
}

func (r *repository) Get(ctx context.Context, id int64) (PurchaseOrder, error) {
	row := r.db.QueryRow(ctx, "SELECT "+orderColumns+" FROM purchase_orders WHERE id = $1", id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseOrder{}, shared.ErrNotFound
		}
		return PurchaseOrder{}, err
	}
	o.Items, err = r.items(ctx, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	return o, nil
}

func (r *repository) Create(ctx context.Context, order *PurchaseOrder, deltas []inventory.Delta) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO purchase_orders (order_number, supplier_id, supplier_name, supplier_email,
				supplier_phone, supplier_address, order_date, expected_date, subtotal, tax,
				discount, total, status, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING id, created_at, updated_at`,
			order.OrderNumber, order.SupplierID, order.SupplierName, order.SupplierEmail,
			order.SupplierPhone, order.SupplierAddress, order.OrderDate, order.ExpectedDate,
			order.Subtotal, order.Tax, order.Discount, order.Total, order.Status, order.Notes,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return shared.ErrConflict
			}
			return err
		}

		if err := r.insertItems(ctx, tx, order); err != nil {
			return err
		}
		return inventory.Apply(ctx, tx, stamp(deltas, order.OrderNumber))
	})
}

func (r *repository) Update(ctx context.Context, order *PurchaseOrder, deltas []inventory.Delta) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE purchase_orders
			SET order_number = $1, supplier_id = $2, supplier_name = $3, supplier_email = $4,
			    supplier_phone = $5, supplier_address = $6, order_date = $7, expected_date = $8,
			    subtotal = $9, tax = $10, discount = $11, total = $12, status = $13, notes = $14,
			    updated_at = NOW()
			WHERE id = $15`,
			order.OrderNumber, order.SupplierID, order.SupplierName, order.SupplierEmail,
			order.SupplierPhone, order.SupplierAddress, order.OrderDate, order.ExpectedDate,
			order.Subtotal, order.Tax, order.Discount, order.Total, order.Status, order.Notes,
			order.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return shared.ErrConflict
			}
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}

		if _, err := tx.Exec(ctx, "DELETE FROM purchase_order_items WHERE order_id = $1", order.ID); err != nil {
			return err
		}
		if err := r.insertItems(ctx, tx, order); err != nil {
			return err
		}
		return inventory.Apply(ctx, tx, stamp(deltas, order.OrderNumber))
	})
}

func (r *repository) Delete(ctx context.Context, id int64, deltas []inventory.Delta) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := inventory.Apply(ctx, tx, deltas); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "DELETE FROM purchase_order_items WHERE order_id = $1", id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, "DELETE FROM purchase_orders WHERE id = $1", id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *repository) insertItems(ctx context.Context, tx pgx.Tx, order *PurchaseOrder) error {
	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err := tx.QueryRow(ctx, `
			INSERT INTO purchase_order_items (order_id, product_id, product_name, quantity, price, total)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			order.ID, item.ProductID, item.ProductName, item.Quantity, item.Price, item.Total,
		).Scan(&item.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) items(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, price, total
		FROM purchase_order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.Price, &item.Total); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (PurchaseOrder, error) {
	var o PurchaseOrder
	err := row.Scan(&o.ID, &o.OrderNumber, &o.SupplierID, &o.SupplierName, &o.SupplierEmail,
		&o.SupplierPhone, &o.SupplierAddress, &o.OrderDate, &o.ExpectedDate, &o.Subtotal,
		&o.Tax, &o.Discount, &o.Total, &o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func stamp(deltas []inventory.Delta, number string) []inventory.Delta {
	for i := range deltas {
		if deltas[i].Reference == "" {
			deltas[i].Reference = number
		}
	}
	return deltas
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
