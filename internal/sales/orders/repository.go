package orders

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marufrahmandev/inventory-management-system/internal/docnum"
	"github.com/marufrahmandev/inventory-management-system/internal/inventory"
	"github.com/marufrahmandev/inventory-management-system/internal/platform/db"
	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

// Repository persists sales orders. Writes run header, items and stock
// deltas in one transaction.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]SalesOrder, int, error)
	Get(ctx context.Context, id int64) (SalesOrder, error)
	Create(ctx context.Context, order *SalesOrder, deltas []inventory.Delta) error
	Update(ctx context.Context, order *SalesOrder, deltas []inventory.Delta) error
	Delete(ctx context.Context, id int64, deltas []inventory.Delta) error
	PeekNextNumber(ctx context.Context) (string, error)
}

type repository struct {
	db  *pgxpool.Pool
	now func() time.Time
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, now: time.Now}
}

const orderColumns = `id, order_number, customer_id, customer_name, customer_email,
	customer_phone, customer_address, order_date, delivery_date, subtotal, tax,
	discount, total, status, notes, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]SalesOrder, int, error) {
	filters.Normalize()

	where := " WHERE 1=1"
	args := []interface{}{}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += " AND (order_number ILIKE $" + n + " OR customer_name ILIKE $" + n + ")"
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
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM sales_orders"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + orderColumns + " FROM sales_orders" + where +
		" ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []SalesOrder
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
		items, err := r.items(ctx, r.db, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Items = items
	}
	return orders, total, nil
}

func (r *repository) Get(ctx context.Context, id int64) (SalesOrder, error) {
	row := r.db.QueryRow(ctx, "SELECT "+orderColumns+" FROM sales_orders WHERE id = $1", id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SalesOrder{}, shared.ErrNotFound
		}
		return SalesOrder{}, err
	}
	o.Items, err = r.items(ctx, r.db, id)
	if err != nil {
		return SalesOrder{}, err
	}
	return o, nil
}

func (r *repository) Create(ctx context.Context, order *SalesOrder, deltas []inventory.Delta) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		number, err := docnum.Next(ctx, tx, docnum.PrefixSalesOrder, r.now().Year())
		if err != nil {
			return err
		}
		order.OrderNumber = number

		err = tx.QueryRow(ctx, `
			INSERT INTO sales_orders (order_number, customer_id, customer_name, customer_email,
				customer_phone, customer_address, order_date, delivery_date, subtotal, tax,
				discount, total, status, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING id, created_at, updated_at`,
			order.OrderNumber, order.CustomerID, order.CustomerName, order.CustomerEmail,
			order.CustomerPhone, order.CustomerAddress, order.OrderDate, order.DeliveryDate,
			order.Subtotal, order.Tax, order.Discount, order.Total, order.Status, order.Notes,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return err
		}

		if err := r.insertItems(ctx, tx, order); err != nil {
			return err
		}
		return inventory.Apply(ctx, tx, reference(deltas, order.OrderNumber))
	})
}

func (r *repository) Update(ctx context.Context, order *SalesOrder, deltas []inventory.Delta) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE sales_orders
			SET customer_id = $1, customer_name = $2, customer_email = $3, customer_phone = $4,
			    customer_address = $5, order_date = $6, delivery_date = $7, subtotal = $8,
			    tax = $9, discount = $10, total = $11, status = $12, notes = $13, updated_at = NOW()
			WHERE id = $14`,
			order.CustomerID, order.CustomerName, order.CustomerEmail, order.CustomerPhone,
			order.CustomerAddress, order.OrderDate, order.DeliveryDate, order.Subtotal,
			order.Tax, order.Discount, order.Total, order.Status, order.Notes, order.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}

		if _, err := tx.Exec(ctx, "DELETE FROM sales_order_items WHERE order_id = $1", order.ID); err != nil {
			return err
		}
		if err := r.insertItems(ctx, tx, order); err != nil {
			return err
		}
		return inventory.Apply(ctx, tx, reference(deltas, order.OrderNumber))
	})
}

func (r *repository) Delete(ctx context.Context, id int64, deltas []inventory.Delta) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := inventory.Apply(ctx, tx, deltas); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "DELETE FROM sales_order_items WHERE order_id = $1", id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, "DELETE FROM sales_orders WHERE id = $1", id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *repository) PeekNextNumber(ctx context.Context) (string, error) {
	return docnum.Peek(ctx, r.db, docnum.PrefixSalesOrder, r.now().Year())
}

func (r *repository) insertItems(ctx context.Context, tx pgx.Tx, order *SalesOrder) error {
	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err := tx.QueryRow(ctx, `
			INSERT INTO sales_order_items (order_id, product_id, product_name, quantity, price, total)
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

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *repository) items(ctx context.Context, q querier, orderID int64) ([]OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, price, total
		FROM sales_order_items WHERE order_id = $1 ORDER BY id`, orderID)
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

func scanOrder(row pgx.Row) (SalesOrder, error) {
	var o SalesOrder
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.CustomerName, &o.CustomerEmail,
		&o.CustomerPhone, &o.CustomerAddress, &o.OrderDate, &o.DeliveryDate, &o.Subtotal,
		&o.Tax, &o.Discount, &o.Total, &o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// reference stamps the order number onto deltas that do not carry one yet.
func reference(deltas []inventory.Delta, number string) []inventory.Delta {
	for i := range deltas {
		if deltas[i].Reference == "" {
			deltas[i].Reference = number
		}
	}
	return deltas
}
