package suppliers

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	mdshared "github.com/marufrahmandev/inventory-management-system/internal/masterdata/shared"
	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

// Repository persists suppliers.
type Repository interface {
	List(ctx context.Context, filters mdshared.ListFilters) ([]Supplier, int, error)
	Get(ctx context.Context, id int64) (Supplier, error)
	FindByName(ctx context.Context, name string) (Supplier, error)
	Create(ctx context.Context, supplier Supplier) (Supplier, error)
	Update(ctx context.Context, id int64, supplier Supplier) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const supplierColumns = `id, name, contact_person, email, phone, address, tax_id,
	bank_details, payment_terms, status, current_balance, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters mdshared.ListFilters) ([]Supplier, int, error) {
	filters.Normalize()

	where := " WHERE 1=1"
	args := []interface{}{}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += " AND (name ILIKE $" + n + " OR email ILIKE $" + n + " OR phone ILIKE $" + n + ")"
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		where += " AND status = $" + strconv.Itoa(len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM suppliers"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + supplierColumns + " FROM suppliers" + where +
		" ORDER BY name ASC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, 0, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Supplier, error) {
	row := r.db.QueryRow(ctx, "SELECT "+supplierColumns+" FROM suppliers WHERE id = $1", id)
	s, err := scanSupplier(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Supplier{}, shared.ErrNotFound
		}
		return Supplier{}, err
	}
	return s, nil
}

func (r *repository) FindByName(ctx context.Context, name string) (Supplier, error) {
	row := r.db.QueryRow(ctx, "SELECT "+supplierColumns+" FROM suppliers WHERE LOWER(name) = LOWER($1)", name)
	s, err := scanSupplier(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Supplier{}, shared.ErrNotFound
		}
		return Supplier{}, err
	}
	return s, nil
}

func (r *repository) Create(ctx context.Context, supplier Supplier) (Supplier, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO suppliers (name, contact_person, email, phone, address, tax_id, bank_details, payment_terms, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, current_balance, created_at, updated_at`,
		supplier.Name, supplier.ContactPerson, supplier.Email, supplier.Phone, supplier.Address,
		supplier.TaxID, supplier.BankDetails, supplier.PaymentTerms, supplier.Status,
	).Scan(&supplier.ID, &supplier.CurrentBalance, &supplier.CreatedAt, &supplier.UpdatedAt)
	if err != nil {
		return Supplier{}, err
	}
	return supplier, nil
}

func (r *repository) Update(ctx context.Context, id int64, supplier Supplier) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE suppliers
		SET name = $1, contact_person = $2, email = $3, phone = $4, address = $5,
		    tax_id = $6, bank_details = $7, payment_terms = $8, status = $9, updated_at = NOW()
		WHERE id = $10`,
		supplier.Name, supplier.ContactPerson, supplier.Email, supplier.Phone, supplier.Address,
		supplier.TaxID, supplier.BankDetails, supplier.PaymentTerms, supplier.Status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM suppliers WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanSupplier(row pgx.Row) (Supplier, error) {
	var s Supplier
	err := row.Scan(&s.ID, &s.Name, &s.ContactPerson, &s.Email, &s.Phone, &s.Address, &s.TaxID,
		&s.BankDetails, &s.PaymentTerms, &s.Status, &s.CurrentBalance, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}
