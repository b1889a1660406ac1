package products

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	mdshared "github.com/marufrahmandev/inventory-management-system/internal/masterdata/shared"
	"github.com/marufrahmandev/inventory-management-system/internal/pricing"
	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

// Repository persists products and their galleries. It also serves as the
// pricing catalog for order enrichment.
type Repository interface {
	List(ctx context.Context, filters mdshared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	GetProducts(ctx context.Context, ids []int64) (map[int64]pricing.CatalogProduct, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id int64, product Product) error
	Delete(ctx context.Context, id int64) error
	AppendGalleryImage(ctx context.Context, productID int64, url, deleteID string) (GalleryImage, error)
	RemoveGalleryImage(ctx context.Context, productID, imageID int64) (GalleryImage, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const productColumns = `p.id, p.name, p.category_id, COALESCE(c.name, ''), p.sku, p.barcode,
	p.price, p.cost, p.stock, p.min_stock, p.unit, p.image_url, p.image_delete_id,
	p.created_at, p.updated_at`

func (r *repository) List(ctx context.Context, filters mdshared.ListFilters) ([]Product, int, error) {
	filters.Normalize()

	where := " WHERE 1=1"
	args := []interface{}{}
	if filters.CategoryID != nil {
		args = append(args, *filters.CategoryID)
		where += " AND p.category_id = $" + strconv.Itoa(len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += " AND (p.name ILIKE $" + n + " OR p.sku ILIKE $" + n + " OR p.barcode ILIKE $" + n + ")"
	}
	if filters.LowStock {
		where += " AND p.stock <= p.min_stock"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM products p" + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + productColumns + " FROM products p LEFT JOIN categories c ON c.id = p.category_id" + where +
		" ORDER BY p.name ASC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.db.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products p LEFT JOIN categories c ON c.id = p.category_id WHERE p.id = $1", id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}

	gallery, err := r.gallery(ctx, id)
	if err != nil {
		return Product{}, err
	}
	p.Gallery = gallery
	return p, nil
}

func (r *repository) GetProducts(ctx context.Context, ids []int64) (map[int64]pricing.CatalogProduct, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id, name, price, cost FROM products WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[int64]pricing.CatalogProduct)
	for rows.Next() {
		var p pricing.CatalogProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Cost); err != nil {
			return nil, err
		}
		found[p.ID] = p
	}
	return found, rows.Err()
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO products (name, category_id, sku, barcode, price, cost, stock, min_stock, unit, image_url, image_delete_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		product.Name, product.CategoryID, product.SKU, product.Barcode,
		product.Price, product.Cost, product.Stock, product.MinStock,
		product.Unit, product.ImageURL, product.ImageDeleteID,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Product{}, shared.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return Product{}, shared.ErrInvalidReference
		}
		return Product{}, err
	}
	return product, nil
}

func (r *repository) Update(ctx context.Context, id int64, product Product) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = $1, category_id = $2, sku = $3, barcode = $4, price = $5, cost = $6,
		    min_stock = $7, unit = $8, image_url = $9, image_delete_id = $10, updated_at = NOW()
		WHERE id = $11`,
		product.Name, product.CategoryID, product.SKU, product.Barcode, product.Price, product.Cost,
		product.MinStock, product.Unit, product.ImageURL, product.ImageDeleteID, id)
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return shared.ErrInvalidReference
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) AppendGalleryImage(ctx context.Context, productID int64, url, deleteID string) (GalleryImage, error) {
	var img GalleryImage
	err := r.db.QueryRow(ctx, `
		INSERT INTO product_images (product_id, position, url, delete_id)
		VALUES ($1, COALESCE((SELECT MAX(position) FROM product_images WHERE product_id = $1), 0) + 1, $2, $3)
		RETURNING id, product_id, position, url, delete_id, created_at`,
		productID, url, deleteID,
	).Scan(&img.ID, &img.ProductID, &img.Position, &img.URL, &img.DeleteID, &img.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return GalleryImage{}, shared.ErrInvalidReference
		}
		return GalleryImage{}, err
	}
	return img, nil
}

func (r *repository) RemoveGalleryImage(ctx context.Context, productID, imageID int64) (GalleryImage, error) {
	var img GalleryImage
	err := r.db.QueryRow(ctx, `
		DELETE FROM product_images WHERE id = $1 AND product_id = $2
		RETURNING id, product_id, position, url, delete_id, created_at`,
		imageID, productID,
	).Scan(&img.ID, &img.ProductID, &img.Position, &img.URL, &img.DeleteID, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return GalleryImage{}, shared.ErrNotFound
		}
		return GalleryImage{}, err
	}
	return img, nil
}

func (r *repository) gallery(ctx context.Context, productID int64) ([]GalleryImage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, position, url, delete_id, created_at
		FROM product_images WHERE product_id = $1 ORDER BY position`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gallery []GalleryImage
	for rows.Next() {
		var img GalleryImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.Position, &img.URL, &img.DeleteID, &img.CreatedAt); err != nil {
			return nil, err
		}
		gallery = append(gallery, img)
	}
	return gallery, rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.CategoryID, &p.CategoryName, &p.SKU, &p.Barcode,
		&p.Price, &p.Cost, &p.Stock, &p.MinStock, &p.Unit, &p.ImageURL, &p.ImageDeleteID,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
