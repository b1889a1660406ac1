package products

import "time"

// Product is a sellable/purchasable catalog item. Stock is a running counter
// adjusted by order lifecycle transitions and direct stock entries; the
// stock_movements ledger carries its history.
type Product struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	CategoryID    *int64         `json:"category_id,omitempty"`
	CategoryName  string         `json:"category_name,omitempty"`
	SKU           string         `json:"sku"`
	Barcode       string         `json:"barcode,omitempty"`
	Price         float64        `json:"price"`
	Cost          float64        `json:"cost"`
	Stock         float64        `json:"stock"`
	MinStock      float64        `json:"min_stock"`
	Unit          string         `json:"unit,omitempty"`
	ImageURL      string         `json:"image_url,omitempty"`
	ImageDeleteID string         `json:"-"`
	Gallery       []GalleryImage `json:"gallery,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// GalleryImage is one entry of a product's ordered image gallery.
type GalleryImage struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"-"`
	Position  int       `json:"position"`
	URL       string    `json:"url"`
	DeleteID  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
