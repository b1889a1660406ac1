// Package procurement implements purchase orders. Unlike sales orders these
// carry a client-supplied number, and receiving stock applies on create as
// well as on update.
package procurement

import "time"

// Purchase order statuses.
const (
	StatusPending   = "pending"
	StatusOrdered   = "ordered"
	StatusReceived  = "received"
	StatusCancelled = "cancelled"
)

// ValidStatus reports whether s is a recognised purchase-order status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusOrdered, StatusReceived, StatusCancelled:
		return true
	}
	return false
}

// PurchaseOrder is an order header plus its owned line items. Supplier
// fields are a snapshot taken at write time.
type PurchaseOrder struct {
	ID              int64      `json:"id"`
	OrderNumber     string     `json:"orderNumber"`
	SupplierID      *int64     `json:"supplierId"`
	SupplierName    string     `json:"supplierName"`
	SupplierEmail   string     `json:"supplierEmail"`
	SupplierPhone   string     `json:"supplierPhone"`
	SupplierAddress string     `json:"supplierAddress"`
	OrderDate       time.Time  `json:"orderDate"`
	ExpectedDate    *time.Time `json:"expectedDate"`
	Items           []OrderItem `json:"items"`
	Subtotal        float64    `json:"subtotal"`
	Tax             float64    `json:"tax"`
	Discount        float64    `json:"discount"`
	Total           float64    `json:"total"`
	Status          string     `json:"status"`
	Notes           string     `json:"notes"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// OrderItem is one line of a purchase order.
type OrderItem struct {
	ID          int64   `json:"id"`
	OrderID     int64   `json:"-"`
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
	Total       float64 `json:"total"`
}

// ListFilters narrows purchase-order listings.
type ListFilters struct {
	Page      int
	Limit     int
	Search    string
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
}

// Normalize applies listing defaults.
func (f *ListFilters) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

// Offset converts page/limit into a row offset.
func (f *ListFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}
