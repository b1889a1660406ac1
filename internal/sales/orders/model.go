// Package orders implements the sales-order lifecycle: numbering, customer
// snapshots, line enrichment and the stock side effects of status changes.
package orders

import "time"

// Sales order statuses.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// ValidStatus reports whether s is a recognised sales-order status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// stockCommitted reports whether a status has claimed stock. Orders entering
// this pair decrement product stock; cancelling out of it restores it.
func stockCommitted(status string) bool {
	return status == StatusConfirmed || status == StatusCompleted
}

// SalesOrder is an order header plus its owned line items. The customer
// fields are a snapshot taken at write time, never updated retroactively.
type SalesOrder struct {
	ID              int64       `json:"id"`
	OrderNumber     string      `json:"orderNumber"`
	CustomerID      *int64      `json:"customerId"`
	CustomerName    string      `json:"customerName"`
	CustomerEmail   string      `json:"customerEmail"`
	CustomerPhone   string      `json:"customerPhone"`
	CustomerAddress string      `json:"customerAddress"`
	OrderDate       time.Time   `json:"orderDate"`
	DeliveryDate    *time.Time  `json:"deliveryDate"`
	Items           []OrderItem `json:"items"`
	Subtotal        float64     `json:"subtotal"`
	Tax             float64     `json:"tax"`
	Discount        float64     `json:"discount"`
	Total           float64     `json:"total"`
	Status          string      `json:"status"`
	Notes           string      `json:"notes"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// OrderItem is one line of a sales order. Lines are replaced wholesale on
// every update; there is no partial patch.
type OrderItem struct {
	ID          int64   `json:"id"`
	OrderID     int64   `json:"-"`
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
	Total       float64 `json:"total"`
}

// ListFilters narrows order listings.
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
