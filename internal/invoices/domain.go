// Package invoices implements invoice CRUD and the generator that derives a
// pre-settled invoice from a confirmed or completed sales order.
package invoices

import "time"

// Invoice statuses.
const (
	StatusPaid    = "paid"
	StatusUnpaid  = "unpaid"
	StatusPartial = "partial"
	StatusOverdue = "overdue"
)

// ValidStatus reports whether s is a recognised invoice status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPaid, StatusUnpaid, StatusPartial, StatusOverdue:
		return true
	}
	return false
}

// Terms applied when the caller leaves dates unset.
const defaultDueDays = 30

// Invoice is an invoice header plus its owned line items.
type Invoice struct {
	ID              int64         `json:"id"`
	InvoiceNumber   string        `json:"invoiceNumber"`
	SalesOrderID    *int64        `json:"salesOrderId"`
	CustomerID      *int64        `json:"customerId"`
	CustomerName    string        `json:"customerName"`
	CustomerEmail   string        `json:"customerEmail"`
	CustomerPhone   string        `json:"customerPhone"`
	CustomerAddress string        `json:"customerAddress"`
	InvoiceDate     time.Time     `json:"invoiceDate"`
	DueDate         time.Time     `json:"dueDate"`
	Items           []InvoiceItem `json:"items"`
	Subtotal        float64       `json:"subtotal"`
	Tax             float64       `json:"tax"`
	Discount        float64       `json:"discount"`
	Total           float64       `json:"total"`
	PaidAmount      float64       `json:"paidAmount"`
	Status          string        `json:"status"`
	PaymentMethod   string        `json:"paymentMethod"`
	Notes           string        `json:"notes"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// InvoiceItem is one line of an invoice.
type InvoiceItem struct {
	ID          int64   `json:"id"`
	InvoiceID   int64   `json:"-"`
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
	Total       float64 `json:"total"`
}

// ListFilters narrows invoice listings.
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
