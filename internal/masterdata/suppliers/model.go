package suppliers

import "time"

// Supplier statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusBlocked  = "blocked"
)

// Supplier is a vendor the business purchases from.
type Supplier struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	ContactPerson  string    `json:"contactPerson"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	TaxID          string    `json:"taxId"`
	BankDetails    string    `json:"bankDetails"`
	PaymentTerms   string    `json:"paymentTerms"`
	Status         string    `json:"status"`
	CurrentBalance float64   `json:"currentBalance"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ValidStatus reports whether s is a recognised supplier status.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusInactive, StatusBlocked:
		return true
	}
	return false
}
