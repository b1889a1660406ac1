package customers

import "time"

// Customer statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusBlocked  = "blocked"
)

// Customer is a buyer the business sells to.
type Customer struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	ContactPerson  string    `json:"contactPerson"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	TaxID          string    `json:"taxId"`
	PaymentTerms   string    `json:"paymentTerms"`
	CreditLimit    float64   `json:"creditLimit"`
	CurrentBalance float64   `json:"currentBalance"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ValidStatus reports whether s is a recognised customer status.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusInactive, StatusBlocked:
		return true
	}
	return false
}
