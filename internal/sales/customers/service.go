package customers

import (
	"context"
	"fmt"
	"strings"

	mdshared "github.com/marufrahmandev/inventory-management-system/internal/masterdata/shared"
	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

// Service implements customer use-cases.
type Service struct {
	repo Repository
}

// NewService constructs Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Customer, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) FindByName(ctx context.Context, name string) (Customer, error) {
	return s.repo.FindByName(ctx, name)
}

func (s *Service) Create(ctx context.Context, customer Customer) (Customer, error) {
	if err := validate(&customer); err != nil {
		return Customer{}, err
	}
	return s.repo.Create(ctx, customer)
}

func (s *Service) Update(ctx context.Context, id int64, customer Customer) (Customer, error) {
	if err := validate(&customer); err != nil {
		return Customer{}, err
	}
	if err := s.repo.Update(ctx, id, customer); err != nil {
		return Customer{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validate(customer *Customer) error {
	customer.Name = strings.TrimSpace(customer.Name)
	if customer.Name == "" {
		return fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	if customer.CreditLimit < 0 {
		return fmt.Errorf("%w: credit limit cannot be negative", shared.ErrValidation)
	}
	if customer.Status == "" {
		customer.Status = StatusActive
	}
	if !ValidStatus(customer.Status) {
		return fmt.Errorf("%w: unknown status %q", shared.ErrValidation, customer.Status)
	}
	return nil
}
