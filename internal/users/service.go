package users

import (
	"context"
	"fmt"

	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

// Service wraps user management rules.
type Service struct {
	repo Repository
}

// NewService constructs Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Account, error) {
	return s.repo.Get(ctx, id)
}

// ChangeRole assigns a new role to the account.
func (s *Service) ChangeRole(ctx context.Context, id int64, role string) (Account, error) {
	if role != "admin" && role != "staff" {
		return Account{}, fmt.Errorf("%w: unknown role %q", shared.ErrValidation, role)
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return Account{}, fmt.Errorf("update role: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// SetActive enables or disables an account.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) (Account, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return Account{}, fmt.Errorf("set active: %w", err)
	}
	return s.repo.Get(ctx, id)
}
