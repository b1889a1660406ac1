package categories

import (
	"fmt"
	"strings"

	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

func (s *Service) validate(c Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category name is required", shared.ErrValidation)
	}
	return nil
}
