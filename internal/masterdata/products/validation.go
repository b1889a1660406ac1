package products

import (
	"fmt"
	"strings"

	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

func validateProduct(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", shared.ErrValidation)
	}
	if strings.TrimSpace(p.SKU) == "" {
		return fmt.Errorf("%w: product sku is required", shared.ErrValidation)
	}
	if p.Price < 0 || p.Cost < 0 {
		return fmt.Errorf("%w: price and cost must not be negative", shared.ErrValidation)
	}
	return nil
}
