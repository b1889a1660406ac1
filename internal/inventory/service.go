package inventory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

// Direct entry types.
const (
	EntryIn     = "in"
	EntryOut    = "out"
	EntryAdjust = "adjust"
)

// EntryInput is a manual stock adjustment from the API.
type EntryInput struct {
	ProductID int64
	Quantity  float64
	Type      string
	Reference string
	Notes     string
}

// Service implements stock-ledger use-cases.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService constructs Service.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// RecordEntry applies a manual stock entry. "in" adds, "out" removes,
// "adjust" applies the signed quantity as given.
func (s *Service) RecordEntry(ctx context.Context, in EntryInput) (Movement, error) {
	if in.ProductID <= 0 {
		return Movement{}, fmt.Errorf("%w: product id is required", shared.ErrValidation)
	}
	if in.Quantity == 0 {
		return Movement{}, fmt.Errorf("%w: quantity must not be zero", shared.ErrValidation)
	}

	if in.Reference == "" {
		in.Reference = "MAN-" + uuid.NewString()[:8]
	}
	delta := Delta{
		ProductID: in.ProductID,
		Reference: in.Reference,
		Notes:     in.Notes,
	}
	switch in.Type {
	case EntryIn:
		if in.Quantity < 0 {
			return Movement{}, fmt.Errorf("%w: \"in\" entries need a positive quantity", shared.ErrValidation)
		}
		delta.Quantity = in.Quantity
		delta.Reason = ReasonManualIn
	case EntryOut:
		if in.Quantity < 0 {
			return Movement{}, fmt.Errorf("%w: \"out\" entries need a positive quantity", shared.ErrValidation)
		}
		delta.Quantity = -in.Quantity
		delta.Reason = ReasonManualOut
	case EntryAdjust:
		delta.Quantity = in.Quantity
		delta.Reason = ReasonManualAdjust
	default:
		return Movement{}, fmt.Errorf("%w: unknown entry type %q", shared.ErrValidation, in.Type)
	}

	return s.repo.RecordEntry(ctx, delta)
}

func (s *Service) ListMovements(ctx context.Context, filters MovementFilters) ([]Movement, int, error) {
	return s.repo.ListMovements(ctx, filters)
}

func (s *Service) LowStock(ctx context.Context) ([]LowStockProduct, error) {
	return s.repo.LowStock(ctx)
}

// ScanLowStock logs products at or below their threshold. Used by the
// scheduled job.
func (s *Service) ScanLowStock(ctx context.Context) (int, error) {
	products, err := s.repo.LowStock(ctx)
	if err != nil {
		return 0, err
	}
	for _, p := range products {
		s.log.Warn("product at or below minimum stock",
			"product_id", p.ID, "sku", p.SKU, "stock", p.Stock, "min_stock", p.MinStock)
	}
	return len(products), nil
}
