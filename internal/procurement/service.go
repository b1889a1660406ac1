package procurement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/marufrahmandev/inventory-management-system/internal/inventory"
	"github.com/marufrahmandev/inventory-management-system/internal/masterdata/suppliers"
	"github.com/marufrahmandev/inventory-management-system/internal/pricing"
	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

// SupplierDirectory is the slice of the suppliers module the snapshot
// resolver needs.
type SupplierDirectory interface {
	Get(ctx context.Context, id int64) (suppliers.Supplier, error)
	FindByName(ctx context.Context, name string) (suppliers.Supplier, error)
	Create(ctx context.Context, supplier suppliers.Supplier) (suppliers.Supplier, error)
}

// Input is the payload for creating or updating a purchase order.
type Input struct {
	OrderNumber     string
	SupplierID      *int64
	SupplierName    string
	SupplierEmail   string
	SupplierPhone   string
	SupplierAddress string
	OrderDate       *time.Time
	ExpectedDate    *time.Time
	Items           []pricing.ItemInput
	Totals          pricing.ExplicitTotals
	Status          string
	Notes           string
}

// Service implements purchase-order use-cases.
type Service struct {
	repo      Repository
	catalog   pricing.Catalog
	suppliers SupplierDirectory
	log       *slog.Logger
	now       func() time.Time
}

// NewService constructs Service.
func NewService(repo Repository, catalog pricing.Catalog, dir SupplierDirectory, log *slog.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, suppliers: dir, log: log, now: time.Now}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]PurchaseOrder, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (PurchaseOrder, error) {
	return s.repo.Get(ctx, id)
}

// Create persists a new purchase order. A create that already carries the
// received status applies the stock increment immediately; this differs from
// the sales side on purpose.
func (s *Service) Create(ctx context.Context, in Input) (PurchaseOrder, error) {
	order, err := s.build(ctx, in)
	if err != nil {
		return PurchaseOrder{}, err
	}

	var deltas []inventory.Delta
	if order.Status == StatusReceived {
		for _, item := range order.Items {
			deltas = append(deltas, inventory.Delta{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Reason:    inventory.ReasonPurchase,
			})
		}
	}
	if err := s.repo.Create(ctx, &order, deltas); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return PurchaseOrder{}, fmt.Errorf("%w: order number %s already exists", shared.ErrConflict, order.OrderNumber)
		}
		return PurchaseOrder{}, err
	}
	return order, nil
}

// Update rewrites the order, replaces items wholesale and applies the stock
// side effects of the status transition.
func (s *Service) Update(ctx context.Context, id int64, in Input) (PurchaseOrder, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return PurchaseOrder{}, err
	}

	if in.Status == "" {
		in.Status = current.Status
	}
	if in.OrderNumber == "" {
		in.OrderNumber = current.OrderNumber
	}
	if in.OrderDate == nil {
		in.OrderDate = &current.OrderDate
	}
	order, err := s.build(ctx, in)
	if err != nil {
		return PurchaseOrder{}, err
	}
	order.ID = current.ID
	order.CreatedAt = current.CreatedAt

	deltas := transitionDeltas(current, order)
	if err := s.repo.Update(ctx, &order, deltas); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return PurchaseOrder{}, fmt.Errorf("%w: order number %s already exists", shared.ErrConflict, order.OrderNumber)
		}
		return PurchaseOrder{}, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes the order, reversing the received increment first when the
// order had already been received.
func (s *Service) Delete(ctx context.Context, id int64) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	var deltas []inventory.Delta
	if current.Status == StatusReceived {
		for _, item := range current.Items {
			deltas = append(deltas, inventory.Delta{
				ProductID: item.ProductID,
				Quantity:  -item.Quantity,
				Reason:    inventory.ReasonOrderDeleted,
				Reference: current.OrderNumber,
			})
		}
	}
	return s.repo.Delete(ctx, id, deltas)
}

func (s *Service) build(ctx context.Context, in Input) (PurchaseOrder, error) {
	if in.Status == "" {
		in.Status = StatusPending
	}
	if !ValidStatus(in.Status) {
		return PurchaseOrder{}, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, in.Status)
	}
	in.OrderNumber = strings.TrimSpace(in.OrderNumber)
	if in.OrderNumber == "" {
		return PurchaseOrder{}, fmt.Errorf("%w: order number is required", shared.ErrValidation)
	}

	items, subtotal, err := pricing.Enrich(ctx, s.catalog, in.Items, pricing.BasisCost)
	if err != nil {
		return PurchaseOrder{}, err
	}
	totals := pricing.ResolveTotals(subtotal, in.Totals)

	order := PurchaseOrder{
		OrderNumber:  in.OrderNumber,
		OrderDate:    s.now(),
		ExpectedDate: in.ExpectedDate,
		Subtotal:     totals.Subtotal,
		Tax:          totals.Tax,
		Discount:     totals.Discount,
		Total:        totals.Total,
		Status:       in.Status,
		Notes:        in.Notes,
	}
	if in.OrderDate != nil {
		order.OrderDate = *in.OrderDate
	}
	order.Items = make([]OrderItem, 0, len(items))
	for _, item := range items {
		order.Items = append(order.Items, OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Total:       item.Total,
		})
	}

	if err := s.resolveSupplier(ctx, in, &order); err != nil {
		return PurchaseOrder{}, err
	}
	return order, nil
}

func (s *Service) resolveSupplier(ctx context.Context, in Input, order *PurchaseOrder) error {
	if in.SupplierID != nil {
		supplier, err := s.suppliers.Get(ctx, *in.SupplierID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return fmt.Errorf("%w: supplier %d does not exist", shared.ErrInvalidReference, *in.SupplierID)
			}
			return err
		}
		order.SupplierID = &supplier.ID
		order.SupplierName = supplier.Name
		order.SupplierEmail = supplier.Email
		order.SupplierPhone = supplier.Phone
		order.SupplierAddress = supplier.Address
		return nil
	}

	name := strings.TrimSpace(in.SupplierName)
	if name == "" {
		return fmt.Errorf("%w: supplier name is required", shared.ErrValidation)
	}

	existing, err := s.suppliers.FindByName(ctx, name)
	if err == nil {
		order.SupplierID = &existing.ID
		order.SupplierName = existing.Name
		order.SupplierEmail = existing.Email
		order.SupplierPhone = existing.Phone
		order.SupplierAddress = existing.Address
		return nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		s.log.Warn("supplier lookup failed, keeping raw snapshot", "supplier", name, "error", err)
		order.SupplierName = name
		order.SupplierEmail = in.SupplierEmail
		order.SupplierPhone = in.SupplierPhone
		order.SupplierAddress = in.SupplierAddress
		return nil
	}

	created, err := s.suppliers.Create(ctx, suppliers.Supplier{
		Name:    name,
		Email:   in.SupplierEmail,
		Phone:   in.SupplierPhone,
		Address: in.SupplierAddress,
		Status:  suppliers.StatusActive,
	})
	if err != nil {
		s.log.Warn("auto-create supplier failed, keeping raw snapshot", "supplier", name, "error", err)
		order.SupplierName = name
		order.SupplierEmail = in.SupplierEmail
		order.SupplierPhone = in.SupplierPhone
		order.SupplierAddress = in.SupplierAddress
		return nil
	}
	order.SupplierID = &created.ID
	order.SupplierName = created.Name
	order.SupplierEmail = created.Email
	order.SupplierPhone = created.Phone
	order.SupplierAddress = created.Address
	return nil
}

// transitionDeltas derives stock effects for a purchase-order update.
// Entering received increments against the new items; cancelling out of
// received reverses the previously stored items.
func transitionDeltas(previous, next PurchaseOrder) []inventory.Delta {
	var deltas []inventory.Delta
	switch {
	case previous.Status != StatusReceived && next.Status == StatusReceived:
		for _, item := range next.Items {
			deltas = append(deltas, inventory.Delta{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Reason:    inventory.ReasonPurchase,
			})
		}
	case previous.Status == StatusReceived && next.Status == StatusCancelled:
		for _, item := range previous.Items {
			deltas = append(deltas, inventory.Delta{
				ProductID: item.ProductID,
				Quantity:  -item.Quantity,
				Reason:    inventory.ReasonPurchaseUndo,
			})
		}
	}
	return deltas
}
