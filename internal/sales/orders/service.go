package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/marufrahmandev/inventory-management-system/internal/inventory"
	"github.com/marufrahmandev/inventory-management-system/internal/pricing"
	"github.com/marufrahmandev/inventory-management-system/internal/sales/customers"
	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

// CustomerDirectory is the slice of the customers module the snapshot
// resolver needs.
type CustomerDirectory interface {
	Get(ctx context.Context, id int64) (customers.Customer, error)
	FindByName(ctx context.Context, name string) (customers.Customer, error)
	Create(ctx context.Context, customer customers.Customer) (customers.Customer, error)
}

// Input is the payload for creating or updating a sales order.
type Input struct {
	CustomerID      *int64
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string
	OrderDate       *time.Time
	DeliveryDate    *time.Time
	Items           []pricing.ItemInput
	Totals          pricing.ExplicitTotals
	Status          string
	Notes           string
}

// Service implements sales-order use-cases.
type Service struct {
	repo      Repository
	catalog   pricing.Catalog
	customers CustomerDirectory
	log       *slog.Logger
	now       func() time.Time
}

// NewService constructs Service.
func NewService(repo Repository, catalog pricing.Catalog, dir CustomerDirectory, log *slog.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, customers: dir, log: log, now: time.Now}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]SalesOrder, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (SalesOrder, error) {
	return s.repo.Get(ctx, id)
}

// NextNumber previews the order number the next create would allocate.
func (s *Service) NextNumber(ctx context.Context) (string, error) {
	return s.repo.PeekNextNumber(ctx)
}

// Create persists a new order. The initial status takes no stock effect even
// when it is confirmed or completed; stock moves only on status transitions
// observed by Update.
func (s *Service) Create(ctx context.Context, in Input) (SalesOrder, error) {
	order, err := s.build(ctx, in)
	if err != nil {
		return SalesOrder{}, err
	}
	if err := s.repo.Create(ctx, &order, nil); err != nil {
		return SalesOrder{}, err
	}
	return order, nil
}

// Update rewrites the order header, replaces its items wholesale, and applies
// the stock side effects of the status transition.
func (s *Service) Update(ctx context.Context, id int64, in Input) (SalesOrder, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return SalesOrder{}, err
	}

	if in.Status == "" {
		in.Status = current.Status
	}
	if in.OrderDate == nil {
		in.OrderDate = &current.OrderDate
	}
	order, err := s.build(ctx, in)
	if err != nil {
		return SalesOrder{}, err
	}
	order.ID = current.ID
	order.OrderNumber = current.OrderNumber
	order.CreatedAt = current.CreatedAt

	deltas := transitionDeltas(current, order)
	if err := s.repo.Update(ctx, &order, deltas); err != nil {
		return SalesOrder{}, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes the order, compensating stock first when the order held a
// stock-affecting status.
func (s *Service) Delete(ctx context.Context, id int64) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	var deltas []inventory.Delta
	if stockCommitted(current.Status) {
		for _, item := range current.Items {
			deltas = append(deltas, inventory.Delta{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Reason:    inventory.ReasonOrderDeleted,
				Reference: current.OrderNumber,
			})
		}
	}
	return s.repo.Delete(ctx, id, deltas)
}

// build validates input, resolves the customer snapshot and enriches items.
// Nothing is persisted here, so a missing product fails the whole operation
// before any stock mutation.
func (s *Service) build(ctx context.Context, in Input) (SalesOrder, error) {
	if in.Status == "" {
		in.Status = StatusPending
	}
	if !ValidStatus(in.Status) {
		return SalesOrder{}, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, in.Status)
	}

	items, subtotal, err := pricing.Enrich(ctx, s.catalog, in.Items, pricing.BasisSale)
	if err != nil {
		return SalesOrder{}, err
	}
	totals := pricing.ResolveTotals(subtotal, in.Totals)

	order := SalesOrder{
		OrderDate:    s.now(),
		DeliveryDate: in.DeliveryDate,
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

	if err := s.resolveCustomer(ctx, in, &order); err != nil {
		return SalesOrder{}, err
	}
	return order, nil
}

// resolveCustomer fills the snapshot fields. A customer id must resolve; a
// bare name is looked up first and auto-created only when unknown, so
// repeated submissions reuse the same customer row. Auto-create failure
// degrades to using the raw fields without a link.
func (s *Service) resolveCustomer(ctx context.Context, in Input, order *SalesOrder) error {
	if in.CustomerID != nil {
		customer, err := s.customers.Get(ctx, *in.CustomerID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return fmt.Errorf("%w: customer %d does not exist", shared.ErrInvalidReference, *in.CustomerID)
			}
			return err
		}
		order.CustomerID = &customer.ID
		order.CustomerName = customer.Name
		order.CustomerEmail = customer.Email
		order.CustomerPhone = customer.Phone
		order.CustomerAddress = customer.Address
		return nil
	}

	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return fmt.Errorf("%w: customer name is required", shared.ErrValidation)
	}

	existing, err := s.customers.FindByName(ctx, name)
	if err == nil {
		order.CustomerID = &existing.ID
		order.CustomerName = existing.Name
		order.CustomerEmail = existing.Email
		order.CustomerPhone = existing.Phone
		order.CustomerAddress = existing.Address
		return nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		s.log.Warn("customer lookup failed, keeping raw snapshot", "customer", name, "error", err)
		order.CustomerName = name
		order.CustomerEmail = in.CustomerEmail
		order.CustomerPhone = in.CustomerPhone
		order.CustomerAddress = in.CustomerAddress
		return nil
	}

	created, err := s.customers.Create(ctx, customers.Customer{
		Name:    name,
		Email:   in.CustomerEmail,
		Phone:   in.CustomerPhone,
		Address: in.CustomerAddress,
		Status:  customers.StatusActive,
	})
	if err != nil {
		s.log.Warn("auto-create customer failed, keeping raw snapshot", "customer", name, "error", err)
		order.CustomerName = name
		order.CustomerEmail = in.CustomerEmail
		order.CustomerPhone = in.CustomerPhone
		order.CustomerAddress = in.CustomerAddress
		return nil
	}
	order.CustomerID = &created.ID
	order.CustomerName = created.Name
	order.CustomerEmail = created.Email
	order.CustomerPhone = created.Phone
	order.CustomerAddress = created.Address
	return nil
}

// transitionDeltas derives the stock effects of moving from the stored order
// to the updated one. Entering confirmed/completed from outside that pair
// claims stock against the new items; cancelling out of the pair releases
// the previously stored items.
func transitionDeltas(previous, next SalesOrder) []inventory.Delta {
	was := stockCommitted(previous.Status)
	now := stockCommitted(next.Status)

	var deltas []inventory.Delta
	switch {
	case !was && now:
		for _, item := range next.Items {
			deltas = append(deltas, inventory.Delta{
				ProductID: item.ProductID,
				Quantity:  -item.Quantity,
				Reason:    inventory.ReasonSale,
			})
		}
	case was && next.Status == StatusCancelled:
		for _, item := range previous.Items {
			deltas = append(deltas, inventory.Delta{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Reason:    inventory.ReasonSaleRestored,
			})
		}
	}
	return deltas
}
