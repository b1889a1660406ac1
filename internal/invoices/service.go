package invoices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/marufrahmandev/inventory-management-system/internal/pricing"
	"github.com/marufrahmandev/inventory-management-system/internal/sales/customers"
	"github.com/marufrahmandev/inventory-management-system/internal/sales/orders"
	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

// SalesOrderSource is the slice of the sales-orders module the generator
// reads from.
type SalesOrderSource interface {
	Get(ctx context.Context, id int64) (orders.SalesOrder, error)
}

// CustomerDirectory resolves customer snapshots for hand-written invoices.
type CustomerDirectory interface {
	Get(ctx context.Context, id int64) (customers.Customer, error)
	FindByName(ctx context.Context, name string) (customers.Customer, error)
	Create(ctx context.Context, customer customers.Customer) (customers.Customer, error)
}

// Input is the payload for creating or updating an invoice by hand.
type Input struct {
	CustomerID      *int64
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string
	InvoiceDate     *time.Time
	DueDate         *time.Time
	Items           []pricing.ItemInput
	Totals          pricing.ExplicitTotals
	PaidAmount      *float64
	Status          string
	PaymentMethod   string
	Notes           string
}

// GenerateOptions are the optional overrides for generating an invoice from
// a sales order.
type GenerateOptions struct {
	InvoiceDate *time.Time
	DueDate     *time.Time
	Notes       string
}

// Service implements invoice use-cases.
type Service struct {
	repo      Repository
	catalog   pricing.Catalog
	customers CustomerDirectory
	orders    SalesOrderSource
	log       *slog.Logger
	now       func() time.Time
}

// NewService constructs Service.
func NewService(repo Repository, catalog pricing.Catalog, dir CustomerDirectory, src SalesOrderSource, log *slog.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, customers: dir, orders: src, log: log, now: time.Now}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Invoice, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Invoice, error) {
	return s.repo.Get(ctx, id)
}

// FindBySalesOrder returns the invoice generated for a sales order, if any.
func (s *Service) FindBySalesOrder(ctx context.Context, salesOrderID int64) (Invoice, error) {
	return s.repo.FindBySalesOrder(ctx, salesOrderID)
}

// NextNumber previews the invoice number the next create would allocate.
func (s *Service) NextNumber(ctx context.Context) (string, error) {
	return s.repo.PeekNextNumber(ctx)
}

// Create persists a hand-written invoice. Invoices never move stock; that
// happened on the sales order.
func (s *Service) Create(ctx context.Context, in Input) (Invoice, error) {
	invoice, err := s.build(ctx, in)
	if err != nil {
		return Invoice{}, err
	}
	if err := s.repo.Create(ctx, &invoice); err != nil {
		return Invoice{}, err
	}
	return invoice, nil
}

// Update rewrites an invoice and replaces its items wholesale.
func (s *Service) Update(ctx context.Context, id int64, in Input) (Invoice, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	if in.Status == "" {
		in.Status = current.Status
	}
	if in.PaidAmount == nil {
		in.PaidAmount = &current.PaidAmount
	}
	invoice, err := s.build(ctx, in)
	if err != nil {
		return Invoice{}, err
	}
	invoice.ID = current.ID
	invoice.InvoiceNumber = current.InvoiceNumber
	invoice.SalesOrderID = current.SalesOrderID
	invoice.CreatedAt = current.CreatedAt

	if err := s.repo.Update(ctx, &invoice); err != nil {
		return Invoice{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// GenerateFromSalesOrder derives a pre-settled invoice from a confirmed or
// completed sales order. On conflict the existing invoice is returned along
// with the error so the handler can hand it back to the client.
func (s *Service) GenerateFromSalesOrder(ctx context.Context, salesOrderID int64, opts GenerateOptions) (Invoice, error) {
	order, err := s.orders.Get(ctx, salesOrderID)
	if err != nil {
		return Invoice{}, err
	}
	if order.Status != orders.StatusConfirmed && order.Status != orders.StatusCompleted {
		return Invoice{}, fmt.Errorf("%w: sales order %s is %s, need confirmed or completed",
			shared.ErrInvalidState, order.OrderNumber, order.Status)
	}

	invoiceDate := s.now()
	if opts.InvoiceDate != nil {
		invoiceDate = *opts.InvoiceDate
	}
	dueDate := invoiceDate.AddDate(0, 0, defaultDueDays)
	if opts.DueDate != nil {
		dueDate = *opts.DueDate
	}
	notes := opts.Notes
	if notes == "" {
		notes = fmt.Sprintf("Generated from sales order %s", order.OrderNumber)
	}

	invoice := Invoice{
		SalesOrderID:    &order.ID,
		CustomerID:      order.CustomerID,
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		CustomerPhone:   order.CustomerPhone,
		CustomerAddress: order.CustomerAddress,
		InvoiceDate:     invoiceDate,
		DueDate:         dueDate,
		Subtotal:        order.Subtotal,
		Tax:             order.Tax,
		Discount:        order.Discount,
		Total:           order.Total,
		PaidAmount:      order.Total,
		Status:          StatusPaid,
		Notes:           notes,
	}
	invoice.Items = make([]InvoiceItem, 0, len(order.Items))
	for _, item := range order.Items {
		invoice.Items = append(invoice.Items, InvoiceItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Total:       item.Total,
		})
	}

	if err := s.repo.Create(ctx, &invoice); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			existing, findErr := s.repo.FindBySalesOrder(ctx, salesOrderID)
			if findErr != nil {
				return Invoice{}, fmt.Errorf("%w: invoice already exists for sales order %d", shared.ErrConflict, salesOrderID)
			}
			return existing, fmt.Errorf("%w: invoice %s already exists for sales order %s",
				shared.ErrConflict, existing.InvoiceNumber, order.OrderNumber)
		}
		return Invoice{}, err
	}
	return invoice, nil
}

// MarkOverdue flips unpaid and partial invoices past their due date to
// overdue. Used by the scheduled job.
func (s *Service) MarkOverdue(ctx context.Context) (int64, error) {
	n, err := s.repo.MarkOverdue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("marked invoices overdue", "count", n)
	}
	return n, nil
}

func (s *Service) build(ctx context.Context, in Input) (Invoice, error) {
	if in.Status == "" {
		in.Status = StatusUnpaid
	}
	if !ValidStatus(in.Status) {
		return Invoice{}, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, in.Status)
	}

	items, subtotal, err := pricing.Enrich(ctx, s.catalog, in.Items, pricing.BasisSale)
	if err != nil {
		return Invoice{}, err
	}
	totals := pricing.ResolveTotals(subtotal, in.Totals)

	invoiceDate := s.now()
	if in.InvoiceDate != nil {
		invoiceDate = *in.InvoiceDate
	}
	dueDate := invoiceDate.AddDate(0, 0, defaultDueDays)
	if in.DueDate != nil {
		dueDate = *in.DueDate
	}

	invoice := Invoice{
		InvoiceDate:   invoiceDate,
		DueDate:       dueDate,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Discount:      totals.Discount,
		Total:         totals.Total,
		Status:        in.Status,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
	}
	if in.PaidAmount != nil {
		invoice.PaidAmount = *in.PaidAmount
	}
	invoice.Items = make([]InvoiceItem, 0, len(items))
	for _, item := range items {
		invoice.Items = append(invoice.Items, InvoiceItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Total:       item.Total,
		})
	}

	if err := s.resolveCustomer(ctx, in, &invoice); err != nil {
		return Invoice{}, err
	}
	return invoice, nil
}

func (s *Service) resolveCustomer(ctx context.Context, in Input, invoice *Invoice) error {
	if in.CustomerID != nil {
		customer, err := s.customers.Get(ctx, *in.CustomerID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return fmt.Errorf("%w: customer %d does not exist", shared.ErrInvalidReference, *in.CustomerID)
			}
			return err
		}
		invoice.CustomerID = &customer.ID
		invoice.CustomerName = customer.Name
		invoice.CustomerEmail = customer.Email
		invoice.CustomerPhone = customer.Phone
		invoice.CustomerAddress = customer.Address
		return nil
	}

	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return fmt.Errorf("%w: customer name is required", shared.ErrValidation)
	}

	existing, err := s.customers.FindByName(ctx, name)
	if err == nil {
		invoice.CustomerID = &existing.ID
		invoice.CustomerName = existing.Name
		invoice.CustomerEmail = existing.Email
		invoice.CustomerPhone = existing.Phone
		invoice.CustomerAddress = existing.Address
		return nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		s.log.Warn("customer lookup failed, keeping raw snapshot", "customer", name, "error", err)
		invoice.CustomerName = name
		invoice.CustomerEmail = in.CustomerEmail
		invoice.CustomerPhone = in.CustomerPhone
		invoice.CustomerAddress = in.CustomerAddress
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
		invoice.CustomerName = name
		invoice.CustomerEmail = in.CustomerEmail
		invoice.CustomerPhone = in.CustomerPhone
		invoice.CustomerAddress = in.CustomerAddress
		return nil
	}
	invoice.CustomerID = &created.ID
	invoice.CustomerName = created.Name
	invoice.CustomerEmail = created.Email
	invoice.CustomerPhone = created.Phone
	invoice.CustomerAddress = created.Address
	return nil
}
