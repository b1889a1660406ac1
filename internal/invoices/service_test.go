package invoices

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marufrahmandev/inventory-management-system/internal/docnum"
	"github.com/marufrahmandev/inventory-management-system/internal/pricing"
	"github.com/marufrahmandev/inventory-management-system/internal/sales/customers"
	"github.com/marufrahmandev/inventory-management-system/internal/sales/orders"
	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

type memoryInvoiceRepo struct {
	invoices map[int64]Invoice
	nextID   int64
	seq      int
}

func newMemoryInvoiceRepo() *memoryInvoiceRepo {
	return &memoryInvoiceRepo{invoices: map[int64]Invoice{}}
}

func (r *memoryInvoiceRepo) List(context.Context, ListFilters) ([]Invoice, int, error) {
	var out []Invoice
	for _, inv := range r.invoices {
		out = append(out, inv)
	}
	return out, len(out), nil
}

func (r *memoryInvoiceRepo) Get(_ context.Context, id int64) (Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return Invoice{}, shared.ErrNotFound
	}
	return inv, nil
}

func (r *memoryInvoiceRepo) FindBySalesOrder(_ context.Context, salesOrderID int64) (Invoice, error) {
	for _, inv := range r.invoices {
		if inv.SalesOrderID != nil && *inv.SalesOrderID == salesOrderID {
			return inv, nil
		}
	}
	return Invoice{}, shared.ErrNotFound
}

func (r *memoryInvoiceRepo) Create(ctx context.Context, invoice *Invoice) error {
	if invoice.SalesOrderID != nil {
		if _, err := r.FindBySalesOrder(ctx, *invoice.SalesOrderID); err == nil {
			return shared.ErrConflict
		}
	}
	r.nextID++
	r.seq++
	invoice.ID = r.nextID
	invoice.InvoiceNumber = docnum.Format(docnum.PrefixInvoice, time.Now().Year(), r.seq)
	r.invoices[invoice.ID] = *invoice
	return nil
}

func (r *memoryInvoiceRepo) Update(_ context.Context, invoice *Invoice) error {
	if _, ok := r.invoices[invoice.ID]; !ok {
		return shared.ErrNotFound
	}
	r.invoices[invoice.ID] = *invoice
	return nil
}

func (r *memoryInvoiceRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.invoices[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.invoices, id)
	return nil
}

func (r *memoryInvoiceRepo) PeekNextNumber(context.Context) (string, error) {
	return docnum.Format(docnum.PrefixInvoice, time.Now().Year(), r.seq+1), nil
}

func (r *memoryInvoiceRepo) MarkOverdue(_ context.Context, asOf time.Time) (int64, error) {
	var n int64
	for id, inv := range r.invoices {
		if (inv.Status == StatusUnpaid || inv.Status == StatusPartial) && inv.DueDate.Before(asOf) {
			inv.Status = StatusOverdue
			r.invoices[id] = inv
			n++
		}
	}
	return n, nil
}

type staticCatalog map[int64]pricing.CatalogProduct

func (c staticCatalog) GetProducts(_ context.Context, ids []int64) (map[int64]pricing.CatalogProduct, error) {
	found := map[int64]pricing.CatalogProduct{}
	for _, id := range ids {
		if p, ok := c[id]; ok {
			found[id] = p
		}
	}
	return found, nil
}

type staticOrders map[int64]orders.SalesOrder

func (s staticOrders) Get(_ context.Context, id int64) (orders.SalesOrder, error) {
	o, ok := s[id]
	if !ok {
		return orders.SalesOrder{}, shared.ErrNotFound
	}
	return o, nil
}

type memoryDirectory struct {
	customers map[int64]customers.Customer
	nextID    int64
}

func (d *memoryDirectory) Get(_ context.Context, id int64) (customers.Customer, error) {
	c, ok := d.customers[id]
	if !ok {
		return customers.Customer{}, shared.ErrNotFound
	}
	return c, nil
}

func (d *memoryDirectory) FindByName(_ context.Context, name string) (customers.Customer, error) {
	for _, c := range d.customers {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return customers.Customer{}, shared.ErrNotFound
}

func (d *memoryDirectory) Create(_ context.Context, c customers.Customer) (customers.Customer, error) {
	d.nextID++
	c.ID = d.nextID
	if d.customers == nil {
		d.customers = map[int64]customers.Customer{}
	}
	d.customers[c.ID] = c
	return c, nil
}

// racingInvoiceRepo models the losing side of two concurrent generate
// calls: the existence check saw nothing, but by insert time another
// transaction has committed an invoice for the same order and the
// unique index rejects this one.
type racingInvoiceRepo struct {
	*memoryInvoiceRepo
	winner Invoice
}

func (r *racingInvoiceRepo) Create(_ context.Context, _ *Invoice) error {
	r.invoices[r.winner.ID] = r.winner
	return shared.ErrConflict
}

func confirmedOrder() orders.SalesOrder {
	customerID := int64(4)
	return orders.SalesOrder{
		ID:            10,
		OrderNumber:   "SO-2026-000042",
		CustomerID:    &customerID,
		CustomerName:  "Acme",
		CustomerEmail: "orders@acme.test",
		Status:        orders.StatusConfirmed,
		Subtotal:      100,
		Tax:           10,
		Discount:      5,
		Total:         105,
		Items: []orders.OrderItem{
			{ProductID: 1, ProductName: "Widget", Quantity: 20, Price: 5, Total: 100},
		},
	}
}

func newTestService(repo *memoryInvoiceRepo, src staticOrders) *Service {
	catalog := staticCatalog{1: {ID: 1, Name: "Widget", Price: 5, Cost: 3}}
	return NewService(repo, catalog, &memoryDirectory{}, src, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGenerateCopiesOrderVerbatim(t *testing.T) {
	repo := newMemoryInvoiceRepo()
	svc := newTestService(repo, staticOrders{10: confirmedOrder()})

	invoice, err := svc.GenerateFromSalesOrder(context.Background(), 10, GenerateOptions{})
	require.NoError(t, err)

	require.Equal(t, StatusPaid, invoice.Status)
	require.Equal(t, 105.0, invoice.Total)
	require.Equal(t, 105.0, invoice.PaidAmount, "generated invoice is pre-settled")
	require.Equal(t, "Acme", invoice.CustomerName)
	require.Len(t, invoice.Items, 1)
	require.Equal(t, "Widget", invoice.Items[0].ProductName)
	require.Contains(t, invoice.Notes, "SO-2026-000042")
	require.Contains(t, invoice.InvoiceNumber, "INV-")
	require.WithinDuration(t, invoice.InvoiceDate.AddDate(0, 0, 30), invoice.DueDate, time.Second)
}

func TestGenerateRejectsPendingOrder(t *testing.T) {
	order := confirmedOrder()
	order.Status = orders.StatusPending
	svc := newTestService(newMemoryInvoiceRepo(), staticOrders{10: order})

	_, err := svc.GenerateFromSalesOrder(context.Background(), 10, GenerateOptions{})
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestGenerateUnknownOrderNotFound(t *testing.T) {
	svc := newTestService(newMemoryInvoiceRepo(), staticOrders{})

	_, err := svc.GenerateFromSalesOrder(context.Background(), 99, GenerateOptions{})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGenerateTwiceReturnsExisting(t *testing.T) {
	repo := newMemoryInvoiceRepo()
	svc := newTestService(repo, staticOrders{10: confirmedOrder()})

	first, err := svc.GenerateFromSalesOrder(context.Background(), 10, GenerateOptions{})
	require.NoError(t, err)

	second, err := svc.GenerateFromSalesOrder(context.Background(), 10, GenerateOptions{})
	require.ErrorIs(t, err, shared.ErrConflict)
	require.Equal(t, first.ID, second.ID, "conflict must hand back the existing invoice")
	require.Len(t, repo.invoices, 1)
}

func TestGenerateRaceLoserReturnsWinner(t *testing.T) {
	winner := Invoice{ID: 7, InvoiceNumber: "INV-2026-000007", Status: StatusPaid, Total: 105}
	orderID := int64(10)
	winner.SalesOrderID = &orderID

	repo := &racingInvoiceRepo{memoryInvoiceRepo: newMemoryInvoiceRepo(), winner: winner}
	catalog := staticCatalog{1: {ID: 1, Name: "Widget", Price: 5, Cost: 3}}
	svc := NewService(repo, catalog, &memoryDirectory{}, staticOrders{10: confirmedOrder()}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	got, err := svc.GenerateFromSalesOrder(context.Background(), 10, GenerateOptions{})
	require.ErrorIs(t, err, shared.ErrConflict)
	require.Equal(t, winner.ID, got.ID, "loser must surface the committed invoice")
	require.Len(t, repo.invoices, 1)
}

func TestGenerateHonoursOverrides(t *testing.T) {
	svc := newTestService(newMemoryInvoiceRepo(), staticOrders{10: confirmedOrder()})

	invoiceDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	dueDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	invoice, err := svc.GenerateFromSalesOrder(context.Background(), 10, GenerateOptions{
		InvoiceDate: &invoiceDate,
		DueDate:     &dueDate,
		Notes:       "net 10",
	})
	require.NoError(t, err)
	require.Equal(t, invoiceDate, invoice.InvoiceDate)
	require.Equal(t, dueDate, invoice.DueDate)
	require.Equal(t, "net 10", invoice.Notes)
}

func TestManualInvoiceDefaults(t *testing.T) {
	repo := newMemoryInvoiceRepo()
	svc := newTestService(repo, staticOrders{})

	invoice, err := svc.Create(context.Background(), Input{
		CustomerName: "Acme",
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, StatusUnpaid, invoice.Status)
	require.Equal(t, 10.0, invoice.Subtotal)
	require.Equal(t, 0.0, invoice.PaidAmount)
	require.WithinDuration(t, invoice.InvoiceDate.AddDate(0, 0, 30), invoice.DueDate, time.Second)
}

func TestUpdateKeepsPaidAmountWhenOmitted(t *testing.T) {
	repo := newMemoryInvoiceRepo()
	svc := newTestService(repo, staticOrders{})

	paid := 40.0
	invoice, err := svc.Create(context.Background(), Input{
		CustomerName: "Acme",
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 10}},
		PaidAmount:   &paid,
		Status:       StatusPartial,
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), invoice.ID, Input{
		CustomerName: "Acme",
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 12}},
	})
	require.NoError(t, err)
	require.Equal(t, 40.0, updated.PaidAmount, "omitted paid amount must carry over")

	zero := 0.0
	updated, err = svc.Update(context.Background(), invoice.ID, Input{
		CustomerName: "Acme",
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 12}},
		PaidAmount:   &zero,
	})
	require.NoError(t, err)
	require.Equal(t, 0.0, updated.PaidAmount, "explicit zero must still reset")
}

func TestMarkOverdueFlipsPastDue(t *testing.T) {
	repo := newMemoryInvoiceRepo()
	svc := newTestService(repo, staticOrders{})

	past := time.Now().AddDate(0, 0, -1)
	future := time.Now().AddDate(0, 0, 5)
	repo.invoices[1] = Invoice{ID: 1, Status: StatusUnpaid, DueDate: past}
	repo.invoices[2] = Invoice{ID: 2, Status: StatusPartial, DueDate: past}
	repo.invoices[3] = Invoice{ID: 3, Status: StatusPaid, DueDate: past}
	repo.invoices[4] = Invoice{ID: 4, Status: StatusUnpaid, DueDate: future}

	n, err := svc.MarkOverdue(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
	require.Equal(t, StatusOverdue, repo.invoices[1].Status)
	require.Equal(t, StatusOverdue, repo.invoices[2].Status)
	require.Equal(t, StatusPaid, repo.invoices[3].Status)
	require.Equal(t, StatusUnpaid, repo.invoices[4].Status)
}
