package orders

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marufrahmandev/inventory-management-system/internal/docnum"
	"github.com/marufrahmandev/inventory-management-system/internal/inventory"
	"github.com/marufrahmandev/inventory-management-system/internal/pricing"
	"github.com/marufrahmandev/inventory-management-system/internal/sales/customers"
	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

type memoryOrderRepo struct {
	orders  map[int64]SalesOrder
	nextID  int64
	seq     int
	applied []inventory.Delta
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{orders: map[int64]SalesOrder{}}
}

func (r *memoryOrderRepo) List(context.Context, ListFilters) ([]SalesOrder, int, error) {
	var out []SalesOrder
	for _, o := range r.orders {
		out = append(out, o)
	}
	return out, len(out), nil
}

func (r *memoryOrderRepo) Get(_ context.Context, id int64) (SalesOrder, error) {
	o, ok := r.orders[id]
	if !ok {
		return SalesOrder{}, shared.ErrNotFound
	}
	return o, nil
}

func (r *memoryOrderRepo) Create(_ context.Context, order *SalesOrder, deltas []inventory.Delta) error {
	r.nextID++
	r.seq++
	order.ID = r.nextID
	order.OrderNumber = docnum.Format(docnum.PrefixSalesOrder, time.Now().Year(), r.seq)
	r.orders[order.ID] = *order
	r.applied = append(r.applied, deltas...)
	return nil
}

func (r *memoryOrderRepo) Update(_ context.Context, order *SalesOrder, deltas []inventory.Delta) error {
	if _, ok := r.orders[order.ID]; !ok {
		return shared.ErrNotFound
	}
	r.orders[order.ID] = *order
	r.applied = append(r.applied, deltas...)
	return nil
}

func (r *memoryOrderRepo) Delete(_ context.Context, id int64, deltas []inventory.Delta) error {
	if _, ok := r.orders[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.orders, id)
	r.applied = append(r.applied, deltas...)
	return nil
}

func (r *memoryOrderRepo) PeekNextNumber(context.Context) (string, error) {
	return docnum.Format(docnum.PrefixSalesOrder, time.Now().Year(), r.seq+1), nil
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

type memoryDirectory struct {
	customers map[int64]customers.Customer
	nextID    int64
	createErr error
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
	if d.createErr != nil {
		return customers.Customer{}, d.createErr
	}
	d.nextID++
	c.ID = d.nextID
	if d.customers == nil {
		d.customers = map[int64]customers.Customer{}
	}
	d.customers[c.ID] = c
	return c, nil
}

func newTestService(repo *memoryOrderRepo, catalog staticCatalog, dir *memoryDirectory) *Service {
	return NewService(repo, catalog, dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testCatalog() staticCatalog {
	return staticCatalog{
		1: {ID: 1, Name: "Widget", Price: 5, Cost: 3},
		2: {ID: 2, Name: "Gadget", Price: 12.5, Cost: 8},
	}
}

func TestCreateTakesNoStockEffect(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := newTestService(repo, testCatalog(), &memoryDirectory{})

	order, err := svc.Create(context.Background(), Input{
		CustomerName: "Acme",
		Status:       StatusConfirmed,
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 3}},
	})
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, order.Status)
	require.Empty(t, repo.applied, "creating an order must not move stock")
	require.Contains(t, order.OrderNumber, "SO-")
}

func TestConfirmDecrementsStock(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := newTestService(repo, testCatalog(), &memoryDirectory{})

	order, err := svc.Create(context.Background(), Input{
		CustomerName: "Acme",
		Items: []pricing.ItemInput{
			{ProductID: 1, Quantity: 3},
			{ProductID: 2, Quantity: 1},
		},
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), order.ID, Input{
		CustomerName: "Acme",
		Status:       StatusConfirmed,
		Items: []pricing.ItemInput{
			{ProductID: 1, Quantity: 3},
			{ProductID: 2, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, repo.applied, 2)
	require.Equal(t, float64(-3), repo.applied[0].Quantity)
	require.Equal(t, float64(-1), repo.applied[1].Quantity)
	require.Equal(t, inventory.ReasonSale, repo.applied[0].Reason)
}

func TestConfirmedToCompletedMovesNothing(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := newTestService(repo, testCatalog(), &memoryDirectory{})

	order, err := svc.Create(context.Background(), Input{
		CustomerName: "Acme",
		Status:       StatusConfirmed,
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), order.ID, Input{
		CustomerName: "Acme",
		Status:       StatusCompleted,
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	require.Empty(t, repo.applied, "moving within confirmed/completed must not re-claim stock")
}

func TestCancelRestoresStock(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := newTestService(repo, testCatalog(), &memoryDirectory{})

	order, err := svc.Create(context.Background(), Input{
		CustomerName: "Acme",
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 4}},
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), order.ID, Input{
		CustomerName: "Acme",
		Status:       StatusConfirmed,
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 4}},
	})
	require.NoError(t, err)
	repo.applied = nil

	_, err = svc.Update(context.Background(), order.ID, Input{
		CustomerName: "Acme",
		Status:       StatusCancelled,
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 4}},
	})
	require.NoError(t, err)
	require.Len(t, repo.applied, 1)
	require.Equal(t, float64(4), repo.applied[0].Quantity)
	require.Equal(t, inventory.ReasonSaleRestored, repo.applied[0].Reason)
}

func TestCancelFromPendingMovesNothing(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := newTestService(repo, testCatalog(), &memoryDirectory{})

	order, err := svc.Create(context.Background(), Input{
		CustomerName: "Acme",
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 4}},
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), order.ID, Input{
		CustomerName: "Acme",
		Status:       StatusCancelled,
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 4}},
	})
	require.NoError(t, err)
	require.Empty(t, repo.applied)
}

func TestDeleteCompensatesStock(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := newTestService(repo, testCatalog(), &memoryDirectory{})

	order, err := svc.Create(context.Background(), Input{
		CustomerName: "Acme",
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), order.ID, Input{
		CustomerName: "Acme",
		Status:       StatusCompleted,
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	repo.applied = nil

	require.NoError(t, svc.Delete(context.Background(), order.ID))
	require.Len(t, repo.applied, 1)
	require.Equal(t, float64(2), repo.applied[0].Quantity)
	require.Equal(t, inventory.ReasonOrderDeleted, repo.applied[0].Reason)

	_, err = svc.Get(context.Background(), order.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestTotalsExplicitFieldWins(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := newTestService(repo, testCatalog(), &memoryDirectory{})

	tax := 10.0
	order, err := svc.Create(context.Background(), Input{
		CustomerName: "Acme",
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 5}},
		Totals:       pricing.ExplicitTotals{Tax: &tax},
	})
	require.NoError(t, err)
	require.Equal(t, 25.0, order.Subtotal)
	require.Equal(t, 10.0, order.Tax)
	require.Equal(t, 35.0, order.Total)
}

func TestMissingProductFailsBeforePersist(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := newTestService(repo, testCatalog(), &memoryDirectory{})

	_, err := svc.Create(context.Background(), Input{
		CustomerName: "Acme",
		Items: []pricing.ItemInput{
			{ProductID: 1, Quantity: 1},
			{ProductID: 99, Quantity: 1},
		},
	})
	require.ErrorIs(t, err, shared.ErrInvalidReference)
	require.Empty(t, repo.orders)
	require.Empty(t, repo.applied)
}

func TestSnapshotFromCustomerID(t *testing.T) {
	repo := newMemoryOrderRepo()
	dir := &memoryDirectory{customers: map[int64]customers.Customer{
		7: {ID: 7, Name: "Globex", Email: "buy@globex.test", Phone: "555", Address: "1 Way"},
	}}
	svc := newTestService(repo, testCatalog(), dir)

	id := int64(7)
	order, err := svc.Create(context.Background(), Input{
		CustomerID: &id,
		Items:      []pricing.ItemInput{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Equal(t, "Globex", order.CustomerName)
	require.Equal(t, "buy@globex.test", order.CustomerEmail)

	// Editing the customer later must not change the stored snapshot.
	dir.customers[7] = customers.Customer{ID: 7, Name: "Renamed"}
	stored, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, "Globex", stored.CustomerName)
}

func TestSnapshotUnknownCustomerRejected(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := newTestService(repo, testCatalog(), &memoryDirectory{})

	id := int64(123)
	_, err := svc.Create(context.Background(), Input{
		CustomerID: &id,
		Items:      []pricing.ItemInput{{ProductID: 1, Quantity: 1}},
	})
	require.ErrorIs(t, err, shared.ErrInvalidReference)
}

func TestSnapshotAutoCreateFailureDegrades(t *testing.T) {
	repo := newMemoryOrderRepo()
	dir := &memoryDirectory{createErr: errors.New("db down")}
	svc := newTestService(repo, testCatalog(), dir)

	order, err := svc.Create(context.Background(), Input{
		CustomerName:  "Walk-in",
		CustomerPhone: "777",
		Items:         []pricing.ItemInput{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err, "auto-create failure must degrade, not fail the order")
	require.Nil(t, order.CustomerID)
	require.Equal(t, "Walk-in", order.CustomerName)
	require.Equal(t, "777", order.CustomerPhone)
}

func TestUpdateKeepsOrderDateWhenOmitted(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := newTestService(repo, testCatalog(), &memoryDirectory{})

	placed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	order, err := svc.Create(context.Background(), Input{
		CustomerName: "Acme",
		OrderDate:    &placed,
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), order.ID, Input{
		CustomerName: "Acme",
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, placed, updated.OrderDate, "omitted order date must carry over")
}

func TestSnapshotReusesCustomerByName(t *testing.T) {
	repo := newMemoryOrderRepo()
	dir := &memoryDirectory{}
	svc := newTestService(repo, testCatalog(), dir)

	first, err := svc.Create(context.Background(), Input{
		CustomerName: "Acme",
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	require.NotNil(t, first.CustomerID)

	second, err := svc.Update(context.Background(), first.ID, Input{
		CustomerName: "acme",
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 5}},
	})
	require.NoError(t, err)
	require.NotNil(t, second.CustomerID)
	require.Equal(t, *first.CustomerID, *second.CustomerID)
	require.Len(t, dir.customers, 1, "repeated names must not mint duplicate customers")
}

func TestMissingCustomerNameRejected(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := newTestService(repo, testCatalog(), &memoryDirectory{})

	_, err := svc.Create(context.Background(), Input{
		Items: []pricing.ItemInput{{ProductID: 1, Quantity: 1}},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}
