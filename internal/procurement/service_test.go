package procurement

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marufrahmandev/inventory-management-system/internal/inventory"
	"github.com/marufrahmandev/inventory-management-system/internal/masterdata/suppliers"
	"github.com/marufrahmandev/inventory-management-system/internal/pricing"
	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

type memoryPORepo struct {
	orders  map[int64]PurchaseOrder
	numbers map[string]bool
	nextID  int64
	applied []inventory.Delta
}

func newMemoryPORepo() *memoryPORepo {
	return &memoryPORepo{orders: map[int64]PurchaseOrder{}, numbers: map[string]bool{}}
}

func (r *memoryPORepo) List(context.Context, ListFilters) ([]PurchaseOrder, int, error) {
	var out []PurchaseOrder
	for _, o := range r.orders {
		out = append(out, o)
	}
	return out, len(out), nil
}

func (r *memoryPORepo) Get(_ context.Context, id int64) (PurchaseOrder, error) {
	o, ok := r.orders[id]
	if !ok {
		return PurchaseOrder{}, shared.ErrNotFound
	}
	return o, nil
}

func (r *memoryPORepo) Create(_ context.Context, order *PurchaseOrder, deltas []inventory.Delta) error {
	if r.numbers[order.OrderNumber] {
		return shared.ErrConflict
	}
	r.nextID++
	order.ID = r.nextID
	r.orders[order.ID] = *order
	r.numbers[order.OrderNumber] = true
	r.applied = append(r.applied, deltas...)
	return nil
}

func (r *memoryPORepo) Update(_ context.Context, order *PurchaseOrder, deltas []inventory.Delta) error {
	current, ok := r.orders[order.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if order.OrderNumber != current.OrderNumber && r.numbers[order.OrderNumber] {
		return shared.ErrConflict
	}
	delete(r.numbers, current.OrderNumber)
	r.numbers[order.OrderNumber] = true
	r.orders[order.ID] = *order
	r.applied = append(r.applied, deltas...)
	return nil
}

func (r *memoryPORepo) Delete(_ context.Context, id int64, deltas []inventory.Delta) error {
	o, ok := r.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	delete(r.numbers, o.OrderNumber)
	delete(r.orders, id)
	r.applied = append(r.applied, deltas...)
	return nil
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

type memorySuppliers struct {
	suppliers map[int64]suppliers.Supplier
	nextID    int64
}

func (d *memorySuppliers) Get(_ context.Context, id int64) (suppliers.Supplier, error) {
	s, ok := d.suppliers[id]
	if !ok {
		return suppliers.Supplier{}, shared.ErrNotFound
	}
	return s, nil
}

func (d *memorySuppliers) FindByName(_ context.Context, name string) (suppliers.Supplier, error) {
	for _, s := range d.suppliers {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return suppliers.Supplier{}, shared.ErrNotFound
}

func (d *memorySuppliers) Create(_ context.Context, s suppliers.Supplier) (suppliers.Supplier, error) {
	d.nextID++
	s.ID = d.nextID
	if d.suppliers == nil {
		d.suppliers = map[int64]suppliers.Supplier{}
	}
	d.suppliers[s.ID] = s
	return s, nil
}

func newTestService(repo *memoryPORepo) *Service {
	catalog := staticCatalog{
		1: {ID: 1, Name: "Widget", Price: 5, Cost: 3},
	}
	return NewService(repo, catalog, &memorySuppliers{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateReceivedIncrementsStock(t *testing.T) {
	repo := newMemoryPORepo()
	svc := newTestService(repo)

	order, err := svc.Create(context.Background(), Input{
		OrderNumber:  "PO-7001",
		SupplierName: "Initech",
		Status:       StatusReceived,
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 10}},
	})
	require.NoError(t, err)
	require.Equal(t, StatusReceived, order.Status)
	require.Len(t, repo.applied, 1)
	require.Equal(t, float64(10), repo.applied[0].Quantity)
	require.Equal(t, inventory.ReasonPurchase, repo.applied[0].Reason)
}

func TestCreatePendingMovesNothing(t *testing.T) {
	repo := newMemoryPORepo()
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), Input{
		OrderNumber:  "PO-7002",
		SupplierName: "Initech",
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 10}},
	})
	require.NoError(t, err)
	require.Empty(t, repo.applied)
}

func TestReceiveOnUpdateIncrementsStock(t *testing.T) {
	repo := newMemoryPORepo()
	svc := newTestService(repo)

	order, err := svc.Create(context.Background(), Input{
		OrderNumber:  "PO-7003",
		SupplierName: "Initech",
		Status:       StatusOrdered,
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 6}},
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), order.ID, Input{
		SupplierName: "Initech",
		Status:       StatusReceived,
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 6}},
	})
	require.NoError(t, err)
	require.Len(t, repo.applied, 1)
	require.Equal(t, float64(6), repo.applied[0].Quantity)
}

func TestCancelReceivedReversesStock(t *testing.T) {
	repo := newMemoryPORepo()
	svc := newTestService(repo)

	order, err := svc.Create(context.Background(), Input{
		OrderNumber:  "PO-7004",
		SupplierName: "Initech",
		Status:       StatusReceived,
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 6}},
	})
	require.NoError(t, err)
	repo.applied = nil

	_, err = svc.Update(context.Background(), order.ID, Input{
		SupplierName: "Initech",
		Status:       StatusCancelled,
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 6}},
	})
	require.NoError(t, err)
	require.Len(t, repo.applied, 1)
	require.Equal(t, float64(-6), repo.applied[0].Quantity)
	require.Equal(t, inventory.ReasonPurchaseUndo, repo.applied[0].Reason)
}

func TestDeleteReceivedCompensates(t *testing.T) {
	repo := newMemoryPORepo()
	svc := newTestService(repo)

	order, err := svc.Create(context.Background(), Input{
		OrderNumber:  "PO-7005",
		SupplierName: "Initech",
		Status:       StatusReceived,
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 3}},
	})
	require.NoError(t, err)
	repo.applied = nil

	require.NoError(t, svc.Delete(context.Background(), order.ID))
	require.Len(t, repo.applied, 1)
	require.Equal(t, float64(-3), repo.applied[0].Quantity)
}

func TestDuplicateNumberRejected(t *testing.T) {
	repo := newMemoryPORepo()
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), Input{
		OrderNumber:  "PO-7006",
		SupplierName: "Initech",
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), Input{
		OrderNumber:  "PO-7006",
		SupplierName: "Initech",
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 1}},
	})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestMissingNumberRejected(t *testing.T) {
	repo := newMemoryPORepo()
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), Input{
		SupplierName: "Initech",
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 1}},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateKeepsOrderDateWhenOmitted(t *testing.T) {
	repo := newMemoryPORepo()
	svc := newTestService(repo)

	placed := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	order, err := svc.Create(context.Background(), Input{
		OrderNumber:  "PO-7009",
		SupplierName: "Initech",
		OrderDate:    &placed,
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), order.ID, Input{
		SupplierName: "Initech",
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, placed, updated.OrderDate, "omitted order date must carry over")
}

func TestSnapshotReusesSupplierByName(t *testing.T) {
	repo := newMemoryPORepo()
	dir := &memorySuppliers{}
	catalog := staticCatalog{1: {ID: 1, Name: "Widget", Price: 5, Cost: 3}}
	svc := NewService(repo, catalog, dir, slog.New(slog.NewTextHandler(io.Discard, nil)))

	first, err := svc.Create(context.Background(), Input{
		OrderNumber:  "PO-7010",
		SupplierName: "Initech",
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)
	require.NotNil(t, first.SupplierID)

	second, err := svc.Create(context.Background(), Input{
		OrderNumber:  "PO-7011",
		SupplierName: "initech",
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	require.NotNil(t, second.SupplierID)
	require.Equal(t, *first.SupplierID, *second.SupplierID)
	require.Len(t, dir.suppliers, 1, "repeated names must not mint duplicate suppliers")
}

func TestCostBasisPricesPurchaseLines(t *testing.T) {
	repo := newMemoryPORepo()
	svc := newTestService(repo)

	order, err := svc.Create(context.Background(), Input{
		OrderNumber:  "PO-7007",
		SupplierName: "Initech",
		Items:        []pricing.ItemInput{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, 3.0, order.Items[0].Price)
	require.Equal(t, 6.0, order.Subtotal)
}
