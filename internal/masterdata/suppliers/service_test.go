package suppliers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	mdshared "github.com/marufrahmandev/inventory-management-system/internal/masterdata/shared"
	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

type memorySupplierRepo struct {
	suppliers map[int64]Supplier
	nextID    int64
}

func newMemorySupplierRepo() *memorySupplierRepo {
	return &memorySupplierRepo{suppliers: map[int64]Supplier{}, nextID: 1}
}

func (r *memorySupplierRepo) List(_ context.Context, _ mdshared.ListFilters) ([]Supplier, int, error) {
	var out []Supplier
	for _, s := range r.suppliers {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (r *memorySupplierRepo) Get(_ context.Context, id int64) (Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return Supplier{}, shared.ErrNotFound
	}
	return s, nil
}

func (r *memorySupplierRepo) FindByName(_ context.Context, name string) (Supplier, error) {
	for _, s := range r.suppliers {
		if s.Name == name {
			return s, nil
		}
	}
	return Supplier{}, shared.ErrNotFound
}

func (r *memorySupplierRepo) Create(_ context.Context, supplier Supplier) (Supplier, error) {
	supplier.ID = r.nextID
	r.nextID++
	r.suppliers[supplier.ID] = supplier
	return supplier, nil
}

func (r *memorySupplierRepo) Update(_ context.Context, id int64, supplier Supplier) error {
	if _, ok := r.suppliers[id]; !ok {
		return shared.ErrNotFound
	}
	supplier.ID = id
	r.suppliers[id] = supplier
	return nil
}

func (r *memorySupplierRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.suppliers[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.suppliers, id)
	return nil
}

func TestCreateDefaultsStatus(t *testing.T) {
	svc := NewService(newMemorySupplierRepo())

	created, err := svc.Create(context.Background(), Supplier{Name: "  Globex  "})
	require.NoError(t, err)
	require.Equal(t, "Globex", created.Name)
	require.Equal(t, StatusActive, created.Status)
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newMemorySupplierRepo())

	_, err := svc.Create(context.Background(), Supplier{Name: "Globex", Status: "dormant"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateRejectsBlankName(t *testing.T) {
	svc := NewService(newMemorySupplierRepo())

	_, err := svc.Create(context.Background(), Supplier{Name: "   "})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateUnknownSupplier(t *testing.T) {
	svc := NewService(newMemorySupplierRepo())

	_, err := svc.Update(context.Background(), 42, Supplier{Name: "Globex"})
	require.ErrorIs(t, err, shared.ErrNotFound)
}
