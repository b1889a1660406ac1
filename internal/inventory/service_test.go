package inventory

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

type memoryLedger struct {
	recorded []Delta
	low      []LowStockProduct
}

func (m *memoryLedger) RecordEntry(_ context.Context, delta Delta) (Movement, error) {
	m.recorded = append(m.recorded, delta)
	return Movement{
		ID:        int64(len(m.recorded)),
		ProductID: delta.ProductID,
		Quantity:  delta.Quantity,
		Reason:    delta.Reason,
		Reference: delta.Reference,
		Notes:     delta.Notes,
	}, nil
}

func (m *memoryLedger) ListMovements(context.Context, MovementFilters) ([]Movement, int, error) {
	return nil, 0, nil
}

func (m *memoryLedger) LowStock(context.Context) ([]LowStockProduct, error) {
	return m.low, nil
}

func newTestService(ledger *memoryLedger) *Service {
	return NewService(ledger, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestEntryInAddsStock(t *testing.T) {
	ledger := &memoryLedger{}
	svc := newTestService(ledger)

	movement, err := svc.RecordEntry(context.Background(), EntryInput{
		ProductID: 1, Quantity: 5, Type: EntryIn,
	})
	require.NoError(t, err)
	require.Equal(t, float64(5), movement.Quantity)
	require.Equal(t, ReasonManualIn, movement.Reason)
}

func TestEntryGetsGeneratedReference(t *testing.T) {
	ledger := &memoryLedger{}
	svc := newTestService(ledger)

	movement, err := svc.RecordEntry(context.Background(), EntryInput{
		ProductID: 1, Quantity: 5, Type: EntryIn,
	})
	require.NoError(t, err)
	require.NotEmpty(t, movement.Reference)

	movement, err = svc.RecordEntry(context.Background(), EntryInput{
		ProductID: 1, Quantity: 5, Type: EntryIn, Reference: "PO-2025-000001",
	})
	require.NoError(t, err)
	require.Equal(t, "PO-2025-000001", movement.Reference)
}

func TestEntryOutRemovesStock(t *testing.T) {
	ledger := &memoryLedger{}
	svc := newTestService(ledger)

	movement, err := svc.RecordEntry(context.Background(), EntryInput{
		ProductID: 1, Quantity: 5, Type: EntryOut,
	})
	require.NoError(t, err)
	require.Equal(t, float64(-5), movement.Quantity)
	require.Equal(t, ReasonManualOut, movement.Reason)
}

func TestEntryAdjustKeepsSign(t *testing.T) {
	ledger := &memoryLedger{}
	svc := newTestService(ledger)

	movement, err := svc.RecordEntry(context.Background(), EntryInput{
		ProductID: 1, Quantity: -3, Type: EntryAdjust,
	})
	require.NoError(t, err)
	require.Equal(t, float64(-3), movement.Quantity)
	require.Equal(t, ReasonManualAdjust, movement.Reason)
}

func TestEntryValidation(t *testing.T) {
	svc := newTestService(&memoryLedger{})

	_, err := svc.RecordEntry(context.Background(), EntryInput{ProductID: 1, Quantity: 0, Type: EntryIn})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.RecordEntry(context.Background(), EntryInput{ProductID: 1, Quantity: -2, Type: EntryIn})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.RecordEntry(context.Background(), EntryInput{ProductID: 1, Quantity: 2, Type: "bogus"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestScanLowStockCountsProducts(t *testing.T) {
	ledger := &memoryLedger{low: []LowStockProduct{
		{ID: 1, Name: "Widget", Stock: 0, MinStock: 5},
		{ID: 2, Name: "Gadget", Stock: 2, MinStock: 2},
	}}
	svc := newTestService(ledger)

	n, err := svc.ScanLowStock(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
}
