package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	calls int
}

func (s *stubRepo) CountProducts(context.Context) (int, error)  { s.calls++; return 12, nil }
func (s *stubRepo) CountCustomers(context.Context) (int, error) { return 4, nil }
func (s *stubRepo) CountSuppliers(context.Context) (int, error) { return 3, nil }
func (s *stubRepo) CountLowStock(context.Context) (int, error)  { return 2, nil }
func (s *stubRepo) CountOutOfStock(context.Context) (int, error) {
	return 1, nil
}

func (s *stubRepo) SalesTotal(context.Context, Period) (float64, int, error) {
	return 1500, 7, nil
}

func (s *stubRepo) PurchaseTotal(context.Context, Period) (float64, int, error) {
	return 900, 3, nil
}

func (s *stubRepo) OutstandingInvoiceTotal(context.Context) (float64, error) {
	return 250, nil
}

func (s *stubRepo) SalesByStatus(context.Context, Period) ([]StatusSlice, error) {
	return []StatusSlice{{Status: "completed", Count: 7, Total: 1500}}, nil
}

func (s *stubRepo) PurchasesByStatus(context.Context, Period) ([]StatusSlice, error) {
	return []StatusSlice{{Status: "received", Count: 3, Total: 900}}, nil
}

func (s *stubRepo) TopSellingProducts(context.Context, Period, int) ([]ProductSlice, error) {
	return []ProductSlice{{ProductID: 1, Name: "Widget", Quantity: 30, Total: 150}}, nil
}

func (s *stubRepo) StockValuation(context.Context) (float64, float64, error) {
	return 400, 700, nil
}

func (s *stubRepo) InvoicesByStatus(context.Context, Period) ([]StatusSlice, error) {
	return []StatusSlice{{Status: "unpaid", Count: 2, Total: 250}}, nil
}

func TestDashboardAggregates(t *testing.T) {
	svc := NewService(&stubRepo{}, nil)

	summary, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, 12, summary.Products)
	require.Equal(t, 4, summary.Customers)
	require.Equal(t, 1500.0, summary.MonthSalesTotal)
	require.Equal(t, 7, summary.MonthSalesOrders)
	require.Equal(t, 250.0, summary.OutstandingInvoices)
}

func TestDashboardUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &stubRepo{}
	svc := NewService(repo, NewCache(client, time.Minute))

	_, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	first := repo.calls

	summary, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, repo.calls, "second call must be served from cache")
	require.Equal(t, 12, summary.Products)

	mr.FastForward(2 * time.Minute)
	_, err = svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Greater(t, repo.calls, first, "expired cache must recompute")
}

func TestSalesReportEchoesPeriod(t *testing.T) {
	svc := NewService(&stubRepo{}, nil)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	report, err := svc.Sales(context.Background(), Period{From: from, To: to})
	require.NoError(t, err)
	require.Equal(t, 7, report.TotalOrders)
	require.NotNil(t, report.Period.From)
	require.Equal(t, from, *report.Period.From)
	require.Len(t, report.TopProducts, 1)
}

func TestInventoryReport(t *testing.T) {
	svc := NewService(&stubRepo{}, nil)

	report, err := svc.Inventory(context.Background())
	require.NoError(t, err)
	require.Equal(t, 12, report.TotalProducts)
	require.Equal(t, 1, report.OutOfStock)
	require.Equal(t, 400.0, report.StockCost)
	require.Equal(t, 700.0, report.StockRetail)
}
