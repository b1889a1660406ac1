package reports

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

const dashboardCacheKey = "reports:dashboard-summary"

// DashboardSummary is the landing-page aggregate.
type DashboardSummary struct {
	Products            int     `json:"products"`
	Customers           int     `json:"customers"`
	Suppliers           int     `json:"suppliers"`
	LowStockProducts    int     `json:"lowStockProducts"`
	MonthSalesTotal     float64 `json:"monthSalesTotal"`
	MonthSalesOrders    int     `json:"monthSalesOrders"`
	MonthPurchaseTotal  float64 `json:"monthPurchaseTotal"`
	MonthPurchaseOrders int     `json:"monthPurchaseOrders"`
	OutstandingInvoices float64 `json:"outstandingInvoices"`
}

// SalesReport summarises sales orders over a period.
type SalesReport struct {
	Period      ReportPeriod   `json:"period"`
	TotalOrders int            `json:"totalOrders"`
	TotalValue  float64        `json:"totalValue"`
	ByStatus    []StatusSlice  `json:"byStatus"`
	TopProducts []ProductSlice `json:"topProducts"`
}

// PurchaseReport summarises purchase orders over a period.
type PurchaseReport struct {
	Period      ReportPeriod  `json:"period"`
	TotalOrders int           `json:"totalOrders"`
	TotalValue  float64       `json:"totalValue"`
	ByStatus    []StatusSlice `json:"byStatus"`
}

// InventoryReport summarises the current stock position.
type InventoryReport struct {
	TotalProducts int     `json:"totalProducts"`
	LowStock      int     `json:"lowStock"`
	OutOfStock    int     `json:"outOfStock"`
	StockCost     float64 `json:"stockCost"`
	StockRetail   float64 `json:"stockRetail"`
}

// InvoiceReport summarises invoices over a period.
type InvoiceReport struct {
	Period      ReportPeriod  `json:"period"`
	ByStatus    []StatusSlice `json:"byStatus"`
	Outstanding float64       `json:"outstanding"`
}

// ReportPeriod echoes the requested window back to the client.
type ReportPeriod struct {
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
}

// Service coordinates aggregation queries with the cache layer.
type Service struct {
	repo  Repository
	cache *Cache
	now   func() time.Time
}

// NewService wires a Repository with a Cache helper.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// Dashboard returns the cached landing-page summary, computing it on a miss.
func (s *Service) Dashboard(ctx context.Context) (DashboardSummary, error) {
	var summary DashboardSummary
	err := s.cache.FetchJSON(ctx, dashboardCacheKey, &summary, func(ctx context.Context) (interface{}, error) {
		return s.buildDashboard(ctx)
	})
	return summary, err
}

func (s *Service) buildDashboard(ctx context.Context) (DashboardSummary, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	month := Period{From: monthStart, To: now}

	var summary DashboardSummary
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary.Products, err = s.repo.CountProducts(ctx)
		return err
	})
	g.Go(func() (err error) {
		summary.Customers, err = s.repo.CountCustomers(ctx)
		return err
	})
	g.Go(func() (err error) {
		summary.Suppliers, err = s.repo.CountSuppliers(ctx)
		return err
	})
	g.Go(func() (err error) {
		summary.LowStockProducts, err = s.repo.CountLowStock(ctx)
		return err
	})
	g.Go(func() (err error) {
		summary.MonthSalesTotal, summary.MonthSalesOrders, err = s.repo.SalesTotal(ctx, month)
		return err
	})
	g.Go(func() (err error) {
		summary.MonthPurchaseTotal, summary.MonthPurchaseOrders, err = s.repo.PurchaseTotal(ctx, month)
		return err
	})
	g.Go(func() (err error) {
		summary.OutstandingInvoices, err = s.repo.OutstandingInvoiceTotal(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return DashboardSummary{}, err
	}
	return summary, nil
}

// Sales builds the sales report for a period.
func (s *Service) Sales(ctx context.Context, period Period) (SalesReport, error) {
	report := SalesReport{Period: echo(period)}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		report.TotalValue, report.TotalOrders, err = s.repo.SalesTotal(ctx, period)
		return err
	})
	g.Go(func() (err error) {
		report.ByStatus, err = s.repo.SalesByStatus(ctx, period)
		return err
	})
	g.Go(func() (err error) {
		report.TopProducts, err = s.repo.TopSellingProducts(ctx, period, 5)
		return err
	})
	if err := g.Wait(); err != nil {
		return SalesReport{}, err
	}
	return report, nil
}

// Purchases builds the purchase report for a period.
func (s *Service) Purchases(ctx context.Context, period Period) (PurchaseReport, error) {
	report := PurchaseReport{Period: echo(period)}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		report.TotalValue, report.TotalOrders, err = s.repo.PurchaseTotal(ctx, period)
		return err
	})
	g.Go(func() (err error) {
		report.ByStatus, err = s.repo.PurchasesByStatus(ctx, period)
		return err
	})
	if err := g.Wait(); err != nil {
		return PurchaseReport{}, err
	}
	return report, nil
}

// Inventory builds the current stock position report.
func (s *Service) Inventory(ctx context.Context) (InventoryReport, error) {
	var report InventoryReport
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		report.TotalProducts, err = s.repo.CountProducts(ctx)
		return err
	})
	g.Go(func() (err error) {
		report.LowStock, err = s.repo.CountLowStock(ctx)
		return err
	})
	g.Go(func() (err error) {
		report.OutOfStock, err = s.repo.CountOutOfStock(ctx)
		return err
	})
	g.Go(func() (err error) {
		report.StockCost, report.StockRetail, err = s.repo.StockValuation(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return InventoryReport{}, err
	}
	return report, nil
}

// Invoices builds the invoice report for a period.
func (s *Service) Invoices(ctx context.Context, period Period) (InvoiceReport, error) {
	report := InvoiceReport{Period: echo(period)}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		report.ByStatus, err = s.repo.InvoicesByStatus(ctx, period)
		return err
	})
	g.Go(func() (err error) {
		report.Outstanding, err = s.repo.OutstandingInvoiceTotal(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return InvoiceReport{}, err
	}
	return report, nil
}

func echo(period Period) ReportPeriod {
	var p ReportPeriod
	if !period.From.IsZero() {
		from := period.From
		p.From = &from
	}
	if !period.To.IsZero() {
		to := period.To
		p.To = &to
	}
	return p
}
