package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marufrahmandev/inventory-management-system/internal/auth"
	"github.com/marufrahmandev/inventory-management-system/internal/inventory"
	"github.com/marufrahmandev/inventory-management-system/internal/invoices"
	"github.com/marufrahmandev/inventory-management-system/internal/masterdata/categories"
	"github.com/marufrahmandev/inventory-management-system/internal/masterdata/products"
	"github.com/marufrahmandev/inventory-management-system/internal/masterdata/suppliers"
	"github.com/marufrahmandev/inventory-management-system/internal/platform/httpx"
	"github.com/marufrahmandev/inventory-management-system/internal/procurement"
	"github.com/marufrahmandev/inventory-management-system/internal/reports"
	"github.com/marufrahmandev/inventory-management-system/internal/sales/customers"
	"github.com/marufrahmandev/inventory-management-system/internal/sales/orders"
	"github.com/marufrahmandev/inventory-management-system/internal/users"
	"github.com/marufrahmandev/inventory-management-system/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Config   *Config
	Auth     auth.Middleware
	Handlers Handlers
}

// Handlers collects the per-module HTTP handlers.
type Handlers struct {
	Auth        *auth.Handler
	Users       *users.Handler
	Categories  *categories.Handler
	Products    *products.Handler
	Suppliers   *suppliers.Handler
	Customers   *customers.Handler
	SalesOrders *orders.Handler
	Procurement *procurement.Handler
	Invoices    *invoices.Handler
	Inventory   *inventory.Handler
	Reports     *reports.Handler
	Jobs        *jobs.Handler
}

// BuildRouter assembles the chi router. Reads stay open; every mutating
// endpoint requires a bearer token, and user management is admin only.
func BuildRouter(params RouterParams, middleware []func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	for _, mw := range middleware {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", params.Handlers.Auth.MountRoutes)

	guard := writeGuard(params.Auth)
	mount := func(pattern string, fn func(chi.Router)) {
		r.Route(pattern, func(r chi.Router) {
			r.Use(guard)
			fn(r)
		})
	}

	mount("/categories", params.Handlers.Categories.MountRoutes)
	mount("/products", params.Handlers.Products.MountRoutes)
	mount("/suppliers", params.Handlers.Suppliers.MountRoutes)
	mount("/customers", params.Handlers.Customers.MountRoutes)
	mount("/sales-orders", params.Handlers.SalesOrders.MountRoutes)
	mount("/purchase-orders", params.Handlers.Procurement.MountRoutes)
	mount("/invoices", params.Handlers.Invoices.MountRoutes)
	mount("/inventory", params.Handlers.Inventory.MountRoutes)

	r.Route("/reports", params.Handlers.Reports.MountRoutes)

	r.Route("/users", func(r chi.Router) {
		r.Use(params.Auth.RequireRole(auth.RoleAdmin))
		params.Handlers.Users.MountRoutes(r)
	})

	if params.Handlers.Jobs != nil {
		r.Route("/jobs", params.Handlers.Jobs.MountRoutes)
	}

	return r
}

// writeGuard enforces bearer-token auth on mutating methods only.
func writeGuard(mw auth.Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
			default:
				mw.RequireAuth(next).ServeHTTP(w, r)
			}
		})
	}
}
