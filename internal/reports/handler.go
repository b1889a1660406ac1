package reports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marufrahmandev/inventory-management-system/internal/platform/httpx"
)

// Handler exposes report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the reports handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard-summary", h.Dashboard)
	r.Get("/sales", h.Sales)
	r.Get("/purchase", h.Purchases)
	r.Get("/inventory", h.Inventory)
	r.Get("/invoices", h.Invoices)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("dashboard summary failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) Sales(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Sales(r.Context(), periodFrom(r))
	if err != nil {
		h.logger.Error("sales report failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) Purchases(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Purchases(r.Context(), periodFrom(r))
	if err != nil {
		h.logger.Error("purchase report failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) Inventory(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Inventory(r.Context())
	if err != nil {
		h.logger.Error("inventory report failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) Invoices(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Invoices(r.Context(), periodFrom(r))
	if err != nil {
		h.logger.Error("invoice report failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func periodFrom(r *http.Request) Period {
	var period Period
	if raw := r.URL.Query().Get("startDate"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			period.From = t
		}
	}
	if raw := r.URL.Query().Get("endDate"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			// Include the whole end day.
			period.To = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
	}
	return period
}
