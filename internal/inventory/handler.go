package inventory

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/marufrahmandev/inventory-management-system/internal/platform/httpx"
	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

// Handler exposes stock-ledger endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the inventory handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/entries", h.ListMovements)
	r.Post("/entries", h.RecordEntry)
	r.Get("/low-stock", h.LowStock)
}

type entryRequest struct {
	ProductID int64   `json:"productId" validate:"required,gt=0"`
	Quantity  float64 `json:"quantity" validate:"required"`
	Type      string  `json:"type" validate:"required,oneof=in out adjust"`
	Reference string  `json:"reference" validate:"omitempty,max=100"`
	Notes     string  `json:"notes" validate:"omitempty,max=2000"`
}

func (h *Handler) RecordEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	movement, err := h.service.RecordEntry(r.Context(), EntryInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Type:      req.Type,
		Reference: req.Reference,
		Notes:     req.Notes,
	})
	if err != nil {
		h.logger.Error("record stock entry failed", "error", err, "product_id", req.ProductID)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, movement)
}

func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	filters := movementFilters(r)
	movements, total, err := h.service.ListMovements(r.Context(), filters)
	if err != nil {
		h.logger.Error("list stock movements failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      movements,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.LowStock(r.Context())
	if err != nil {
		h.logger.Error("low stock lookup failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func movementFilters(r *http.Request) MovementFilters {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	filters := MovementFilters{
		Page:   page,
		Limit:  limit,
		Reason: r.URL.Query().Get("reason"),
	}
	if raw := r.URL.Query().Get("productId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.ProductID = &id
		}
	}
	return filters
}
