package invoices

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/marufrahmandev/inventory-management-system/internal/platform/httpx"
	"github.com/marufrahmandev/inventory-management-system/internal/pricing"
	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

// Handler exposes invoice endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the invoices handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/next-number", h.NextNumber)
	r.Get("/by-sales-order/{id}", h.BySalesOrder)
	r.Post("/from-sales-order/{id}", h.Generate)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type itemRequest struct {
	ProductID int64    `json:"productId" validate:"required,gt=0"`
	Quantity  float64  `json:"quantity" validate:"required,gte=1"`
	Price     *float64 `json:"price" validate:"omitempty,gte=0"`
}

type invoiceRequest struct {
	CustomerID      *int64        `json:"customerId" validate:"omitempty,gt=0"`
	CustomerName    string        `json:"customerName" validate:"omitempty,max=200"`
	CustomerEmail   string        `json:"customerEmail" validate:"omitempty,email"`
	CustomerPhone   string        `json:"customerPhone" validate:"omitempty,max=50"`
	CustomerAddress string        `json:"customerAddress" validate:"omitempty,max=500"`
	InvoiceDate     *time.Time    `json:"invoiceDate"`
	DueDate         *time.Time    `json:"dueDate"`
	Items           []itemRequest `json:"items" validate:"required,min=1,dive"`
	Subtotal        *float64      `json:"subtotal"`
	Tax             *float64      `json:"tax"`
	Discount        *float64      `json:"discount"`
	Total           *float64      `json:"total"`
	PaidAmount      *float64      `json:"paidAmount" validate:"omitempty,gte=0"`
	Status          string        `json:"status" validate:"omitempty,oneof=paid unpaid partial overdue"`
	PaymentMethod   string        `json:"paymentMethod" validate:"omitempty,max=100"`
	Notes           string        `json:"notes" validate:"omitempty,max=2000"`
}

type generateRequest struct {
	InvoiceDate *time.Time `json:"invoiceDate"`
	DueDate     *time.Time `json:"dueDate"`
	Notes       string     `json:"notes" validate:"omitempty,max=2000"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := listFilters(r)
	invoices, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list invoices failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      invoices,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid invoice id", "")
		return
	}
	invoice, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

func (h *Handler) BySalesOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid sales order id", "")
		return
	}
	invoice, err := h.service.FindBySalesOrder(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

func (h *Handler) NextNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.service.NextNumber(r.Context())
	if err != nil {
		h.logger.Error("preview invoice number failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"nextNumber": number})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	invoice, err := h.service.Create(r.Context(), toInput(req))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoice)
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid sales order id", "")
		return
	}
	var req generateRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
		if err := h.validator.Struct(req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "validation failed", err.Error())
			return
		}
	}

	invoice, err := h.service.GenerateFromSalesOrder(r.Context(), id, GenerateOptions{
		InvoiceDate: req.InvoiceDate,
		DueDate:     req.DueDate,
		Notes:       req.Notes,
	})
	if err != nil {
		if errors.Is(err, shared.ErrConflict) && invoice.ID != 0 {
			httpx.ErrorWithData(w, http.StatusBadRequest,
				"an invoice already exists for this sales order", invoice)
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoice)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid invoice id", "")
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	invoice, err := h.service.Update(r.Context(), id, toInput(req))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid invoice id", "")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (invoiceRequest, bool) {
	var req invoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body", err.Error())
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "validation failed", err.Error())
		return req, false
	}
	return req, true
}

func toInput(req invoiceRequest) Input {
	items := make([]pricing.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, pricing.ItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return Input{
		CustomerID:      req.CustomerID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		InvoiceDate:     req.InvoiceDate,
		DueDate:         req.DueDate,
		Items:           items,
		Totals: pricing.ExplicitTotals{
			Subtotal: req.Subtotal,
			Tax:      req.Tax,
			Discount: req.Discount,
			Total:    req.Total,
		},
		PaidAmount:    req.PaidAmount,
		Status:        req.Status,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func listFilters(r *http.Request) ListFilters {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	filters := ListFilters{
		Page:   page,
		Limit:  limit,
		Search: r.URL.Query().Get("search"),
		Status: r.URL.Query().Get("status"),
	}
	if raw := r.URL.Query().Get("startDate"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filters.StartDate = &t
		}
	}
	if raw := r.URL.Query().Get("endDate"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filters.EndDate = &t
		}
	}
	return filters
}
