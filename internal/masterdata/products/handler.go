package products

import (
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	mdshared "github.com/marufrahmandev/inventory-management-system/internal/masterdata/shared"
	"github.com/marufrahmandev/inventory-management-system/internal/platform/httpx"
	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

const maxImageUpload = 8 << 20

// Handler exposes product endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the products handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/image", h.UploadImage)
	r.Post("/{id}/gallery", h.AddGalleryImage)
	r.Delete("/{id}/gallery/{imageID}", h.RemoveGalleryImage)
}

type productRequest struct {
	Name       string  `json:"name" validate:"required,max=200"`
	CategoryID *int64  `json:"categoryId" validate:"omitempty,gt=0"`
	SKU        string  `json:"sku" validate:"required,max=100"`
	Barcode    string  `json:"barcode" validate:"omitempty,max=100"`
	Price      float64 `json:"price" validate:"gte=0"`
	Cost       float64 `json:"cost" validate:"gte=0"`
	Stock      int     `json:"stock"`
	MinStock   int     `json:"minStock" validate:"gte=0"`
	Unit       string  `json:"unit" validate:"omitempty,max=50"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := listFilters(r)
	products, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list products failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      products,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid product id", "")
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	product, err := h.service.Create(r.Context(), fromRequest(req))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid product id", "")
		return
	}
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	product, err := h.service.Update(r.Context(), id, fromRequest(req))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid product id", "")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid product id", "")
		return
	}
	file, header, err := formImage(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "image file is required", err.Error())
		return
	}
	defer file.Close()

	product, err := h.service.AttachImage(r.Context(), id, header.Filename, file)
	if err != nil {
		h.logger.Error("attach product image failed", "error", err, "product_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) AddGalleryImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid product id", "")
		return
	}
	file, header, err := formImage(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "image file is required", err.Error())
		return
	}
	defer file.Close()

	img, err := h.service.AddGalleryImage(r.Context(), id, header.Filename, file)
	if err != nil {
		h.logger.Error("add gallery image failed", "error", err, "product_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, img)
}

func (h *Handler) RemoveGalleryImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid product id", "")
		return
	}
	imageID, err := strconv.ParseInt(chi.URLParam(r, "imageID"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid image id", "")
		return
	}
	if err := h.service.RemoveGalleryImage(r.Context(), id, imageID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": imageID})
}

func fromRequest(req productRequest) Product {
	return Product{
		Name:       req.Name,
		CategoryID: req.CategoryID,
		SKU:        req.SKU,
		Barcode:    req.Barcode,
		Price:      req.Price,
		Cost:       req.Cost,
		Stock:      float64(req.Stock),
		MinStock:   float64(req.MinStock),
		Unit:       req.Unit,
	}
}

func formImage(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		return nil, nil, err
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, nil, err
	}
	return file, header, nil
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func listFilters(r *http.Request) mdshared.ListFilters {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	filters := mdshared.ListFilters{
		Page:   page,
		Limit:  limit,
		Search: r.URL.Query().Get("search"),
	}
	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.CategoryID = &id
		}
	}
	if r.URL.Query().Get("lowStock") == "true" {
		filters.LowStock = true
	}
	return filters
}
