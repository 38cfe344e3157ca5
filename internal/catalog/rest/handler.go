// Package rest provides HTTP handlers for catalog operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	caterrors "github.com/pmerino/gocatalog/internal/catalog/errors"
	"github.com/pmerino/gocatalog/internal/catalog/service"
	"github.com/pmerino/gocatalog/pkg/web"
)

type Handler struct {
	service  service.CatalogService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the catalog HTTP handler.
func NewHandler(service service.CatalogService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)

		r.Get("/{term}", h.FindOne)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.DeleteByID)
	})

	r.Get("/healthz", h.HealthCheck)
}

// listFiltersDto holds the optional list filters; limit and offset are
// parsed separately with their defaults.
type listFiltersDto struct {
	Search string `validate:"omitempty,max=100"`
	Gender string `validate:"omitempty,oneof=men women kid unisex"`
	Size   string `validate:"omitempty,max=20"`
}

// FindAll retrieves one page of products matching the query filters.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	limit, ok := web.ParseOptionalGt(r, w, mLogger, "limit", 0, 10)
	if !ok {
		return
	}
	offset, ok := web.ParseOptionalGte(r, w, mLogger, "offset", 0, 0)
	if !ok {
		return
	}

	filters := listFiltersDto{
		Search: r.URL.Query().Get("search"),
		Gender: r.URL.Query().Get("gender"),
		Size:   r.URL.Query().Get("size"),
	}
	if !h.validateStruct(w, r, mLogger, filters) {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to list products",
		"limit", limit, "offset", offset, "search", filters.Search, "gender", filters.Gender, "size", filters.Size)

	page, err := h.service.FindAll(r.Context(), service.ListQuery{
		Limit:  limit,
		Offset: offset,
		Search: filters.Search,
		Gender: filters.Gender,
		Size:   filters.Size,
	})
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product page", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product page", "count", len(page.Data), "total", page.Total)
	web.RespondJSON(w, mLogger, http.StatusOK, page)
}

// FindOne resolves a product by UUID, slug or title.
func (h *Handler) FindOne(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	term := r.PathValue("term")

	mLogger.DebugContext(r.Context(), "Received request to find product", "term", term)
	found, err := h.service.FindOne(r.Context(), term)
	if err != nil {
		if errors.Is(err, caterrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "term", term)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with term %q not found", term))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "term", term, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with term %q", term))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var productCreateDto service.ProductCreateDto
	if err := json.NewDecoder(r.Body).Decode(&productCreateDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, productCreateDto) {
		return
	}

	newProduct, err := h.service.Create(r.Context(), productCreateDto)
	if err != nil {
		if errors.Is(err, caterrors.ErrDuplicateProduct) {
			mLogger.WarnContext(r.Context(), "Duplicate product", "title", productCreateDto.Title)
			web.RespondError(w, mLogger, http.StatusConflict, "Product with the same title or slug already exists")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", newProduct.ID, "Title", newProduct.Title)
	web.RespondJSON(w, mLogger, http.StatusCreated, newProduct)
}

// Update applies a partial update, replacing the image collection when one
// is supplied.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := r.PathValue("id")

	var patch service.ProductUpdateDto
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, patch) {
		return
	}

	updated, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, caterrors.ErrInvalidProductID):
			mLogger.WarnContext(r.Context(), "Invalid product ID", "ID", id)
			web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Invalid ID: %s", id))
		case errors.Is(err, caterrors.ErrProductNotFound):
			mLogger.WarnContext(r.Context(), "Product not found for update", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
		case errors.Is(err, caterrors.ErrDuplicateProduct):
			mLogger.WarnContext(r.Context(), "Duplicate product on update", "ID", id)
			web.RespondError(w, mLogger, http.StatusConflict, "Product with the same title or slug already exists")
		default:
			mLogger.ErrorContext(r.Context(), "Error updating product", "ID", id, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update product with ID %s", id))
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Title", updated.Title)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteByID deletes a product by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		if errors.Is(err, caterrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for deletion", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// validateStruct runs struct validation and writes the field-level error
// response on failure. Returns true when the payload is valid.
func (h *Handler) validateStruct(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, payload any) bool {
	err := h.validate.Struct(payload)
	if err == nil {
		return true
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errorResponse := make(map[string]string)
		for _, fieldErr := range validationErrors {
			errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
		}
		mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
		web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
		return false
	}
	mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
	web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
	return false
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
