package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"storefront/internal/admin"
	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/storefront"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MaxPageSize caps page_size on the product listing
const MaxPageSize = 100

// CatalogStore is the catalog as seen by the JSON API
type CatalogStore interface {
	CatalogReader
	Create(ctx context.Context, in domain.ProductInput) (domain.Product, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error)
	Delete(ctx context.Context, id string) error
	AddCategory(ctx context.Context, name string) (domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// CategoryRequest represents the category creation payload
type CategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// ProductPage is one page of the product listing
type ProductPage struct {
	Items     []domain.Product `json:"items"`
	Page      int              `json:"page"`
	PageSize  int              `json:"page_size"`
	Total     int              `json:"total"`
	PageCount int              `json:"page_count"`
}

// CatalogHandler serves the catalog JSON API
type CatalogHandler struct {
	store    CatalogStore
	pageSize int
	logger   *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(store CatalogStore, pageSize int, logger *zap.Logger) *CatalogHandler {
	if pageSize <= 0 {
		pageSize = admin.DefaultPageSize
	}
	return &CatalogHandler{
		store:    store,
		pageSize: pageSize,
		logger:   logger,
	}
}

// RegisterRoutes registers the public reads and the editor-only writes.
// authorize runs after authentication on every write.
func (h *CatalogHandler) RegisterRoutes(r chi.Router, authMiddleware, authorize func(http.Handler) http.Handler) {
	r.Get("/api/products", h.ListProducts)
	r.Get("/api/products/{id}", h.GetProduct)
	r.Get("/api/categories", h.ListCategories)

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware, authorize)

		r.Post("/products", h.CreateProduct)
		r.Patch("/products/{id}", h.UpdateProduct)
		r.Delete("/products/{id}", h.DeleteProduct)
		r.Post("/categories", h.CreateCategory)
		r.Delete("/categories/{id}", h.DeleteCategory)
	})
}

// ListProducts returns one page of the filtered catalog
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := storefront.Filter{Category: query.Get("category"), Search: query.Get("q")}
	products := filter.Apply(h.store.List(r.Context()))

	size := h.pageSize
	if raw := query.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxPageSize {
			middleware.RespondWithError(w, http.StatusBadRequest, "page_size must be between 1 and "+strconv.Itoa(MaxPageSize))
			return
		}
		size = n
	}
	pager := admin.NewPager(size)
	if raw := query.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "page must be a number")
			return
		}
		pager.Go(n, len(products))
	}

	start, end := pager.Bounds(len(products))
	middleware.RespondWithJSON(w, http.StatusOK, ProductPage{
		Items:     products[start:end],
		Page:      pager.Page,
		PageSize:  pager.Size,
		Total:     len(products),
		PageCount: pager.Count(len(products)),
	})
}

// GetProduct returns a single product
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// ListCategories returns every category
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.store.Categories(r.Context()))
}

// CreateProduct adds a product
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Debug("Product decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.store.Create(r.Context(), in)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	h.logger.Info("Product created", zap.String("product_id", product.ID), zap.String("user_id", userID))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct applies a partial update
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch domain.ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.logger.Debug("Product patch decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.store.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a product; deleting a missing id succeeds
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateCategory adds a category
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Category validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	category, err := h.store.AddCategory(r.Context(), req.Name)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// DeleteCategory removes a category
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
