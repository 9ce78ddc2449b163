package transport

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"storefront/internal/domain"
	"storefront/internal/storefront"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogReader is the read side of the catalog
type CatalogReader interface {
	List(ctx context.Context) []domain.Product
	Get(ctx context.Context, id string) (domain.Product, error)
	Categories(ctx context.Context) []domain.Category
}

// Choice is a selectable size or color on the detail view
type Choice struct {
	Label    string
	URL      string
	Selected bool
}

// Card is a product tile in the grid
type Card struct {
	Product domain.Product
	URL     string
}

// DetailView is the open product with its option links
type DetailView struct {
	Product    domain.Product
	Sizes      []Choice
	Colors     []Choice
	InquireURL string
	CloseURL   string
}

// StorefrontPage is the data behind the public catalog page
type StorefrontPage struct {
	Title      string
	Categories []domain.Category
	Category   string
	Search     string
	Featured   []Card
	Products   []Card
	Detail     *DetailView
}

// StorefrontHandler serves the public catalog and the inquiry redirect
type StorefrontHandler struct {
	catalog CatalogReader
	inquiry storefront.Inquiry
	views   *Views
	logger  *zap.Logger
}

// NewStorefrontHandler creates a new StorefrontHandler
func NewStorefrontHandler(catalog CatalogReader, inquiry storefront.Inquiry, views *Views, logger *zap.Logger) *StorefrontHandler {
	return &StorefrontHandler{
		catalog: catalog,
		inquiry: inquiry,
		views:   views,
		logger:  logger,
	}
}

// RegisterRoutes registers the storefront routes. throttle guards the
// inquiry redirect.
func (h *StorefrontHandler) RegisterRoutes(r chi.Router, throttle func(http.Handler) http.Handler) {
	r.Get("/", h.Home)
	r.With(throttle).Get("/inquire", h.Inquire)
}

// Home renders the grid, narrowed by ?category= and ?q=, with the detail
// view of ?product= when present
func (h *StorefrontHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	filter := storefront.Filter{Category: query.Get("category"), Search: query.Get("q")}

	products := h.catalog.List(ctx)
	page := StorefrontPage{
		Title:      "Shop",
		Categories: h.catalog.Categories(ctx),
		Category:   filter.Category,
		Search:     filter.Search,
		Products:   h.cards(filter.Apply(products), query),
	}
	if page.Category == "" {
		page.Category = storefront.AllCategories
	}
	if !filter.Active() {
		page.Featured = h.cards(storefront.Featured(products), query)
	}

	if id := query.Get("product"); id != "" {
		product, err := h.catalog.Get(ctx, id)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.logger.Debug("Detail requested for missing product", zap.String("product_id", id))
		case err != nil:
			h.logger.Error("Failed to load product", zap.String("product_id", id), zap.Error(err))
		default:
			var detail storefront.Detail
			detail.Open(product)
			detail.SelectSize(query.Get("size"))
			detail.SelectColor(query.Get("color"))
			page.Detail = h.detailView(&detail, query)
		}
	}

	h.views.Render(w, http.StatusOK, PageStorefront, page)
}

// Inquire redirects to the messaging deep link for the product and the
// chosen options. Unknown size or color labels are dropped.
func (h *StorefrontHandler) Inquire(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	id := query.Get("product")

	product, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("Failed to load product for inquiry", zap.String("product_id", id), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var detail storefront.Detail
	detail.Open(product)
	detail.SelectSize(query.Get("size"))
	detail.SelectColor(query.Get("color"))

	link, _ := h.inquiry.LinkFor(&detail)
	h.logger.Info("Inquiry started",
		zap.String("product_id", product.ID),
		zap.String("size", detail.Size()),
		zap.String("color", detail.Color()),
	)
	http.Redirect(w, r, link, http.StatusFound)
}

func (h *StorefrontHandler) cards(products []domain.Product, query url.Values) []Card {
	out := make([]Card, len(products))
	for i, p := range products {
		out[i] = Card{Product: p, URL: pageURL(query, map[string]string{"product": p.ID, "size": "", "color": ""})}
	}
	return out
}

func (h *StorefrontHandler) detailView(d *storefront.Detail, query url.Values) *DetailView {
	p := d.Product()
	query = withSelection(query, d)
	view := &DetailView{
		Product:  *p,
		CloseURL: pageURL(query, map[string]string{"product": "", "size": "", "color": ""}),
	}
	for _, size := range p.Sizes {
		view.Sizes = append(view.Sizes, Choice{
			Label:    size,
			URL:      pageURL(query, map[string]string{"size": size}),
			Selected: size == d.Size(),
		})
	}
	for _, color := range p.Colors {
		view.Colors = append(view.Colors, Choice{
			Label:    color,
			URL:      pageURL(query, map[string]string{"color": color}),
			Selected: color == d.Color(),
		})
	}

	inquire := url.Values{"product": {p.ID}}
	if d.Size() != "" {
		inquire.Set("size", d.Size())
	}
	if d.Color() != "" {
		inquire.Set("color", d.Color())
	}
	view.InquireURL = "/inquire?" + inquire.Encode()
	return view
}

// withSelection replaces the size and color parameters with the picks the
// product actually accepted
func withSelection(query url.Values, d *storefront.Detail) url.Values {
	out := url.Values{}
	for k, v := range query {
		out[k] = append([]string{}, v...)
	}
	for key, value := range map[string]string{"size": d.Size(), "color": d.Color()} {
		if value == "" {
			out.Del(key)
		} else {
			out.Set(key, value)
		}
	}
	return out
}

// pageURL returns "/" with query overridden by set; empty values are removed
func pageURL(query url.Values, set map[string]string) string {
	out := url.Values{}
	for k, v := range query {
		out[k] = append([]string{}, v...)
	}
	for k, v := range set {
		if v == "" {
			out.Del(k)
		} else {
			out.Set(k, v)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return "/?" + out.Encode()
}
