package transport

import (
	"net/http"
	"net/url"
	"testing"

	"storefront/internal/admin"
	"storefront/internal/domain"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// cookieGate stands in for the session gate: it resolves the cookie and
// leaves the context empty when there is no session
func cookieGate(auth *fakeAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session, _ := auth.Session(r.Context(), middleware.SessionToken(r)); session != nil {
				r = r.WithContext(middleware.WithSession(r.Context(), session))
			}
			next.ServeHTTP(w, r)
		})
	}
}

type adminFixture struct {
	router   chi.Router
	store    CatalogStore
	sessions *admin.Sessions
	token    string
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	auth := newFakeAuth()
	store := seededStore()
	sessions := admin.NewSessions(func() *admin.Controller {
		return admin.NewController(store, admin.DefaultPageSize, zap.NewNop())
	})
	h := NewAdminHandler(sessions, mustViews(t), zap.NewNop())
	r := chi.NewRouter()
	h.RegisterRoutes(r, cookieGate(auth))
	return &adminFixture{router: r, store: store, sessions: sessions, token: auth.signIn(t, "owner@shop.com")}
}

func (f *adminFixture) post(t *testing.T, path string, values url.Values) {
	t.Helper()
	w := serve(f.router, "POST", path, values.Encode(), form, cookie(f.token))
	require.Equal(t, http.StatusSeeOther, w.Code, path)
	require.Equal(t, "/admin", w.Header().Get("Location"), path)
}

func (f *adminFixture) page(t *testing.T, query string) string {
	t.Helper()
	w := serve(f.router, "GET", "/admin"+query, "", cookie(f.token))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestAdmin_RequiresSession(t *testing.T) {
	f := newAdminFixture(t)

	w := serve(f.router, "GET", "/admin", "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = serve(f.router, "POST", "/admin/products/new", "")
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Zero(t, f.sessions.Len())
}

func TestAdmin_Dashboard(t *testing.T) {
	f := newAdminFixture(t)

	body := f.page(t, "")
	assert.Contains(t, body, "<h3>Products</h3><p>4</p>")
	assert.Contains(t, body, "<h3>Categories</h3><p>3</p>")
	assert.Contains(t, body, "<h3>Featured</h3><p>2</p>")
	assert.Equal(t, 1, f.sessions.Len())
}

func TestAdmin_AddProduct(t *testing.T) {
	f := newAdminFixture(t)

	f.post(t, "/admin/products/new", nil)
	body := f.page(t, "")
	assert.Contains(t, body, `action="/admin/form/submit"`)

	f.post(t, "/admin/form/submit", url.Values{"name": {""}, "description": {"d"}, "price": {"10"}})
	body = f.page(t, "")
	assert.Contains(t, body, "Name is required")
	assert.Len(t, f.store.List(t.Context()), 4)

	f.post(t, "/admin/form/submit", url.Values{
		"name":        {"Denim Jacket"},
		"description": {"Rugged denim"},
		"price":       {"249.50"},
		"category_id": {"jackets"},
		"sizes":       {"M", "L", "M"},
		"colors":      {"Blue"},
		"featured":    {"1"},
	})
	body = f.page(t, "")
	assert.Contains(t, body, "Product added")
	assert.NotContains(t, body, `action="/admin/form/submit"`)

	products := f.store.List(t.Context())
	require.Len(t, products, 5)
	added := products[4]
	assert.Equal(t, "Denim Jacket", added.Name)
	assert.Equal(t, 249.5, added.Price)
	assert.Equal(t, []string{"M", "L"}, added.Sizes)
	assert.Equal(t, []string{"Blue"}, added.Colors)
	assert.True(t, added.Featured)
}

func TestAdmin_EditKeepsUntouchedLabels(t *testing.T) {
	f := newAdminFixture(t)

	f.post(t, "/admin/products/p2/edit", nil)
	body := f.page(t, "")
	assert.Contains(t, body, `value="Tailored Slim Pants"`)
	assert.Contains(t, body, `value="30" checked`)

	f.post(t, "/admin/form/submit", url.Values{
		"name":        {"Tailored Slim Pants"},
		"description": {"Modern slim-fit pants with stretch for comfort and mobility."},
		"price":       {"189"},
		"category_id": {"pants"},
		"image_url":   {"/V-cube-1-3-1.png"},
		"sizes":       {"30", "32", "34", "36"},
		"colors":      {"Navy", "Gray"},
	})
	assert.Contains(t, f.page(t, ""), "Product updated")

	product, err := f.store.Get(t.Context(), "p2")
	require.NoError(t, err)
	assert.Equal(t, 189.0, product.Price)
	assert.Equal(t, []string{"30", "32", "34", "36"}, product.Sizes)
}

func TestAdmin_DeleteNeedsConfirmation(t *testing.T) {
	f := newAdminFixture(t)
	f.page(t, "")

	f.post(t, "/admin/products/p1/delete", nil)
	body := f.page(t, "")
	assert.Contains(t, body, "Delete product?")
	assert.Len(t, f.store.List(t.Context()), 4)

	f.post(t, "/admin/cancel-confirm", nil)
	assert.NotContains(t, f.page(t, ""), "Delete product?")
	assert.Len(t, f.store.List(t.Context()), 4)

	f.post(t, "/admin/products/p1/delete", nil)
	f.post(t, "/admin/confirm", nil)
	assert.Contains(t, f.page(t, ""), "Product deleted")
	_, err := f.store.Get(t.Context(), "p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdmin_Categories(t *testing.T) {
	f := newAdminFixture(t)

	f.post(t, "/admin/categories", url.Values{"name": {"Shirts"}})
	assert.Contains(t, f.page(t, ""), "A category with this name already exists")

	f.post(t, "/admin/categories", url.Values{"name": {"Hats"}})
	assert.Len(t, f.store.Categories(t.Context()), 4)

	f.post(t, "/admin/categories/pants/delete", nil)
	assert.Contains(t, f.page(t, ""), "Delete this category?")
	f.post(t, "/admin/confirm", nil)
	assert.Len(t, f.store.Categories(t.Context()), 3)
}

func TestAdmin_Pagination(t *testing.T) {
	f := newAdminFixture(t)
	for i := 0; i < 21; i++ {
		_, err := f.store.Create(t.Context(), domain.ProductInput{Name: "Item", Description: "d", Price: 1})
		require.NoError(t, err)
	}
	f.post(t, "/admin/reload", nil)

	assert.Contains(t, f.page(t, "?view=products"), "Page 1 of 3")
	f.post(t, "/admin/page/next", nil)
	f.post(t, "/admin/page/next", nil)
	f.post(t, "/admin/page/next", nil)
	assert.Contains(t, f.page(t, ""), "Page 3 of 3")
	f.post(t, "/admin/page/prev", nil)
	assert.Contains(t, f.page(t, ""), "Page 2 of 3")
	assert.Contains(t, f.page(t, "?page=0"), "Page 1 of 3")
}

func TestSyncToggles(t *testing.T) {
	d := domain.Draft{Sizes: []string{"S", "M"}}
	syncToggles(d.Sizes, []string{"M", "XL", "XL"}, d.ToggleSize)
	assert.Equal(t, []string{"M", "XL"}, d.Sizes)

	assert.Equal(t, []Option{{"30", true}, {"S", false}}, options([]string{"30"}, []string{"S"}))
}
