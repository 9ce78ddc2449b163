package transport

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"slices"

	"storefront/internal/domain"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names
const (
	PageStorefront = "storefront"
	PageLogin      = "login"
	PageAdmin      = "admin"
	PageLoading    = "loading"
)

var templateFuncs = template.FuncMap{
	"price": domain.FormatPrice,
	"contains": func(values []string, v string) bool {
		return slices.Contains(values, v)
	},
}

// Views renders the HTML pages. Every page is parsed together with the
// shared layout.
type Views struct {
	pages  map[string]*template.Template
	logger *zap.Logger
}

// NewViews parses the embedded templates
func NewViews(logger *zap.Logger) (*Views, error) {
	v := &Views{
		pages:  make(map[string]*template.Template),
		logger: logger,
	}
	for _, name := range []string{PageStorefront, PageLogin, PageAdmin, PageLoading} {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// Render writes the page with status. Nothing is written if the template fails.
func (v *Views) Render(w http.ResponseWriter, status int, name string, data any) {
	t, ok := v.pages[name]
	if !ok {
		v.logger.Error("Unknown page", zap.String("page", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		v.logger.Error("Failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// LoadingPage is shown while a session check is still undecided
type LoadingPage struct {
	Title string
}

// Loading renders the neutral page the session gate falls back to
func (v *Views) Loading() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v.Render(w, http.StatusOK, PageLoading, LoadingPage{Title: "Loading"})
	})
}

// StaticHandler serves the embedded static assets
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
