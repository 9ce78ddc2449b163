package transport

import (
	"errors"
	"net/http"
	"slices"
	"strconv"

	"storefront/internal/admin"
	"storefront/internal/domain"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Option is a checkbox on the product form
type Option struct {
	Label   string
	Checked bool
}

// AdminPage is the data behind the admin panel
type AdminPage struct {
	Title  string
	Email  string
	State  admin.Snapshot
	Sizes  []Option
	Colors []Option
}

// AdminHandler serves the admin panel. Every action posts back and
// redirects to GET /admin.
type AdminHandler struct {
	sessions *admin.Sessions
	views    *Views
	logger   *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(sessions *admin.Sessions, views *Views, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		sessions: sessions,
		views:    views,
		logger:   logger,
	}
}

// RegisterRoutes registers the panel behind gate, which must put the
// session into the request context
func (h *AdminHandler) RegisterRoutes(r chi.Router, gate func(http.Handler) http.Handler) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(gate)

		r.Get("/", h.Show)
		r.Post("/reload", h.Reload)
		r.Post("/products/new", h.OpenAdd)
		r.Post("/products/{id}/edit", h.OpenEdit)
		r.Post("/products/{id}/delete", h.RequestDelete)
		r.Post("/form/cancel", h.CancelForm)
		r.Post("/form/submit", h.SubmitForm)
		r.Post("/confirm", h.Confirm)
		r.Post("/cancel-confirm", h.CancelConfirm)
		r.Post("/categories", h.AddCategory)
		r.Post("/categories/{id}/delete", h.RequestCategoryDelete)
		r.Post("/page/next", h.NextPage)
		r.Post("/page/prev", h.PrevPage)
	})
}

// Show renders the panel; ?view= switches between dashboard and products
func (h *AdminHandler) Show(w http.ResponseWriter, r *http.Request) {
	session, c := h.controller(r)
	if c == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	c.EnsureLoaded(r.Context())
	if view := r.URL.Query().Get("view"); view != "" {
		c.SetView(admin.View(view))
	}
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			c.GoToPage(n)
		}
	}

	state := c.Snapshot()
	h.views.Render(w, http.StatusOK, PageAdmin, AdminPage{
		Title:  "Admin Panel",
		Email:  session.Email,
		State:  state,
		Sizes:  options(state.Draft.Sizes, admin.SizeOptions),
		Colors: options(state.Draft.Colors, admin.ColorOptions),
	})
}

func (h *AdminHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(c *admin.Controller) error { return c.Load(r.Context()) })
}

func (h *AdminHandler) OpenAdd(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(c *admin.Controller) error {
		c.OpenAdd()
		return nil
	})
}

func (h *AdminHandler) OpenEdit(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(c *admin.Controller) error { return c.OpenEdit(chi.URLParam(r, "id")) })
}

func (h *AdminHandler) CancelForm(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(c *admin.Controller) error {
		c.CancelForm()
		return nil
	})
}

// SubmitForm copies the posted fields into the draft and saves it
func (h *AdminHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := r.PostForm

	h.act(w, r, func(c *admin.Controller) error {
		c.EditDraft(func(d *domain.Draft) {
			d.SetName(form.Get("name"))
			d.SetDescription(form.Get("description"))
			d.SetPrice(form.Get("price"))
			d.SetCategory(form.Get("category_id"))
			d.SetImageURL(form.Get("image_url"))
			d.SetFeatured(form.Get("featured") != "")
			syncToggles(d.Sizes, form["sizes"], d.ToggleSize)
			syncToggles(d.Colors, form["colors"], d.ToggleColor)
		})
		return c.Submit(r.Context())
	})
}

func (h *AdminHandler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(c *admin.Controller) error {
		c.RequestDelete(chi.URLParam(r, "id"))
		return nil
	})
}

func (h *AdminHandler) RequestCategoryDelete(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(c *admin.Controller) error {
		c.RequestCategoryDelete(chi.URLParam(r, "id"))
		return nil
	})
}

func (h *AdminHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(c *admin.Controller) error { return c.ConfirmDelete(r.Context(), true) })
}

func (h *AdminHandler) CancelConfirm(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(c *admin.Controller) error { return c.ConfirmDelete(r.Context(), false) })
}

func (h *AdminHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(c *admin.Controller) error { return c.AddCategory(r.Context(), r.PostFormValue("name")) })
}

func (h *AdminHandler) NextPage(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(c *admin.Controller) error {
		c.NextPage()
		return nil
	})
}

func (h *AdminHandler) PrevPage(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(c *admin.Controller) error {
		c.PrevPage()
		return nil
	})
}

// act runs fn on the session's controller and redirects back to the panel.
// Failures are already recorded as a notice on the controller.
func (h *AdminHandler) act(w http.ResponseWriter, r *http.Request, fn func(*admin.Controller) error) {
	session, c := h.controller(r)
	if c == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	c.EnsureLoaded(r.Context())

	if err := fn(c); err != nil {
		level := h.logger.Warn
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) || errors.Is(err, admin.ErrBusy) {
			level = h.logger.Debug
		}
		level("Admin action failed",
			zap.String("path", r.URL.Path),
			zap.String("user_id", session.UserID),
			zap.Error(err),
		)
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *AdminHandler) controller(r *http.Request) (*domain.Session, *admin.Controller) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		return nil, nil
	}
	return session, h.sessions.Get(session.ID)
}

// options lists the current labels first, then the remaining presets
func options(current, presets []string) []Option {
	out := make([]Option, 0, len(current)+len(presets))
	for _, label := range current {
		out = append(out, Option{Label: label, Checked: true})
	}
	for _, label := range presets {
		if !slices.Contains(current, label) {
			out = append(out, Option{Label: label})
		}
	}
	return out
}

// syncToggles toggles labels until current holds exactly the wanted set
func syncToggles(current, wanted []string, toggle func(string)) {
	for _, label := range append([]string{}, current...) {
		if !slices.Contains(wanted, label) {
			toggle(label)
		}
	}
	for i, label := range wanted {
		if !slices.Contains(current, label) && !slices.Contains(wanted[:i], label) {
			toggle(label)
		}
	}
}
