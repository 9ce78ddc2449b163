// Package admin holds the per-session state of the admin panel: the product
// table, the add/edit form, delete confirmations and pagination.
package admin

import (
	"context"
	"errors"
	"sync"

	"storefront/internal/domain"

	"go.uber.org/zap"
)

// SizeOptions are the sizes offered on the product form
var SizeOptions = []string{"S", "M", "L", "XL", "XXL"}

// ColorOptions are the colors offered on the product form
var ColorOptions = []string{"White", "Black", "Blue", "Navy", "Gray", "Olive", "Beige", "Sky"}

// ErrBusy is returned when a change is requested while another is saving
var ErrBusy = errors.New("another change is still being saved")

// Store is the catalog the controller edits
type Store interface {
	Load(ctx context.Context) error
	List(ctx context.Context) []domain.Product
	Categories(ctx context.Context) []domain.Category
	Create(ctx context.Context, in domain.ProductInput) (domain.Product, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error)
	Delete(ctx context.Context, id string) error
	AddCategory(ctx context.Context, name string) (domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// View is the admin section being shown
type View string

const (
	ViewDashboard View = "dashboard"
	ViewProducts  View = "products"
)

// NoticeKind classifies a notice
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a user-visible message about the last action
type Notice struct {
	Kind    NoticeKind
	Message string
}

// PendingKind is the kind of record awaiting delete confirmation
type PendingKind string

const (
	PendingProduct  PendingKind = "product"
	PendingCategory PendingKind = "category"
)

// Pending is a delete awaiting a yes/no answer
type Pending struct {
	Kind  PendingKind
	ID    string
	Label string
}

// Prompt is the confirmation question shown to the user
func (p Pending) Prompt() string {
	if p.Kind == PendingCategory {
		return "Delete this category?"
	}
	return "Delete product?"
}

// Stats are the dashboard counters
type Stats struct {
	Products   int
	Categories int
	Featured   int
}

// Snapshot is a consistent copy of the controller state for rendering
type Snapshot struct {
	View       View
	Products   []domain.Product
	Categories []domain.Category
	FormOpen   bool
	Draft      domain.Draft
	EditingID  string
	Pending    *Pending
	Page       int
	PageCount  int
	HasNext    bool
	HasPrev    bool
	Busy       bool
	Notice     *Notice
	Stats      Stats
}

// Controller is the admin panel state for one session
type Controller struct {
	store  Store
	logger *zap.Logger

	mu         sync.Mutex
	view       View
	products   []domain.Product
	categories []domain.Category
	formOpen   bool
	draft      domain.Draft
	editingID  string
	pending    *Pending
	pager      Pager
	busy       bool
	notice     *Notice
	loaded     bool
}

// NewController creates a controller showing the dashboard
func NewController(store Store, pageSize int, logger *zap.Logger) *Controller {
	return &Controller{
		store:  store,
		logger: logger,
		view:   ViewDashboard,
		pager:  NewPager(pageSize),
	}
}

// Load reloads products and categories from the store and resets to page 1.
// On failure the previous lists are kept.
func (c *Controller) Load(ctx context.Context) error {
	err := c.store.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.logger.Error("Failed to reload catalog", zap.Error(err))
		c.notice = &Notice{Kind: NoticeError, Message: "Could not load products. Showing the last known catalog."}
		if c.loaded {
			return err
		}
	}

	c.products = c.store.List(ctx)
	c.categories = c.store.Categories(ctx)
	c.pager.Reset()
	c.loaded = true
	return err
}

// EnsureLoaded loads once per controller
func (c *Controller) EnsureLoaded(ctx context.Context) error {
	c.mu.Lock()
	loaded := c.loaded
	c.mu.Unlock()
	if loaded {
		return nil
	}
	return c.Load(ctx)
}

// SetView switches between the dashboard and the product table
func (c *Controller) SetView(v View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v == ViewDashboard || v == ViewProducts {
		c.view = v
	}
}

// OpenAdd opens an empty form for a new product
func (c *Controller) OpenAdd() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.draft.Reset()
	c.editingID = ""
	c.formOpen = true
	c.view = ViewProducts
}

// OpenEdit opens the form pre-filled with the product's fields
func (c *Controller) OpenEdit(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		err := &domain.NotFoundError{Kind: "product", ID: id}
		c.notice = &Notice{Kind: NoticeError, Message: "This product no longer exists"}
		return err
	}
	c.draft = domain.DraftFrom(c.products[i])
	c.editingID = id
	c.formOpen = true
	c.view = ViewProducts
	return nil
}

// CancelForm closes and clears the form
func (c *Controller) CancelForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetForm()
}

// EditDraft applies fn to the open form
func (c *Controller) EditDraft(fn func(*domain.Draft)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.draft)
}

// Submit saves the form: a create when adding, an update of only the
// changed fields when editing
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	if !c.formOpen {
		c.mu.Unlock()
		return nil
	}
	draft := c.draft
	editingID := c.editingID

	var (
		input    domain.ProductInput
		patch    domain.ProductPatch
		original domain.Product
		err      error
	)
	if editingID == "" {
		input, err = draft.Input()
	} else if i := c.indexOf(editingID); i < 0 {
		err = &domain.NotFoundError{Kind: "product", ID: editingID}
	} else {
		original = c.products[i]
		patch, err = draft.Patch(original)
	}
	if err != nil {
		c.notice = noticeFor(err, "Could not save the product. Please try again.")
		c.mu.Unlock()
		return err
	}
	if editingID != "" && patch.IsEmpty() {
		c.resetForm()
		c.mu.Unlock()
		return nil
	}
	c.busy = true
	c.mu.Unlock()

	var saved domain.Product
	if editingID == "" {
		saved, err = c.store.Create(ctx, input)
	} else {
		saved, err = c.store.Update(ctx, editingID, patch)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false

	if err != nil {
		c.logger.Error("Failed to save product", zap.String("product_id", editingID), zap.Error(err))
		c.notice = noticeFor(err, "Could not save the product. Please try again.")
		return err
	}

	if editingID == "" {
		c.products = append(c.products, saved)
		c.notice = &Notice{Kind: NoticeSuccess, Message: "Product added"}
	} else {
		if i := c.indexOf(editingID); i >= 0 {
			c.products[i] = saved
		}
		c.notice = &Notice{Kind: NoticeSuccess, Message: "Product updated"}
	}
	c.resetForm()
	return nil
}

// RequestDelete asks for confirmation before deleting a product
func (c *Controller) RequestDelete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	label := id
	if i := c.indexOf(id); i >= 0 {
		label = c.products[i].Name
	}
	c.pending = &Pending{Kind: PendingProduct, ID: id, Label: label}
}

// RequestCategoryDelete asks for confirmation before deleting a category
func (c *Controller) RequestCategoryDelete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	label := id
	for _, cat := range c.categories {
		if cat.ID == id {
			label = cat.Name
		}
	}
	c.pending = &Pending{Kind: PendingCategory, ID: id, Label: label}
}

// ConfirmDelete answers the pending confirmation. With yes the record is
// deleted from the store and then from the local list.
func (c *Controller) ConfirmDelete(ctx context.Context, yes bool) error {
	c.mu.Lock()
	pending := c.pending
	if pending == nil {
		c.mu.Unlock()
		return nil
	}
	if !yes {
		c.pending = nil
		c.mu.Unlock()
		return nil
	}
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.mu.Unlock()

	var err error
	if pending.Kind == PendingCategory {
		err = c.store.DeleteCategory(ctx, pending.ID)
	} else {
		err = c.store.Delete(ctx, pending.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.pending = nil

	if err != nil {
		c.logger.Error("Failed to delete", zap.String("kind", string(pending.Kind)), zap.String("id", pending.ID), zap.Error(err))
		c.notice = noticeFor(err, "Could not delete. Please try again.")
		return err
	}

	if pending.Kind == PendingCategory {
		for i, cat := range c.categories {
			if cat.ID == pending.ID {
				c.categories = append(c.categories[:i], c.categories[i+1:]...)
				break
			}
		}
		c.notice = &Notice{Kind: NoticeSuccess, Message: "Category deleted"}
		return nil
	}

	if i := c.indexOf(pending.ID); i >= 0 {
		c.products = append(c.products[:i], c.products[i+1:]...)
	}
	if c.editingID == pending.ID {
		c.resetForm()
	}
	c.pager.Go(c.pager.Page, len(c.products))
	c.notice = &Notice{Kind: NoticeSuccess, Message: "Product deleted"}
	return nil
}

// AddCategory creates a category from a display name
func (c *Controller) AddCategory(ctx context.Context, name string) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.mu.Unlock()

	category, err := c.store.AddCategory(ctx, name)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false

	if err != nil {
		c.notice = noticeFor(err, "Could not add the category. Please try again.")
		return err
	}
	c.categories = append(c.categories, category)
	c.notice = &Notice{Kind: NoticeSuccess, Message: "Category added"}
	return nil
}

func (c *Controller) NextPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pager.Next(len(c.products))
}

func (c *Controller) PrevPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pager.Prev(len(c.products))
}

// GoToPage jumps to page n, clamped to the valid range
func (c *Controller) GoToPage(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pager.Go(n, len(c.products))
}

func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.Page
}

func (c *Controller) PageCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.Count(len(c.products))
}

func (c *Controller) HasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.HasNext(len(c.products))
}

func (c *Controller) HasPrev() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.HasPrev()
}

// Visible returns the products on the current page
func (c *Controller) Visible() []domain.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible()
}

// Products returns every product in the local list
func (c *Controller) Products() []domain.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneProducts(c.products)
}

// Stats returns the dashboard counters
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats()
}

// TakeNotice returns the pending notice and clears it
func (c *Controller) TakeNotice() *Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.notice
	c.notice = nil
	return n
}

// Snapshot copies the state for rendering and clears the notice
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		View:       c.view,
		Products:   c.visible(),
		Categories: append([]domain.Category{}, c.categories...),
		FormOpen:   c.formOpen,
		Draft:      c.draft,
		EditingID:  c.editingID,
		Page:       c.pager.Page,
		PageCount:  c.pager.Count(len(c.products)),
		HasNext:    c.pager.HasNext(len(c.products)),
		HasPrev:    c.pager.HasPrev(),
		Busy:       c.busy,
		Notice:     c.notice,
		Stats:      c.stats(),
	}
	snap.Draft.Sizes = append([]string{}, c.draft.Sizes...)
	snap.Draft.Colors = append([]string{}, c.draft.Colors...)
	if c.pending != nil {
		p := *c.pending
		snap.Pending = &p
	}
	c.notice = nil
	return snap
}

func (c *Controller) visible() []domain.Product {
	start, end := c.pager.Bounds(len(c.products))
	return cloneProducts(c.products[start:end])
}

func (c *Controller) stats() Stats {
	s := Stats{Products: len(c.products), Categories: len(c.categories)}
	for _, p := range c.products {
		if p.Featured {
			s.Featured++
		}
	}
	return s
}

func (c *Controller) resetForm() {
	c.formOpen = false
	c.editingID = ""
	c.draft.Reset()
}

func (c *Controller) indexOf(id string) int {
	for i, p := range c.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func cloneProducts(products []domain.Product) []domain.Product {
	out := make([]domain.Product, len(products))
	for i, p := range products {
		out[i] = p.Clone()
	}
	return out
}

func noticeFor(err error, fallback string) *Notice {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return &Notice{Kind: NoticeError, Message: validationErr.Message}
	case errors.Is(err, domain.ErrNotFound):
		return &Notice{Kind: NoticeError, Message: "This product no longer exists"}
	default:
		return &Notice{Kind: NoticeError, Message: fallback}
	}
}
