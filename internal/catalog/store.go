// Package catalog owns the in-memory catalog. The list only changes after the
// backing repository confirms a write.
package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var validate = validator.New()

// Store is the catalog contract shared by the storefront, the admin panel
// and the JSON API. The backend is swappable and callers never branch on it.
type Store struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	logger     *zap.Logger

	placeholder string
	now         func() time.Time
	newID       func() string

	mu           sync.RWMutex
	productList  []domain.Product
	categoryList []domain.Category
	loaded       bool
}

// Option customises a Store
type Option func(*Store)

// WithPlaceholderImage overrides the image used when a product has none
func WithPlaceholderImage(url string) Option {
	return func(s *Store) {
		if url != "" {
			s.placeholder = url
		}
	}
}

// WithClock overrides the time source used for created_at
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides how new product and category ids are minted
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// NewStore creates a catalog store over the given repositories
func NewStore(products repository.ProductRepository, categories repository.CategoryRepository, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		products:    products,
		categories:  categories,
		logger:      logger,
		placeholder: domain.PlaceholderImage,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the full catalog from the backend. A failed read falls back to
// the bundled seed so the storefront is never empty.
func (s *Store) Load(ctx context.Context) error {
	products, err := s.products.List(ctx)
	if err != nil {
		s.logger.Error("Failed to load catalog, using bundled products", zap.Error(err))
		products = repository.SeedProducts()
	}

	categories, catErr := s.categories.List(ctx)
	if catErr != nil {
		s.logger.Error("Failed to load categories, using bundled categories", zap.Error(catErr))
		categories = repository.SeedCategories()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.productList = make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}
		s.productList = append(s.productList, normalize(*p, s.placeholder))
	}
	s.categoryList = make([]domain.Category, 0, len(categories))
	for _, c := range categories {
		if c == nil {
			continue
		}
		s.categoryList = append(s.categoryList, *c)
	}
	s.loaded = true

	if err != nil {
		return &domain.PersistenceError{Op: "load catalog", Err: err}
	}
	return nil
}

func (s *Store) ensureLoaded(ctx context.Context) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if !loaded {
		_ = s.Load(ctx)
	}
}

// List returns the full catalog in insertion order
func (s *Store) List(ctx context.Context) []domain.Product {
	s.ensureLoaded(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, len(s.productList))
	for i, p := range s.productList {
		out[i] = p.Clone()
	}
	return out
}

// Get returns one product by id
func (s *Store) Get(ctx context.Context, id string) (domain.Product, error) {
	s.ensureLoaded(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.productList[i].Clone(), nil
	}
	return domain.Product{}, &domain.NotFoundError{Kind: "product", ID: id}
}

// Create validates the input, persists a new product and appends it
func (s *Store) Create(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateInput(in); err != nil {
		return domain.Product{}, err
	}
	s.ensureLoaded(ctx)

	product := normalize(domain.Product{
		ID:          s.uniqueID(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Sizes:       in.Sizes,
		Colors:      in.Colors,
		Featured:    in.Featured,
		CreatedAt:   s.now().UTC(),
	}, s.placeholder)

	if err := s.products.Create(ctx, &product); err != nil {
		return domain.Product{}, &domain.PersistenceError{Op: "create product", Err: err}
	}

	s.mu.Lock()
	s.productList = append(s.productList, product)
	s.mu.Unlock()

	s.logger.Info("Product created", zap.String("product_id", product.ID))
	return product.Clone(), nil
}

// Update merges the patch into an existing product. id and created_at never
// change.
func (s *Store) Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return domain.Product{}, domain.NewValidationError("name", "Name is required")
		}
		patch.Name = &name
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if description == "" {
			return domain.Product{}, domain.NewValidationError("description", "Description is required")
		}
		patch.Description = &description
	}
	if patch.Price != nil && *patch.Price <= 0 {
		return domain.Product{}, domain.NewValidationError("price", "Price must be greater than zero")
	}

	updated := normalize(patch.Apply(current), s.placeholder)
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt

	if err := s.products.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return domain.Product{}, &domain.NotFoundError{Kind: "product", ID: id}
		}
		return domain.Product{}, &domain.PersistenceError{Op: "update product", Err: err}
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.productList[i] = updated
	}
	s.mu.Unlock()

	s.logger.Info("Product updated", zap.String("product_id", id))
	return updated.Clone(), nil
}

// Delete removes a product. Deleting an unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.ensureLoaded(ctx)

	if err := s.products.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrProductNotFound) {
		return &domain.PersistenceError{Op: "delete product", Err: err}
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.productList = append(s.productList[:i], s.productList[i+1:]...)
	}
	s.mu.Unlock()

	s.logger.Info("Product deleted", zap.String("product_id", id))
	return nil
}

// Categories returns the category list in insertion order
func (s *Store) Categories(ctx context.Context) []domain.Category {
	s.ensureLoaded(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.Category{}, s.categoryList...)
}

// AddCategory persists a category whose slug is derived from its name
func (s *Store) AddCategory(ctx context.Context, name string) (domain.Category, error) {
	category := domain.Category{
		ID:   s.newID(),
		Name: strings.TrimSpace(name),
	}
	category.Slug = domain.Slugify(category.Name)
	if err := validate.Struct(category); err != nil {
		return domain.Category{}, domain.NewValidationError("name", "Category name is required")
	}
	s.ensureLoaded(ctx)

	if err := s.categories.Create(ctx, &category); err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			return domain.Category{}, domain.NewValidationError("name", "A category with this name already exists")
		}
		return domain.Category{}, &domain.PersistenceError{Op: "create category", Err: err}
	}

	s.mu.Lock()
	s.categoryList = append(s.categoryList, category)
	s.mu.Unlock()

	return category, nil
}

// DeleteCategory removes a category. Products keep their category_id.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.ensureLoaded(ctx)

	if err := s.categories.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrCategoryNotFound) {
		return &domain.PersistenceError{Op: "delete category", Err: err}
	}

	s.mu.Lock()
	for i, c := range s.categoryList {
		if c.ID == id {
			s.categoryList = append(s.categoryList[:i], s.categoryList[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	return nil
}

// indexOf must be called with mu held
func (s *Store) indexOf(id string) int {
	for i, p := range s.productList {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// uniqueID mints an id that no current product uses
func (s *Store) uniqueID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for {
		id := s.newID()
		if s.indexOf(id) < 0 {
			return id
		}
	}
}

func validateInput(in domain.ProductInput) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		switch fieldErrs[0].Field() {
		case "Name":
			return domain.NewValidationError("name", "Name is required")
		case "Description":
			return domain.NewValidationError("description", "Description is required")
		case "Price":
			return domain.NewValidationError("price", "Price must be greater than zero")
		}
	}
	return domain.NewValidationError("", "Invalid product")
}

func normalize(p domain.Product, placeholder string) domain.Product {
	p = p.Clone()
	if strings.TrimSpace(p.ImageURL) == "" {
		p.ImageURL = placeholder
	}
	return p
}
