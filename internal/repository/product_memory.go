package repository

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

// InMemoryProductRepository keeps the catalog in process memory. Nothing
// survives a restart.
type InMemoryProductRepository struct {
	mu       sync.RWMutex
	products []*domain.Product
}

// NewInMemoryProductRepository creates a repository holding the given products
func NewInMemoryProductRepository(products []*domain.Product) *InMemoryProductRepository {
	r := &InMemoryProductRepository{products: []*domain.Product{}}
	for _, p := range products {
		clone := p.Clone()
		r.products = append(r.products, &clone)
	}
	return r
}

// List returns copies of all products in insertion order
func (r *InMemoryProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		clone := p.Clone()
		out = append(out, &clone)
	}
	return out, nil
}

// FindByID retrieves a product by its ID
func (r *InMemoryProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.ID == id {
			clone := p.Clone()
			return &clone, nil
		}
	}
	return nil, ErrProductNotFound
}

// Create appends a product to the repository
func (r *InMemoryProductRepository) Create(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := product.Clone()
	r.products = append(r.products, &clone)
	return nil
}

// Update replaces an existing product in place
func (r *InMemoryProductRepository) Update(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.products {
		if p.ID == product.ID {
			clone := product.Clone()
			clone.CreatedAt = p.CreatedAt
			r.products[i] = &clone
			return nil
		}
	}
	return ErrProductNotFound
}

// Delete removes a product by its ID
func (r *InMemoryProductRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.products {
		if p.ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return ErrProductNotFound
}
