package repository

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

// InMemoryCategoryRepository keeps categories in process memory
type InMemoryCategoryRepository struct {
	mu         sync.RWMutex
	categories []*domain.Category
}

// NewInMemoryCategoryRepository creates a repository holding the given categories
func NewInMemoryCategoryRepository(categories []*domain.Category) *InMemoryCategoryRepository {
	r := &InMemoryCategoryRepository{categories: []*domain.Category{}}
	for _, c := range categories {
		clone := *c
		r.categories = append(r.categories, &clone)
	}
	return r
}

func (r *InMemoryCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (r *InMemoryCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.categories {
		if c.Slug == category.Slug {
			return ErrCategoryAlreadyExists
		}
	}
	clone := *category
	r.categories = append(r.categories, &clone)
	return nil
}

func (r *InMemoryCategoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, c := range r.categories {
		if c.ID == id {
			r.categories = append(r.categories[:i], r.categories[i+1:]...)
			return nil
		}
	}
	return ErrCategoryNotFound
}
