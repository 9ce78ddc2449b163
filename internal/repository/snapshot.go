package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// ProductSnapshotKey holds the whole JSON-encoded product list
	ProductSnapshotKey = "catalog:products"
	// CategorySnapshotKey holds the whole JSON-encoded category list
	CategorySnapshotKey = "catalog:categories"

	snapshotMaxRetries = 5
)

// ErrSnapshotConflict is returned when a snapshot kept changing under a write
var ErrSnapshotConflict = errors.New("snapshot modified concurrently")

// EncodeSnapshot serializes a product list into the snapshot format
func EncodeSnapshot(products []*domain.Product) ([]byte, error) {
	if products == nil {
		products = []*domain.Product{}
	}
	return json.Marshal(products)
}

// DecodeSnapshot parses the snapshot format back into a product list
func DecodeSnapshot(data []byte) ([]*domain.Product, error) {
	var products []*domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}
	for i, p := range products {
		if p == nil {
			return nil, fmt.Errorf("snapshot entry %d is null", i)
		}
		if p.Sizes == nil {
			p.Sizes = []string{}
		}
		if p.Colors == nil {
			p.Colors = []string{}
		}
	}
	return products, nil
}

func decodeCategories(data []byte) ([]*domain.Category, error) {
	var categories []*domain.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, err
	}
	for i, c := range categories {
		if c == nil {
			return nil, fmt.Errorf("snapshot entry %d is null", i)
		}
	}
	return categories, nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// snapshot is a single Redis key rewritten in full on every mutation.
// Writes go through WATCH/MULTI so concurrent writers never lose updates.
type snapshot[T any] struct {
	client   *redis.Client
	key      string
	decode   func([]byte) ([]T, error)
	fallback func() []T
	logger   *zap.Logger
}

// read loads the list; a missing or corrupt key yields the fallback list
func (s *snapshot[T]) read(ctx context.Context, getter stringGetter) ([]T, error) {
	data, err := getter.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return s.fallback(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", s.key, err)
	}

	items, err := s.decode(data)
	if err != nil {
		s.logger.Warn("Discarding corrupt snapshot",
			zap.String("key", s.key),
			zap.Error(err),
		)
		return s.fallback(), nil
	}
	return items, nil
}

func (s *snapshot[T]) mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	txf := func(tx *redis.Tx) error {
		items, err := s.read(ctx, tx)
		if err != nil {
			return err
		}

		next, err := fn(items)
		if err != nil {
			return err
		}

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to encode snapshot %s: %w", s.key, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, data, 0)
			return nil
		})
		return err
	}

	for i := 0; i < snapshotMaxRetries; i++ {
		err := s.client.Watch(ctx, txf, s.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return err
		}
		return nil
	}
	return ErrSnapshotConflict
}

// SnapshotProductRepository persists the catalog as one JSON document under
// a Redis key.
type SnapshotProductRepository struct {
	snap *snapshot[*domain.Product]
}

// NewSnapshotProductRepository creates a product repository on the snapshot key
func NewSnapshotProductRepository(client *redis.Client, logger *zap.Logger) *SnapshotProductRepository {
	return &SnapshotProductRepository{
		snap: &snapshot[*domain.Product]{
			client:   client,
			key:      ProductSnapshotKey,
			decode:   DecodeSnapshot,
			fallback: SeedProducts,
			logger:   logger,
		},
	}
}

func (r *SnapshotProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	return r.snap.read(ctx, r.snap.client)
}

func (r *SnapshotProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	products, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (r *SnapshotProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.snap.mutate(ctx, func(products []*domain.Product) ([]*domain.Product, error) {
		clone := product.Clone()
		return append(products, &clone), nil
	})
}

func (r *SnapshotProductRepository) Update(ctx context.Context, product *domain.Product) error {
	return r.snap.mutate(ctx, func(products []*domain.Product) ([]*domain.Product, error) {
		for i, p := range products {
			if p.ID == product.ID {
				clone := product.Clone()
				clone.CreatedAt = p.CreatedAt
				products[i] = &clone
				return products, nil
			}
		}
		return nil, ErrProductNotFound
	})
}

func (r *SnapshotProductRepository) Delete(ctx context.Context, id string) error {
	return r.snap.mutate(ctx, func(products []*domain.Product) ([]*domain.Product, error) {
		for i, p := range products {
			if p.ID == id {
				return append(products[:i], products[i+1:]...), nil
			}
		}
		return nil, ErrProductNotFound
	})
}

// SnapshotCategoryRepository persists categories under their own snapshot key
type SnapshotCategoryRepository struct {
	snap *snapshot[*domain.Category]
}

// NewSnapshotCategoryRepository creates a category repository on the snapshot key
func NewSnapshotCategoryRepository(client *redis.Client, logger *zap.Logger) *SnapshotCategoryRepository {
	return &SnapshotCategoryRepository{
		snap: &snapshot[*domain.Category]{
			client: client,
			key:    CategorySnapshotKey,
			decode:   decodeCategories,
			fallback: SeedCategories,
			logger:   logger,
		},
	}
}

func (r *SnapshotCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	return r.snap.read(ctx, r.snap.client)
}

func (r *SnapshotCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	return r.snap.mutate(ctx, func(categories []*domain.Category) ([]*domain.Category, error) {
		for _, c := range categories {
			if c.Slug == category.Slug {
				return nil, ErrCategoryAlreadyExists
			}
		}
		clone := *category
		return append(categories, &clone), nil
	})
}

func (r *SnapshotCategoryRepository) Delete(ctx context.Context, id string) error {
	return r.snap.mutate(ctx, func(categories []*domain.Category) ([]*domain.Category, error) {
		for i, c := range categories {
			if c.ID == id {
				return append(categories[:i], categories[i+1:]...), nil
			}
		}
		return nil, ErrCategoryNotFound
	})
}
