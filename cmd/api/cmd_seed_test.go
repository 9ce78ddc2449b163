package main

import (
	"context"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeedRepositories_SkipsExisting(t *testing.T) {
	log = zap.NewNop()
	ctx := context.Background()

	products := repository.NewInMemoryProductRepository([]*domain.Product{{ID: "p1", Name: "Edited"}})
	categories := repository.NewInMemoryCategoryRepository([]*domain.Category{{ID: "shirts", Name: "Shirts", Slug: "shirts"}})

	require.NoError(t, seedRepositories(ctx, products, categories))
	require.NoError(t, seedRepositories(ctx, products, categories))

	all, err := products.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Edited", all[0].Name)

	cats, err := categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 3)
}

func TestSeedSnapshot_OnlyWritesMissingKeys(t *testing.T) {
	log = zap.NewNop()
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	require.NoError(t, mr.Set(repository.CategorySnapshotKey, `[]`))
	require.NoError(t, seedSnapshot(ctx, client))

	got, err := mr.Get(repository.CategorySnapshotKey)
	require.NoError(t, err)
	assert.Equal(t, `[]`, got)

	raw, err := mr.Get(repository.ProductSnapshotKey)
	require.NoError(t, err)
	products, err := repository.DecodeSnapshot([]byte(raw))
	require.NoError(t, err)
	assert.Len(t, products, 4)
}
