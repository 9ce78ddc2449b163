package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/repository"
	"storefront/internal/server"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// seedCmd pushes the bundled catalog into the configured backend
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the bundled catalog into an empty backend",
	Long: `Writes the bundled products and categories to the backend selected by
CATALOG_BACKEND. Records that already exist are left alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		switch cfg.Catalog.Backend {
		case config.BackendStatic:
			log.Info("Static backend always starts from the bundled catalog")
			return nil
		case config.BackendSnapshot:
			client := newRedisClient(ctx)
			defer client.Close()
			return seedSnapshot(ctx, client)
		}

		dbService, err := database.New(cfg.Database)
		if err != nil {
			return err
		}
		defer dbService.Close()

		if err := database.RunMigrations(dbService.DB(), log); err != nil {
			return err
		}

		products, categories, err := server.CatalogRepositories(cfg, dbService.DB(), nil, log)
		if err != nil {
			return err
		}
		return seedRepositories(ctx, products, categories)
	},
}

// seedSnapshot writes the snapshot keys only when they are missing
func seedSnapshot(ctx context.Context, client *redis.Client) error {
	products, err := repository.EncodeSnapshot(repository.SeedProducts())
	if err != nil {
		return err
	}
	categories, err := json.Marshal(repository.SeedCategories())
	if err != nil {
		return err
	}

	for key, data := range map[string][]byte{
		repository.ProductSnapshotKey:  products,
		repository.CategorySnapshotKey: categories,
	} {
		written, err := client.SetNX(ctx, key, data, 0).Result()
		if err != nil {
			return fmt.Errorf("failed to seed %s: %w", key, err)
		}
		log.Info("Seeded snapshot key", zap.String("key", key), zap.Bool("written", written))
	}
	return nil
}

func seedRepositories(ctx context.Context, products repository.ProductRepository, categories repository.CategoryRepository) error {
	for _, category := range repository.SeedCategories() {
		err := categories.Create(ctx, category)
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to seed category %s: %w", category.ID, err)
		}
	}

	created := 0
	for _, product := range repository.SeedProducts() {
		_, err := products.FindByID(ctx, product.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrProductNotFound) {
			return fmt.Errorf("failed to check product %s: %w", product.ID, err)
		}
		if err := products.Create(ctx, product); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", product.ID, err)
		}
		created++
	}

	log.Info("Catalog seeded", zap.Int("products_created", created))
	return nil
}
