package repository

import (
	_ "embed"
	"fmt"

	"storefront/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedData []byte

type seedCatalog struct {
	Categories []domain.Category `yaml:"categories"`
	Products   []domain.Product  `yaml:"products"`
}

var seed = mustLoadSeed(seedData)

func mustLoadSeed(data []byte) seedCatalog {
	var catalog seedCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		panic(fmt.Sprintf("invalid bundled catalog: %v", err))
	}
	for i := range catalog.Products {
		catalog.Products[i].CreatedAt = catalog.Products[i].CreatedAt.UTC()
	}
	return catalog
}

// SeedProducts returns a fresh copy of the bundled product list
func SeedProducts() []*domain.Product {
	products := make([]*domain.Product, 0, len(seed.Products))
	for _, p := range seed.Products {
		clone := p.Clone()
		products = append(products, &clone)
	}
	return products
}

// SeedCategories returns a fresh copy of the bundled category list
func SeedCategories() []*domain.Category {
	categories := make([]*domain.Category, 0, len(seed.Categories))
	for _, c := range seed.Categories {
		clone := c
		categories = append(categories, &clone)
	}
	return categories
}
