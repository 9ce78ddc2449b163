// Package storefront holds the read-only views of the public catalog.
package storefront

import (
	"strings"

	"storefront/internal/domain"
)

// AllCategories selects every product
const AllCategories = "all"

// Filter narrows the catalog by category and a free-text search
type Filter struct {
	Category string
	Search   string
}

// Apply returns the matching products in their original order
func (f Filter) Apply(products []domain.Product) []domain.Product {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]domain.Product, 0, len(products))

	for _, p := range products {
		if !f.matchesCategory(p) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Active reports whether the filter narrows anything
func (f Filter) Active() bool {
	return !f.allCategories() || strings.TrimSpace(f.Search) != ""
}

func (f Filter) allCategories() bool {
	return f.Category == "" || f.Category == AllCategories
}

func (f Filter) matchesCategory(p domain.Product) bool {
	return f.allCategories() || p.CategoryID == f.Category
}

// Featured returns the products flagged for the hero section
func Featured(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0)
	for _, p := range products {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}
