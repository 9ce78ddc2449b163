package domain

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Category represents a product category
type Category struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name" validate:"required"`
	Slug string `json:"slug" yaml:"slug"`
}

// Slugify derives a category key from a display name: lowercase, whitespace
// runs replaced with hyphens.
func Slugify(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}
