package domain

import (
	"time"
)

// PlaceholderImage is shown for products without an image reference
const PlaceholderImage = "/V-cube-1-3-1.png"

// Product represents a product in the catalog
type Product struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Price       float64   `json:"price" yaml:"price"`
	CategoryID  string    `json:"category_id" yaml:"category_id"`
	ImageURL    string    `json:"image_url" yaml:"image_url"`
	Sizes       []string  `json:"sizes" yaml:"sizes"`
	Colors      []string  `json:"colors" yaml:"colors"`
	Featured    bool      `json:"featured" yaml:"featured"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// Clone returns a deep copy so callers can't mutate shared label slices
func (p Product) Clone() Product {
	p.Sizes = append([]string{}, p.Sizes...)
	p.Colors = append([]string{}, p.Colors...)
	return p
}

// HasSize reports whether the product offers the given size label
func (p Product) HasSize(size string) bool {
	return contains(p.Sizes, size)
}

// HasColor reports whether the product offers the given color label
func (p Product) HasColor(color string) bool {
	return contains(p.Colors, color)
}

// ProductInput is the validated payload used to create a product
type ProductInput struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       float64  `json:"price" validate:"gt=0"`
	CategoryID  string   `json:"category_id"`
	ImageURL    string   `json:"image_url"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	Featured    bool     `json:"featured"`
}

// ProductPatch carries the fields of an update; nil fields are left untouched.
// ID and CreatedAt are immutable and have no patch field.
type ProductPatch struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	CategoryID  *string   `json:"category_id,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Sizes       *[]string `json:"sizes,omitempty"`
	Colors      *[]string `json:"colors,omitempty"`
	Featured    *bool     `json:"featured,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && p.CategoryID == nil &&
		p.ImageURL == nil && p.Sizes == nil && p.Colors == nil && p.Featured == nil
}

// Apply merges the patch into a copy of the product
func (p ProductPatch) Apply(product Product) Product {
	out := product.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Price != nil {
		out.Price = *p.Price
	}
	if p.CategoryID != nil {
		out.CategoryID = *p.CategoryID
	}
	if p.ImageURL != nil {
		out.ImageURL = *p.ImageURL
	}
	if p.Sizes != nil {
		out.Sizes = append([]string{}, (*p.Sizes)...)
	}
	if p.Colors != nil {
		out.Colors = append([]string{}, (*p.Colors)...)
	}
	if p.Featured != nil {
		out.Featured = *p.Featured
	}
	return out
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
