package domain

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Draft is the in-progress admin form for a product being created or edited.
// Price is kept as typed text until the draft is submitted.
type Draft struct {
	Name        string
	Description string
	Price       string
	CategoryID  string
	ImageURL    string
	Sizes       []string
	Colors      []string
	Featured    bool
}

// DraftFrom copies a product's fields into a fresh draft
func DraftFrom(p Product) Draft {
	return Draft{
		Name:        p.Name,
		Description: p.Description,
		Price:       FormatPrice(p.Price),
		CategoryID:  p.CategoryID,
		ImageURL:    p.ImageURL,
		Sizes:       append([]string{}, p.Sizes...),
		Colors:      append([]string{}, p.Colors...),
		Featured:    p.Featured,
	}
}

func (d *Draft) SetName(v string)        { d.Name = v }
func (d *Draft) SetDescription(v string) { d.Description = v }
func (d *Draft) SetPrice(v string)       { d.Price = v }
func (d *Draft) SetCategory(v string)    { d.CategoryID = v }
func (d *Draft) SetImageURL(v string)    { d.ImageURL = v }
func (d *Draft) SetFeatured(v bool)      { d.Featured = v }

// ToggleSize adds the size if absent, removes it otherwise
func (d *Draft) ToggleSize(size string) { d.Sizes = toggle(d.Sizes, size) }

// ToggleColor adds the color if absent, removes it otherwise
func (d *Draft) ToggleColor(color string) { d.Colors = toggle(d.Colors, color) }

// Reset clears every field
func (d *Draft) Reset() { *d = Draft{} }

// Input validates the draft and converts it into a create payload. Checks
// run in field order and stop at the first failure.
func (d Draft) Input() (ProductInput, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return ProductInput{}, NewValidationError("name", "Name is required")
	}
	description := strings.TrimSpace(d.Description)
	if description == "" {
		return ProductInput{}, NewValidationError("description", "Description is required")
	}
	price, err := ParsePrice(d.Price)
	if err != nil {
		return ProductInput{}, err
	}

	return ProductInput{
		Name:        name,
		Description: description,
		Price:       price,
		CategoryID:  strings.TrimSpace(d.CategoryID),
		ImageURL:    strings.TrimSpace(d.ImageURL),
		Sizes:       append([]string{}, d.Sizes...),
		Colors:      append([]string{}, d.Colors...),
		Featured:    d.Featured,
	}, nil
}

// Patch validates the draft and returns only the fields that differ from
// the original product.
func (d Draft) Patch(original Product) (ProductPatch, error) {
	in, err := d.Input()
	if err != nil {
		return ProductPatch{}, err
	}

	var patch ProductPatch
	if in.Name != original.Name {
		patch.Name = &in.Name
	}
	if in.Description != original.Description {
		patch.Description = &in.Description
	}
	if in.Price != original.Price {
		patch.Price = &in.Price
	}
	if in.CategoryID != original.CategoryID {
		patch.CategoryID = &in.CategoryID
	}
	image := in.ImageURL
	if image == "" {
		image = PlaceholderImage
	}
	if image != original.ImageURL {
		patch.ImageURL = &image
	}
	if !slices.Equal(in.Sizes, original.Sizes) {
		patch.Sizes = &in.Sizes
	}
	if !slices.Equal(in.Colors, original.Colors) {
		patch.Colors = &in.Colors
	}
	if in.Featured != original.Featured {
		patch.Featured = &in.Featured
	}
	return patch, nil
}

// ParsePrice parses a typed price; it must be a positive number
func ParsePrice(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, NewValidationError("price", "Price is required")
	}
	dec, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, NewValidationError("price", "Price must be a number")
	}
	if !dec.IsPositive() {
		return 0, NewValidationError("price", "Price must be greater than zero")
	}
	return dec.InexactFloat64(), nil
}

// FormatPrice renders a price without trailing zeros (149, 149.5)
func FormatPrice(price float64) string {
	return decimal.NewFromFloat(price).String()
}

func toggle(values []string, v string) []string {
	if i := slices.Index(values, v); i >= 0 {
		return slices.Delete(append([]string{}, values...), i, i+1)
	}
	return append(append([]string{}, values...), v)
}
