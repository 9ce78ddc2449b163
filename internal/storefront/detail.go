package storefront

import (
	"storefront/internal/domain"
)

// Detail is the product detail view. Size and color are single-select and
// the last pick wins.
type Detail struct {
	product *domain.Product
	size    string
	color   string
}

// Open selects a product and clears any earlier picks
func (d *Detail) Open(p domain.Product) {
	clone := p.Clone()
	d.product = &clone
	d.size = ""
	d.color = ""
}

// Close clears the selection
func (d *Detail) Close() {
	*d = Detail{}
}

// Product returns the selected product, nil when closed
func (d *Detail) Product() *domain.Product {
	return d.product
}

// SelectSize picks a size the product offers; other labels are ignored
func (d *Detail) SelectSize(size string) {
	if d.product != nil && d.product.HasSize(size) {
		d.size = size
	}
}

// SelectColor picks a color the product offers; other labels are ignored
func (d *Detail) SelectColor(color string) {
	if d.product != nil && d.product.HasColor(color) {
		d.color = color
	}
}

func (d *Detail) Size() string  { return d.size }
func (d *Detail) Color() string { return d.color }
