package storefront

import (
	"fmt"
	"net/url"
	"strings"

	"storefront/internal/domain"
)

// Inquiry composes the pre-filled message handed to the messaging service
type Inquiry struct {
	BaseURL  string
	Phone    string
	Currency string
}

// Message builds the inquiry text for a product and the chosen options
func (i Inquiry) Message(p domain.Product, size, color string) string {
	var b strings.Builder
	b.WriteString("Hi! I'm interested in your product:\n\n")
	fmt.Fprintf(&b, "Product: %s\n", p.Name)
	fmt.Fprintf(&b, "Price: %s %s\n", i.Currency, domain.FormatPrice(p.Price))
	if size != "" {
		fmt.Fprintf(&b, "Size: %s\n", size)
	}
	if color != "" {
		fmt.Fprintf(&b, "Color: %s\n", color)
	}
	b.WriteString("\nPlease send more details.")
	return b.String()
}

// Link returns the deep link carrying the encoded message
func (i Inquiry) Link(p domain.Product, size, color string) string {
	return i.BaseURL + "?phone=" + url.QueryEscape(i.Phone) + "&text=" + encodeComponent(i.Message(p, size, color))
}

// LinkFor builds the link for the detail view's current selection
func (i Inquiry) LinkFor(d *Detail) (string, bool) {
	p := d.Product()
	if p == nil {
		return "", false
	}
	return i.Link(*p, d.Size(), d.Color()), true
}

// encodeComponent percent-encodes s with spaces as %20
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
