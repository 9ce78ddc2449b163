package admin

// DefaultPageSize is the number of products per admin page
const DefaultPageSize = 10

// Pager is a fixed-size window over a list. Pages are 1-based.
type Pager struct {
	Size int
	Page int
}

// NewPager creates a pager on page 1
func NewPager(size int) Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	return Pager{Size: size, Page: 1}
}

// Count returns the number of pages for n items; an empty list has one page
func (p Pager) Count(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + p.Size - 1) / p.Size
}

// Go moves to page, clamped to the valid range for n items
func (p *Pager) Go(page, n int) {
	switch last := p.Count(n); {
	case page < 1:
		p.Page = 1
	case page > last:
		p.Page = last
	default:
		p.Page = page
	}
}

func (p *Pager) Next(n int)   { p.Go(p.Page+1, n) }
func (p *Pager) Prev(n int)   { p.Go(p.Page-1, n) }
func (p *Pager) Reset()       { p.Page = 1 }
func (p Pager) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a later page exists for n items
func (p Pager) HasNext(n int) bool {
	return p.Page < p.Count(n)
}

// Bounds returns the half-open index range of the current page
func (p Pager) Bounds(n int) (int, int) {
	start := (p.Page - 1) * p.Size
	if start > n {
		start = n
	}
	end := start + p.Size
	if end > n {
		end = n
	}
	return start, end
}
