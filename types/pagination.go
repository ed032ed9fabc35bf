package types

// DefaultPageSize is the page size used when a caller passes zero.
const DefaultPageSize = 20

// Page describes a one-based page request.
type Page struct {
	Number int `json:"number"`
	Size   int `json:"size"`
}

// Limit returns the row limit for this page request.
func (p Page) Limit() int {
	if p.Size <= 0 {
		return DefaultPageSize
	}
	return p.Size
}

// Offset returns the row offset for this page request.
func (p Page) Offset() int {
	n := p.Number
	if n < 1 {
		n = 1
	}
	return (n - 1) * p.Limit()
}

// Pagination summarizes a paginated result set.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// NewPagination builds a Pagination summary for a page request and a
// total row count.
func NewPagination(p Page, total int) Pagination {
	size := p.Limit()
	pages := total / size
	if total%size != 0 {
		pages++
	}
	n := p.Number
	if n < 1 {
		n = 1
	}
	return Pagination{
		Page:       n,
		PageSize:   size,
		TotalCount: total,
		TotalPages: pages,
	}
}
