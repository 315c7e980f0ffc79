package domain

// Page is a bounded slice of the filtered product collection plus the
// metadata a caller needs to render pagination and redisplay the filters.
type Page struct {
	Items      []Product `json:"items"`
	Number     int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
	TotalItems int64     `json:"total_items"`

	// Selected filter values, echoed back for redisplay.
	Query  string `json:"query,omitempty"`
	ShopID int64  `json:"shop_id,omitempty"`
}

// TotalPages computes the page count for a collection of total items at the
// given page size. An empty collection still has one (empty) page.
func TotalPages(total int64, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if pages < 1 {
		pages = 1
	}
	return pages
}

// ClampPage normalizes a requested page number into [1, totalPages].
// Out-of-range requests land on the nearest valid page rather than erroring.
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a further page exists.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }
