package domain

// PaginationParams selects one page of an ordered result. Page is 1-based.
type PaginationParams struct {
	Page     int
	PageSize int
}

// TotalPages returns how many pages of PageSize a result of length total spans.
func (p PaginationParams) TotalPages(total int) int {
	if p.PageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + p.PageSize - 1) / p.PageSize
}

// Window returns the [start, end) bounds of the current page within a result
// of length total. Pages past the end yield an empty window at total.
// The page index is compared before multiplying so huge pages cannot overflow.
func (p PaginationParams) Window(total int) (start, end int) {
	if total <= 0 {
		return 0, 0
	}
	if p.PageSize <= 0 {
		return 0, total
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	if page-1 >= p.TotalPages(total) {
		return total, total
	}
	start = (page - 1) * p.PageSize
	end = start + p.PageSize
	if end > total {
		end = total
	}
	return start, end
}
