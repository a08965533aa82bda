package shaping

// ListingPageSize is the number of businesses shown per listing page.
const ListingPageSize = 6

// Page is one page of a filtered listing. Page numbers start at 1.
type Page[T any] struct {
	Items     []T  `json:"items"`
	Page      int  `json:"page"`
	PageCount int  `json:"pageCount"`
	PageSize  int  `json:"pageSize"`
	Total     int  `json:"total"`
	HasPrev   bool `json:"hasPrev"`
	HasNext   bool `json:"hasNext"`
}

// PageCount is ceil(total/size), and never less than one.
func PageCount(total, size int) int {
	if size <= 0 {
		size = ListingPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// ClampPage pins page to [1, count].
func ClampPage(page, count int) int {
	if page < 1 {
		return 1
	}
	if page > count {
		return count
	}
	return page
}

// Paginate returns the requested page of items, clamped to the first or
// last page when out of range.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = ListingPageSize
	}
	count := PageCount(len(items), size)
	page = ClampPage(page, count)

	start := (page - 1) * size
	end := min(start+size, len(items))
	if start > len(items) {
		start = len(items)
	}

	return Page[T]{
		Items:     items[start:end],
		Page:      page,
		PageCount: count,
		PageSize:  size,
		Total:     len(items),
		HasPrev:   page > 1,
		HasNext:   page < count,
	}
}
