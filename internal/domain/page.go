package domain

// MaxPageSize caps every paged query regardless of the requested size.
const MaxPageSize = 100

// Page is the pagination contract surfaced upward: items plus zero-based
// page number, post-clamp size, and totals.
type Page[T any] struct {
	Items         []T   `json:"items"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPage assembles a page, computing TotalPages from total and size.
func NewPage[T any](items []T, page, size int, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if size > 0 {
		pages = int((total + int64(size) - 1) / int64(size))
	}
	return Page[T]{
		Items:         items,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    pages,
	}
}

// ClampPageRequest normalizes a caller-supplied page request: negative
// page becomes 0, non-positive size gets the default, and size is capped
// at MaxPageSize.
func ClampPageRequest(page, size, defaultSize int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}
