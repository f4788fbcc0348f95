package models

// Page is one slice of a paged query.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalItems int64 `json:"total_items"`
}

// TotalPages returns the number of pages for the current size.
func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.TotalItems + int64(p.Size) - 1) / int64(p.Size))
}

// PageRequest is a zero-based page index and a page size.
type PageRequest struct {
	Page int
	Size int
}

// Normalize clamps the request to sane bounds.
func (r PageRequest) Normalize(defaultSize int) PageRequest {
	if r.Page < 0 {
		r.Page = 0
	}
	if r.Size <= 0 {
		r.Size = defaultSize
	}
	if r.Size > 100 {
		r.Size = 100
	}
	return r
}

func (r PageRequest) Offset() int {
	return r.Page * r.Size
}
