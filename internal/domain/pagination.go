package domain

// Page size bounds for list queries.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginationParams selects one page of an ordered listing.
type PaginationParams struct {
	Page     int
	PageSize int
}

// NewPaginationParams clamps page to at least 1 and pageSize to [1, MaxPageSize].
// Non-positive sizes fall back to DefaultPageSize.
func NewPaginationParams(page, pageSize int) PaginationParams {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize < 1:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	return PaginationParams{Page: page, PageSize: pageSize}
}

func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// TotalPages is ceil(total / PageSize), or 0 for an empty listing.
func (p PaginationParams) TotalPages(total int) int {
	if p.PageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + p.PageSize - 1) / p.PageSize
}
