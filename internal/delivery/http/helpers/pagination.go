package helpers

import (
	"net/http"
	"strconv"

	"campusevents/internal/domain"
)

// ParsePagination reads page and page_size from the query string. Missing or malformed values
// use the defaults; out-of-range values are clamped.
func ParsePagination(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	return domain.NewPaginationParams(queryInt(q.Get("page"), 1), queryInt(q.Get("page_size"), domain.DefaultPageSize))
}

func queryInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

// PaginationMeta accompanies every paginated listing.
type PaginationMeta struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

func NewPaginationMeta(params domain.PaginationParams, total int) PaginationMeta {
	pages := params.TotalPages(total)
	return PaginationMeta{
		Page:       params.Page,
		PageSize:   params.PageSize,
		Total:      total,
		TotalPages: pages,
		HasNext:    params.Page < pages,
	}
}
