package helpers

import (
	"fmt"
	"net/http"
	"strconv"

	"lumaevents/internal/domain"
)

// Listing pagination defaults and limits.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePagination reads page and page_size from the query string.
// Missing values take the defaults; page_size is capped at MaxPageSize.
// Malformed or non-positive values are rejected with ErrInvalidInput.
func ParsePagination(r *http.Request) (domain.PaginationParams, error) {
	params := domain.PaginationParams{Page: DefaultPage, PageSize: DefaultPageSize}
	q := r.URL.Query()
	if s := q.Get("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return params, fmt.Errorf("%w: page must be a positive integer", domain.ErrInvalidInput)
		}
		params.Page = v
	}
	if s := q.Get("page_size"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return params, fmt.Errorf("%w: page_size must be a positive integer", domain.ErrInvalidInput)
		}
		params.PageSize = min(v, MaxPageSize)
	}
	return params, nil
}

// PaginationMeta is the pagination metadata included in paginated list responses.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Paginate cuts the requested page out of an already filtered, ordered listing.
// Listings are searched in memory, so the store never sees page bounds.
func Paginate[T any](items []T, params domain.PaginationParams) ([]T, PaginationMeta) {
	start, end := params.Window(len(items))
	return items[start:end], PaginationMeta{
		Page:       params.Page,
		PageSize:   params.PageSize,
		Total:      len(items),
		TotalPages: params.TotalPages(len(items)),
	}
}
