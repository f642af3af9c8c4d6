package helpers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"eventhub/internal/domain"
)

// Pagination query parameter defaults and limits.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps the computed offset well inside int range.
	MaxPage = 1_000_000
)

// ParsePagination reads page and page_size from the query string. Absent or
// empty values take the defaults and page_size is capped at MaxPageSize. Any
// other value that is not a positive integer is rejected with an error that
// names the parameter, for the caller to answer with 400.
func ParsePagination(r *http.Request) (domain.PaginationParams, error) {
	q := r.URL.Query()
	page, err := positiveQueryInt(q, "page", DefaultPage)
	if err != nil {
		return domain.PaginationParams{}, err
	}
	if page > MaxPage {
		return domain.PaginationParams{}, fmt.Errorf("page must not exceed %d", MaxPage)
	}
	pageSize, err := positiveQueryInt(q, "page_size", DefaultPageSize)
	if err != nil {
		return domain.PaginationParams{}, err
	}
	return domain.PaginationParams{Page: page, PageSize: min(pageSize, MaxPageSize)}, nil
}

func positiveQueryInt(q url.Values, name string, def int) (int, error) {
	s := q.Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return v, nil
}

// PaginationMeta is the pagination metadata included in paginated list responses.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta builds PaginationMeta from the current page, page size, and total count.
// TotalPages is computed as ceiling(total / pageSize); if pageSize is 0, TotalPages is 0.
func NewPaginationMeta(page, pageSize, total int) PaginationMeta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
