package transport

import (
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 15
	MaxPageSize     = 100
)

// Pagination carries the requested page window. Page is 1-based.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ParsePagination reads page/limit query parameters, falling back to
// defaults and clamping limit to [1, MaxPageSize].
func ParsePagination(r *http.Request) Pagination {
	p := Pagination{Page: 1, Limit: DefaultPageSize}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			p.Page = page
		}
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= MaxPageSize {
			p.Limit = limit
		}
	}

	return p
}

// TotalPages is ceil(total/limit), never below 1 so an empty result still
// has one (empty) page.
func (p Pagination) TotalPages(total int64) int {
	if p.Limit <= 0 {
		return 1
	}
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Clamp pins the requested page into [1, totalPages] so a page outside the
// valid range is never queried.
func (p Pagination) Clamp(totalPages int) Pagination {
	clamped := p
	if clamped.Page < 1 {
		clamped.Page = 1
	}
	if totalPages >= 1 && clamped.Page > totalPages {
		clamped.Page = totalPages
	}
	return clamped
}

// Offset is the row offset for the (already clamped) page.
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// PaginatedResponse is the uniform list envelope for every resource.
type PaginatedResponse struct {
	Success    bool        `json:"success"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"totalPages"`
	Items      interface{} `json:"items"`
}

// NewPaginatedResponse builds the envelope from the clamped pagination and
// the total row count.
func NewPaginatedResponse(p Pagination, total int64, items interface{}) PaginatedResponse {
	return PaginatedResponse{
		Success:    true,
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: p.TotalPages(total),
		Items:      items,
	}
}
