package params

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPage caps page numbers so (page-1)*size stays far from overflow.
	MaxPage = 1_000_000
)

// URL: /v1/products?page=2&page_size=30
// → ParsePagination() → Pagination{Limit:30, Page:2, Offset:30}
// → SQL: SELECT ... LIMIT 30 OFFSET 30
// → ComputeMeta(total) fills TotalPages, HasNext, etc.
type Pagination struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	Page       int  `json:"page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// ParsePagination parses ?page=...&page_size=... safely.
func ParsePagination(q url.Values) Pagination {
	p := Pagination{
		Limit: PageSize(q),
		Page:  PageNumber(q, "page"),
	}
	p.Offset = (p.Page - 1) * p.Limit
	return p
}

// PageSize reads page_size, falling back to DefaultPageSize and capping at
// MaxPageSize.
func PageSize(q url.Values) int {
	sizeStr := strings.TrimSpace(q.Get("page_size"))
	if sizeStr == "" {
		return DefaultPageSize
	}
	size, err := strconv.Atoi(sizeStr)
	switch {
	case err != nil, size <= 0:
		return DefaultPageSize
	case size > MaxPageSize:
		return MaxPageSize
	default:
		return size
	}
}

// PageNumber reads a 1-based page number from param. Missing, non-numeric and
// non-positive values all mean page 1; anything above MaxPage means MaxPage.
func PageNumber(q url.Values, param string) int {
	raw := strings.TrimSpace(q.Get(param))
	page, err := strconv.Atoi(raw)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
			return MaxPage
		}
		return 1
	}
	switch {
	case page < 1:
		return 1
	case page > MaxPage:
		return MaxPage
	default:
		return page
	}
}

// GroupPageParam names the per-group cursor: page_<key> with the key
// lower-cased and spaces replaced by underscores.
func GroupPageParam(key string) string {
	return "page_" + strings.ReplaceAll(strings.ToLower(key), " ", "_")
}

// ComputeMeta updates pagination after fetching total count.
func (p *Pagination) ComputeMeta(total int) {
	p.Total = total
	if p.Limit > 0 {
		p.TotalPages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	p.HasPrev = p.Page > 1
	p.HasNext = (p.Page * p.Limit) < total
}
