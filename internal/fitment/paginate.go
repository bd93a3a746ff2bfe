package fitment

import (
	"net/url"
	"sort"
	"strconv"

	"partsfit/internal/params"
)

// UncategorizedKey groups records whose product or category is missing.
const UncategorizedKey = "uncategorized"

// GroupKey identifies one partition of a grouped page.
type GroupKey struct {
	Key  string
	Name string
}

type Group[T any] struct {
	CategoryName string  `json:"category_name"`
	Count        int     `json:"count"`
	Next         *string `json:"next"`
	Previous     *string `json:"previous"`
	Results      []T     `json:"results"`
}

// PageSelector reads each partition's cursor from the request URL and builds
// absolute links that differ from it only in that partition's parameter.
type PageSelector struct {
	base *url.URL
}

func NewPageSelector(requestURL *url.URL) PageSelector {
	return PageSelector{base: requestURL}
}

func (s PageSelector) Page(param string) int {
	return params.PageNumber(s.base.Query(), param)
}

// Link points at page for param. Page 1 drops the parameter.
func (s PageSelector) Link(param string, page int) *string {
	u := *s.base
	q := u.Query()
	if page <= 1 {
		q.Del(param)
	} else {
		q.Set(param, strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	link := u.String()
	return &link
}

// PaginateByCategory partitions items by key and pages each partition on its
// own cursor. Partitions with no items are absent from the result.
func PaginateByCategory[T any](items []T, key func(T) GroupKey, sel PageSelector, size int) map[string]Group[T] {
	if size <= 0 {
		size = params.DefaultPageSize
	}
	if size > params.MaxPageSize {
		size = params.MaxPageSize
	}

	parts := make(map[string][]T)
	names := make(map[string]string)
	for _, it := range items {
		k := key(it)
		parts[k.Key] = append(parts[k.Key], it)
		if _, ok := names[k.Key]; !ok {
			names[k.Key] = k.Name
		}
	}

	keys := make([]string, 0, len(parts))
	for k := range parts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]Group[T], len(keys))
	for _, k := range keys {
		all := parts[k]
		param := params.GroupPageParam(k)
		page := sel.Page(param)

		// compare page counts before multiplying so huge cursors cannot overflow
		start := len(all)
		if page-1 < (len(all)+size-1)/size {
			start = (page - 1) * size
		}
		end := start + size
		if end > len(all) {
			end = len(all)
		}

		g := Group[T]{
			CategoryName: names[k],
			Count:        len(all),
			Results:      append([]T{}, all[start:end]...),
		}
		if end < len(all) {
			g.Next = sel.Link(param, page+1)
		}
		if page > 1 {
			g.Previous = sel.Link(param, page-1)
		}
		out[k] = g
	}
	return out
}
