package params

import (
	"net/url"
	"testing"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantPage   int
		wantOffset int
	}{
		{"", 10, 1, 0},
		{"page=3", 10, 3, 20},
		{"page=2&page_size=25", 25, 2, 25},
		{"page_size=500", 100, 1, 0},
		{"page_size=0", 10, 1, 0},
		{"page=-4&page_size=abc", 10, 1, 0},
		{"page=9223372036854775807&page_size=20", 20, MaxPage, (MaxPage - 1) * 20},
		{"page=99999999999999999999999", 10, MaxPage, (MaxPage - 1) * 10},
		{"page=-99999999999999999999999", 10, 1, 0},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		p := ParsePagination(q)
		if p.Limit != tt.wantLimit || p.Page != tt.wantPage || p.Offset != tt.wantOffset {
			t.Errorf("%q: got limit=%d page=%d offset=%d", tt.query, p.Limit, p.Page, p.Offset)
		}
	}
}

func TestPageNumberFallsBackToOne(t *testing.T) {
	q := url.Values{"page_sedan": {"x"}, "page_suv": {"0"}, "page_truck": {"4"}}
	for param, want := range map[string]int{"page_sedan": 1, "page_suv": 1, "page_truck": 4, "page_missing": 1} {
		if got := PageNumber(q, param); got != want {
			t.Errorf("%s: got %d, want %d", param, got, want)
		}
	}
}

func TestGroupPageParam(t *testing.T) {
	if got := GroupPageParam("Engine Parts"); got != "page_engine_parts" {
		t.Fatalf("got %q", got)
	}
}

func TestComputeMeta(t *testing.T) {
	p := Pagination{Limit: 10, Page: 2}
	p.ComputeMeta(25)
	if p.TotalPages != 3 || !p.HasNext || !p.HasPrev {
		t.Fatalf("unexpected meta: %+v", p)
	}
	p = Pagination{Limit: 10, Page: 3}
	p.ComputeMeta(25)
	if p.HasNext {
		t.Fatal("last page should not have next")
	}
}

func TestParsePaginationHugePageMeta(t *testing.T) {
	p := ParsePagination(url.Values{"page": {"9223372036854775807"}})
	if p.Offset < 0 {
		t.Fatalf("negative offset %d", p.Offset)
	}
	p.ComputeMeta(35)
	if p.HasNext {
		t.Errorf("page %d of 35 rows reports a next page", p.Page)
	}
}
