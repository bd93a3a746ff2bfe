package fitment

import (
	"net/url"
	"testing"

	"github.com/shopspring/decimal"

	"partsfit/internal/domain/catalog"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func categorized(id int64, cat *catalog.Category) catalog.FitmentDetail {
	d := record(id, "sedan", "fwd", 2013, 2017)
	pid := 100 + id
	d.Record.ProductID = &pid
	d.Product = &catalog.Product{ID: pid, Name: "Part", Slug: "part", Price: decimal.RequireFromString("12.50"), CategoryID: &cat.ID}
	d.Category = cat
	return d
}

func fixture(sedans, suvs int) []catalog.FitmentDetail {
	sedan := &catalog.Category{ID: 1, Name: "Sedan", Slug: "sedan"}
	suv := &catalog.Category{ID: 2, Name: "SUV", Slug: "suv"}
	var out []catalog.FitmentDetail
	id := int64(1)
	for i := 0; i < sedans; i++ {
		out = append(out, categorized(id, sedan))
		id++
	}
	for i := 0; i < suvs; i++ {
		out = append(out, categorized(id, suv))
		id++
	}
	return out
}

func TestPaginateByCategoryIndependence(t *testing.T) {
	items := fixture(25, 12)

	first := GroupParts(items, NewPageSelector(mustURL(t, "http://api.test/v1/fitment")), 10)
	advanced := GroupParts(items, NewPageSelector(mustURL(t, "http://api.test/v1/fitment?page_sedan=2")), 10)

	if len(first) != 2 {
		t.Fatalf("expected two groups, got %d", len(first))
	}

	if got, want := advanced["suv"].Results, first["suv"].Results; !samePartIDs(got, want) {
		t.Fatalf("advancing page_sedan changed the suv page")
	}
	if advanced["sedan"].Results[0].ID != 11 {
		t.Fatalf("sedan page 2 starts at %d, want 11", advanced["sedan"].Results[0].ID)
	}

	sedan := advanced["sedan"]
	if sedan.Count != 25 || sedan.CategoryName != "Sedan" {
		t.Fatalf("unexpected sedan meta: %+v", sedan)
	}
	if sedan.Next == nil || *sedan.Next != "http://api.test/v1/fitment?page_sedan=3" {
		t.Fatalf("next = %v", sedan.Next)
	}
	if sedan.Previous == nil || *sedan.Previous != "http://api.test/v1/fitment" {
		t.Fatalf("previous = %v", sedan.Previous)
	}

	suv := first["suv"]
	if suv.Previous != nil || suv.Next == nil || *suv.Next != "http://api.test/v1/fitment?page_suv=2" {
		t.Fatalf("unexpected suv links: next=%v previous=%v", suv.Next, suv.Previous)
	}
}

func TestPaginateKeepsOtherGroupParams(t *testing.T) {
	items := fixture(25, 25)
	out := GroupParts(items, NewPageSelector(mustURL(t, "http://api.test/v1/fitment?page_sedan=2&page_suv=3")), 10)

	if next := out["sedan"].Next; next == nil || *next != "http://api.test/v1/fitment?page_sedan=3&page_suv=3" {
		t.Fatalf("sedan next = %v", next)
	}
	if prev := out["suv"].Previous; prev == nil || *prev != "http://api.test/v1/fitment?page_sedan=2&page_suv=2" {
		t.Fatalf("suv previous = %v", prev)
	}
	if out["suv"].Next != nil {
		t.Fatal("last suv page should not have next")
	}
}

func TestPaginatePastEndIsEmpty(t *testing.T) {
	out := GroupParts(fixture(3, 0), NewPageSelector(mustURL(t, "http://api.test/v1/fitment?page_sedan=9")), 10)
	g := out["sedan"]
	if len(g.Results) != 0 || g.Results == nil {
		t.Fatalf("expected empty non-nil results, got %v", g.Results)
	}
	if g.Next != nil || g.Previous == nil {
		t.Fatalf("unexpected links: next=%v previous=%v", g.Next, g.Previous)
	}
	if g.Count != 3 {
		t.Fatalf("count = %d", g.Count)
	}
}

func TestPaginateInvalidPageFallsBackToFirst(t *testing.T) {
	out := GroupParts(fixture(12, 0), NewPageSelector(mustURL(t, "http://api.test/v1/fitment?page_sedan=abc")), 10)
	if g := out["sedan"]; len(g.Results) != 10 || g.Results[0].ID != 1 || g.Previous != nil {
		t.Fatalf("unexpected first page: %+v", g)
	}
}

func TestPaginateOrphansAreUncategorized(t *testing.T) {
	items := append(fixture(1, 0), record(50, "sedan", "fwd", 2013, 2017))
	out := GroupParts(items, NewPageSelector(mustURL(t, "http://api.test/v1/fitment")), 10)

	g, ok := out[UncategorizedKey]
	if !ok {
		t.Fatalf("missing uncategorized group, got keys %v", keys(out))
	}
	if g.CategoryName != "Uncategorized" || g.Count != 1 {
		t.Fatalf("unexpected group meta: %+v", g)
	}
	if _, ok := out["suv"]; ok {
		t.Fatal("categories without matches must be absent")
	}
}

func TestPaginatePageSizeBounds(t *testing.T) {
	items := fixture(150, 0)
	sel := NewPageSelector(mustURL(t, "http://api.test/v1/fitment"))
	if n := len(GroupParts(items, sel, 500)["sedan"].Results); n != 100 {
		t.Fatalf("page size capped to %d, want 100", n)
	}
	if n := len(GroupParts(items, sel, 0)["sedan"].Results); n != 10 {
		t.Fatalf("default page size %d, want 10", n)
	}
}

func samePartIDs(a, b []PartView) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

func keys[T any](m map[string]Group[T]) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestPaginateHugePageIsEmpty(t *testing.T) {
	items := fixture(3, 1)
	sel := NewPageSelector(mustURL(t, "http://api.test/v1/fitment?page_sedan=9223372036854775807"))

	got := PaginateByCategory(items, CategoryKey, sel, 10)

	sedan := got["sedan"]
	if sedan.Count != 3 || len(sedan.Results) != 0 || sedan.Next != nil {
		t.Fatalf("unexpected sedan group: %+v", sedan)
	}
	if sedan.Previous == nil {
		t.Fatal("expected a previous link")
	}
	if len(got["suv"].Results) != 1 {
		t.Errorf("suv page changed: %+v", got["suv"])
	}
}
