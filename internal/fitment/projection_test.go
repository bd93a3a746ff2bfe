package fitment

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"partsfit/internal/domain/catalog"
)

func TestProjectOrphanDefaults(t *testing.T) {
	v := Project(record(7, "sedan", "", 2013, 2017))
	p := v.Product
	if p.ID != nil || p.Name != "—" || p.Slug != "" || p.Category != "uncategorized" {
		t.Fatalf("unexpected orphan product: %+v", p)
	}
	if !p.Price.Equal(decimal.Zero) || p.Stars != nil || p.StockStatus || p.ImageURL != nil {
		t.Fatalf("unexpected orphan product: %+v", p)
	}
	if p.Warranty != 0 || p.DeliveryDays != 0 || p.ReturnDays != 0 {
		t.Fatalf("unexpected orphan product: %+v", p)
	}
	if v.DriveType != nil || v.BodyClass == nil || *v.BodyClass != "sedan" {
		t.Fatalf("record fields not carried: %+v", v)
	}
}

func TestProjectProductWithoutCategory(t *testing.T) {
	d := record(3, "", "", 2013, 2017)
	d.Product = &catalog.Product{ID: 9, Name: "Brake Pad", Slug: "brake-pad", Price: decimal.RequireFromString("49.99"), StockStatus: true}
	v := Project(d)
	if v.Product.Category != "uncategorized" || v.Product.Name != "Brake Pad" || !v.Product.StockStatus {
		t.Fatalf("unexpected projection: %+v", v.Product)
	}
	if k := CategoryKey(d); k.Key != UncategorizedKey {
		t.Fatalf("key = %q", k.Key)
	}
}

func TestProjectJSONShape(t *testing.T) {
	cat := &catalog.Category{ID: 1, Name: "Brakes", Slug: "brakes"}
	d := categorized(1, cat)
	data, err := json.Marshal(Project(d))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"id", "product", "make", "model", "year_start", "year_end", "trim", "drive_type", "body_class"} {
		if _, ok := m[k]; !ok {
			t.Errorf("missing %q in %s", k, data)
		}
	}
	product := m["product"].(map[string]any)
	if product["category"] != "brakes" || product["price"] != "12.5" {
		t.Fatalf("unexpected product json: %v", product)
	}
}
