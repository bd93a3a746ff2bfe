package fitment

import (
	"github.com/shopspring/decimal"

	"partsfit/internal/domain/catalog"
)

// Placeholder values for records without a product.
const (
	placeholderName       = "—"
	uncategorizedCategory = "Uncategorized"
)

// ProductView is the product embedded in a public part. Orphan records get
// the placeholder zero values.
type ProductView struct {
	ID           *int64          `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	Stars        *float64        `json:"stars"`
	StockStatus  bool            `json:"stock_status"`
	ImageURL     *string         `json:"image_url"`
	Warranty     int             `json:"warranty"`
	DeliveryDays int             `json:"delivery_days"`
	ReturnDays   int             `json:"return_days"`
}

type PartView struct {
	ID        int64       `json:"id"`
	Product   ProductView `json:"product"`
	Make      string      `json:"make"`
	Model     string      `json:"model"`
	YearStart int         `json:"year_start"`
	YearEnd   int         `json:"year_end"`
	Trim      *string     `json:"trim"`
	DriveType *string     `json:"drive_type"`
	BodyClass *string     `json:"body_class"`
}

// Project builds the public view of one joined fitment record.
func Project(d catalog.FitmentDetail) PartView {
	r := d.Record
	return PartView{
		ID:        r.ID,
		Product:   projectProduct(d),
		Make:      r.Make,
		Model:     r.Model,
		YearStart: r.YearStart,
		YearEnd:   r.YearEnd,
		Trim:      r.Trim,
		DriveType: r.DriveType,
		BodyClass: r.BodyClass,
	}
}

func projectProduct(d catalog.FitmentDetail) ProductView {
	p := d.Product
	if p == nil {
		return ProductView{
			Name:     placeholderName,
			Category: UncategorizedKey,
			Price:    decimal.Zero,
		}
	}

	category := UncategorizedKey
	if d.Category != nil {
		category = d.Category.Slug
	}
	id := p.ID
	return ProductView{
		ID:           &id,
		Name:         p.Name,
		Slug:         p.Slug,
		Category:     category,
		Price:        p.Price,
		Stars:        p.Stars,
		StockStatus:  p.StockStatus,
		ImageURL:     p.ImageURL,
		Warranty:     p.Warranty,
		DeliveryDays: p.DeliveryDays,
		ReturnDays:   p.ReturnDays,
	}
}

// ProjectAll keeps the input order.
func ProjectAll(ds []catalog.FitmentDetail) []PartView {
	out := make([]PartView, 0, len(ds))
	for _, d := range ds {
		out = append(out, Project(d))
	}
	return out
}

// CategoryKey keys a record by its product's category slug. Records with no
// product or no category share the uncategorized group.
func CategoryKey(d catalog.FitmentDetail) GroupKey {
	if d.Product == nil || d.Category == nil {
		return GroupKey{Key: UncategorizedKey, Name: uncategorizedCategory}
	}
	return GroupKey{Key: d.Category.Slug, Name: d.Category.Name}
}

// GroupParts pages matched records per category and projects each page.
func GroupParts(records []catalog.FitmentDetail, sel PageSelector, size int) map[string]Group[PartView] {
	grouped := PaginateByCategory(records, CategoryKey, sel, size)
	out := make(map[string]Group[PartView], len(grouped))
	for k, g := range grouped {
		out[k] = Group[PartView]{
			CategoryName: g.CategoryName,
			Count:        g.Count,
			Next:         g.Next,
			Previous:     g.Previous,
			Results:      ProjectAll(g.Results),
		}
	}
	return out
}
