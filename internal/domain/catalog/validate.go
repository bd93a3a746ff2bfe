package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

const maxStars = 9.9

func validateCategory(c *Category) error {
	if c == nil {
		return invalid("category", "cannot be nil")
	}
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", "category name cannot be empty")
	}
	if c.ParentID != nil && c.ID != 0 && *c.ParentID == c.ID {
		return invalid("parent_id", "category cannot be its own parent")
	}
	return nil
}

// validateProduct enforces the write-time ranges. Values are rejected,
// never clamped.
func validateProduct(p *Product) error {
	if p == nil {
		return invalid("product", "cannot be nil")
	}
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name", "product name cannot be empty")
	}
	if p.Price.LessThan(decimal.Zero) {
		return invalid("price", "Price must be a positive number")
	}
	if p.Stars != nil && (*p.Stars < 0 || *p.Stars > maxStars) {
		return invalid("stars", "Stars must be between 0 and 9.9")
	}
	if p.Warranty < 0 || p.Warranty > 100 {
		return invalid("warranty", "Warranty must be between 0 and 100 years")
	}
	if p.DeliveryDays < 0 || p.DeliveryDays > 365 {
		return invalid("delivery_days", "Delivery days must be between 0 and 365")
	}
	if p.ReturnDays < 0 || p.ReturnDays > 365 {
		return invalid("return_days", "Return days must be between 0 and 365")
	}
	return nil
}

func validateFitment(f *FitmentRecord) error {
	if f == nil {
		return invalid("fitment", "cannot be nil")
	}
	if strings.TrimSpace(f.Make) == "" {
		return invalid("make", "make is required")
	}
	if strings.TrimSpace(f.Model) == "" {
		return invalid("model", "model is required")
	}
	if f.YearStart > f.YearEnd {
		return invalid("year_end", "year_end must be greater than or equal to year_start")
	}
	return nil
}
