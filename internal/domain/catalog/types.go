package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	ParentID    *int64    `json:"parent_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product is a catalog entry. Price is stored as NUMERIC(10,2).
type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	ImageURL     *string         `json:"image_url"`
	Price        decimal.Decimal `json:"price"`
	Stars        *float64        `json:"stars"`
	CategoryID   *int64          `json:"category_id"`
	StockStatus  bool            `json:"stock_status"`
	Warranty     int             `json:"warranty"`
	DeliveryDays int             `json:"delivery_days"`
	ReturnDays   int             `json:"return_days"`
	Description  string          `json:"description"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type ProductImage struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	ImageURL  string    `json:"image_url"`
	Alt       *string   `json:"alt"`
	IsPrimary bool      `json:"is_primary"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// FitmentRecord describes one vehicle range a physical part fits.
// ProductID is optional; orphan records are valid.
type FitmentRecord struct {
	ID        int64   `json:"id"`
	ProductID *int64  `json:"product_id"`
	Make      string  `json:"make"`
	Model     string  `json:"model"`
	YearStart int     `json:"year_start"`
	YearEnd   int     `json:"year_end"`
	Trim      *string `json:"trim"`
	DriveType *string `json:"drive_type"`
	BodyClass *string `json:"body_class"`
}

// FitmentDetail is a fitment record joined with its product and that
// product's category. Product and Category are nil when the join misses.
type FitmentDetail struct {
	Record   FitmentRecord
	Product  *Product
	Category *Category
}

type ProductDetail struct {
	Product  *Product         `json:"product"`
	Category *Category        `json:"category"`
	Images   []*ProductImage  `json:"images"`
	Fitments []*FitmentRecord `json:"fitments"`
}

// ProductFilter drives the public product listing.
type ProductFilter struct {
	CategorySlug string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Ordering     string
	Limit        int
	Offset       int
}

// FitmentFilter drives the public parts listing.
type FitmentFilter struct {
	CategorySlug string
	Make         string
	Model        string
	BodyClass    string
	DriveType    string
	Search       string
	Ordering     string
	Limit        int
	Offset       int
}

// CandidateQuery selects the base fitment set: make and model compared
// case-insensitively, [year_start, year_end] overlapping [YearFrom, YearTo].
type CandidateQuery struct {
	Make     string
	Model    string
	YearFrom int
	YearTo   int
}

type Admin struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  password  `json:"-"`
	IsStaff   bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
}

type password struct {
	text *string
	hash []byte
}

func (p *password) Set(text string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(text), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	p.text = &text
	p.hash = hash

	return nil
}

func (p *password) Compare(text string) error {
	return bcrypt.CompareHashAndPassword(p.hash, []byte(text))
}
