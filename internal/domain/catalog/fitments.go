package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const fitmentColumns = `id, product_id, make, model, year_start, year_end, trim, drive_type, body_class`

// fitmentDetailSelect joins each record with its product and category. Every
// joined column may be NULL.
const fitmentDetailSelect = `
	SELECT f.id, f.product_id, f.make, f.model, f.year_start, f.year_end, f.trim, f.drive_type, f.body_class,
		p.id, p.name, p.slug, p.image_url, p.price, p.stars, p.category_id, p.stock_status,
		p.warranty, p.delivery_days, p.return_days, p.description, p.created_at, p.updated_at,
		c.id, c.name, c.slug, c.parent_id, c.description, c.created_at, c.updated_at`

const fitmentDetailFrom = `
	FROM fitments f
	LEFT JOIN products p ON p.id = f.product_id
	LEFT JOIN categories c ON c.id = p.category_id`

var fitmentOrderings = map[string]string{
	"price":  "p.price ASC NULLS LAST",
	"-price": "p.price DESC NULLS LAST",
	"stars":  "p.stars ASC NULLS LAST",
	"-stars": "p.stars DESC NULLS LAST",
}

const defaultFitmentOrdering = "-price"

// FitmentOrderingAllowed reports whether ordering is a supported parts sort.
func FitmentOrderingAllowed(ordering string) bool {
	_, ok := fitmentOrderings[ordering]
	return ok
}

func scanFitment(row pgx.Row) (*FitmentRecord, error) {
	f := &FitmentRecord{}
	err := row.Scan(&f.ID, &f.ProductID, &f.Make, &f.Model, &f.YearStart, &f.YearEnd,
		&f.Trim, &f.DriveType, &f.BodyClass)
	return f, err
}

func scanFitmentDetail(row pgx.Row, extra ...any) (FitmentDetail, error) {
	var (
		d FitmentDetail

		pID                           *int64
		pName, pSlug, pDesc           *string
		pImage                        *string
		pPrice                        decimal.NullDecimal
		pStars                        *float64
		pCategory                     *int64
		pStock                        *bool
		pWarranty, pDelivery, pReturn *int
		pCreated, pUpdated            *time.Time

		cID, cParent        *int64
		cName, cSlug, cDesc *string
		cCreated, cUpdated  *time.Time
	)

	f := &d.Record
	dest := append([]any{
		&f.ID, &f.ProductID, &f.Make, &f.Model, &f.YearStart, &f.YearEnd, &f.Trim, &f.DriveType, &f.BodyClass,
		&pID, &pName, &pSlug, &pImage, &pPrice, &pStars, &pCategory, &pStock,
		&pWarranty, &pDelivery, &pReturn, &pDesc, &pCreated, &pUpdated,
		&cID, &cName, &cSlug, &cParent, &cDesc, &cCreated, &cUpdated,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return d, err
	}

	if pID != nil {
		d.Product = &Product{
			ID:           *pID,
			Name:         deref(pName),
			Slug:         deref(pSlug),
			ImageURL:     pImage,
			Price:        pPrice.Decimal,
			Stars:        pStars,
			CategoryID:   pCategory,
			StockStatus:  deref(pStock),
			Warranty:     deref(pWarranty),
			DeliveryDays: deref(pDelivery),
			ReturnDays:   deref(pReturn),
			Description:  deref(pDesc),
			CreatedAt:    deref(pCreated),
			UpdatedAt:    deref(pUpdated),
		}
	}
	if cID != nil {
		d.Category = &Category{
			ID:          *cID,
			Name:        deref(cName),
			Slug:        deref(cSlug),
			ParentID:    cParent,
			Description: deref(cDesc),
			CreatedAt:   deref(cCreated),
			UpdatedAt:   deref(cUpdated),
		}
	}
	return d, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (r *Repository) checkFitmentProduct(ctx context.Context, productID *int64) error {
	if productID == nil {
		return nil
	}
	if _, err := r.GetProductByID(ctx, *productID); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return invalid("product_id", fmt.Sprintf("product with ID %d does not exist", *productID))
		}
		return err
	}
	return nil
}

func (r *Repository) CreateFitment(ctx context.Context, f *FitmentRecord) (*FitmentRecord, error) {
	if err := validateFitment(f); err != nil {
		return nil, err
	}
	if err := r.checkFitmentProduct(ctx, f.ProductID); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO fitments (product_id, make, model, year_start, year_end, trim, drive_type, body_class)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + fitmentColumns

	created, err := scanFitment(r.db.QueryRow(ctx, query,
		f.ProductID, f.Make, f.Model, f.YearStart, f.YearEnd, f.Trim, f.DriveType, f.BodyClass))
	if err != nil {
		return nil, fmt.Errorf("create fitment: %w", err)
	}
	return created, nil
}

func (r *Repository) GetFitmentDetail(ctx context.Context, id int64) (*FitmentDetail, error) {
	d, err := scanFitmentDetail(r.db.QueryRow(ctx, fitmentDetailSelect+fitmentDetailFrom+` WHERE f.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFitmentNotFound
		}
		return nil, fmt.Errorf("get fitment: %w", err)
	}
	return &d, nil
}

func (r *Repository) UpdateFitment(ctx context.Context, f *FitmentRecord) (*FitmentRecord, error) {
	if f.ID == 0 {
		return nil, invalid("id", "fitment ID is required")
	}
	if err := validateFitment(f); err != nil {
		return nil, err
	}
	if err := r.checkFitmentProduct(ctx, f.ProductID); err != nil {
		return nil, err
	}

	query := `
		UPDATE fitments
		SET product_id = $1, make = $2, model = $3, year_start = $4, year_end = $5,
			trim = $6, drive_type = $7, body_class = $8
		WHERE id = $9
		RETURNING ` + fitmentColumns

	updated, err := scanFitment(r.db.QueryRow(ctx, query,
		f.ProductID, f.Make, f.Model, f.YearStart, f.YearEnd, f.Trim, f.DriveType, f.BodyClass, f.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFitmentNotFound
		}
		return nil, fmt.Errorf("update fitment: %w", err)
	}
	return updated, nil
}

func (r *Repository) DeleteFitment(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM fitments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete fitment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrFitmentNotFound
	}
	return nil
}

// ListFitments backs the public parts listing. Make and model match exactly
// ignoring case; body, drive and search are contains matches.
func (r *Repository) ListFitments(ctx context.Context, f FitmentFilter) ([]FitmentDetail, int, error) {
	orderBy, ok := fitmentOrderings[f.Ordering]
	if !ok {
		orderBy = fitmentOrderings[defaultFitmentOrdering]
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 10
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	where := `
		WHERE ($1 = '' OR c.slug = $1)
		AND ($2 = '' OR LOWER(f.make) = LOWER($2))
		AND ($3 = '' OR LOWER(f.model) = LOWER($3))
		AND ($4 = '' OR f.body_class ILIKE $4)
		AND ($5 = '' OR f.drive_type ILIKE $5)
		AND ($6 = '' OR p.name ILIKE $6)`
	args := []any{
		f.CategorySlug, f.Make, f.Model,
		likePattern(f.BodyClass), likePattern(f.DriveType), likePattern(f.Search),
	}

	query := fitmentDetailSelect + `, COUNT(*) OVER() AS total_count` + fitmentDetailFrom + where +
		` ORDER BY ` + orderBy + `, f.id ASC LIMIT $7 OFFSET $8`

	rows, err := r.db.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list fitments: %w", err)
	}
	defer rows.Close()

	list := make([]FitmentDetail, 0, f.Limit)
	var total int
	for rows.Next() {
		d, err := scanFitmentDetail(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan fitment: %w", err)
		}
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}

	if len(list) == 0 && f.Offset > 0 {
		if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+fitmentDetailFrom+where, args...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count fitments: %w", err)
		}
	}

	return list, total, nil
}

// ListFitmentCandidates returns the base set for vehicle matching ordered by
// record id.
func (r *Repository) ListFitmentCandidates(ctx context.Context, q CandidateQuery) ([]FitmentDetail, error) {
	query := fitmentDetailSelect + fitmentDetailFrom + `
		WHERE LOWER(f.make) = LOWER($1)
		AND LOWER(f.model) = LOWER($2)
		AND f.year_start <= $4
		AND f.year_end >= $3
		ORDER BY f.id ASC`

	rows, err := r.db.Query(ctx, query, q.Make, q.Model, q.YearFrom, q.YearTo)
	if err != nil {
		return nil, fmt.Errorf("list fitment candidates: %w", err)
	}
	defer rows.Close()

	list := []FitmentDetail{}
	for rows.Next() {
		d, err := scanFitmentDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fitment candidate: %w", err)
		}
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return list, nil
}
