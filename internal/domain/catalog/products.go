package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"partsfit/internal/dbx"
)

const productColumns = `id, name, slug, image_url, price, stars, category_id, stock_status,
	warranty, delivery_days, return_days, description, created_at, updated_at`

const productImageColumns = `id, product_id, image_url, alt, is_primary, sort_order, created_at`

var productOrderings = map[string]string{
	"price":       "price ASC",
	"-price":      "price DESC",
	"stars":       "stars ASC NULLS FIRST",
	"-stars":      "stars DESC NULLS LAST",
	"name":        "LOWER(name) ASC",
	"-name":       "LOWER(name) DESC",
	"updated_at":  "updated_at ASC",
	"-updated_at": "updated_at DESC",
}

const defaultProductOrdering = "-updated_at"

// ProductOrderingAllowed reports whether ordering is a supported listing sort.
func ProductOrderingAllowed(ordering string) bool {
	_, ok := productOrderings[ordering]
	return ok
}

func scanProduct(row pgx.Row, extra ...any) (*Product, error) {
	p := &Product{}
	dest := append([]any{
		&p.ID, &p.Name, &p.Slug, &p.ImageURL, &p.Price, &p.Stars, &p.CategoryID, &p.StockStatus,
		&p.Warranty, &p.DeliveryDays, &p.ReturnDays, &p.Description, &p.CreatedAt, &p.UpdatedAt,
	}, extra...)
	err := row.Scan(dest...)
	return p, err
}

// CreateProduct inserts p and its images atomically. The first image flagged
// primary stays primary; later flags are cleared.
func (r *Repository) CreateProduct(ctx context.Context, p *Product, images []*ProductImage) (*Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := r.checkProductCategory(ctx, p.CategoryID); err != nil {
		return nil, err
	}

	derived := p.Slug == ""
	base := p.Slug
	if derived {
		if base = Slugify(p.Name); base == "" {
			base = "product"
		}
	}

	query := `
		INSERT INTO products (name, slug, image_url, price, stars, category_id, stock_status,
			warranty, delivery_days, return_days, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + productColumns

	var created *Product
	for attempt := 0; attempt < slugAttempts; attempt++ {
		err := r.WithTx(ctx, func(tx pgx.Tx) error {
			slug := base
			if derived {
				var err error
				if slug, err = nextFreeSlug(ctx, tx, "products", base); err != nil {
					return err
				}
			}

			var err error
			created, err = scanProduct(tx.QueryRow(ctx, query,
				p.Name, slug, p.ImageURL, p.Price, p.Stars, p.CategoryID, p.StockStatus,
				p.Warranty, p.DeliveryDays, p.ReturnDays, p.Description))
			if err != nil {
				return err
			}
			return insertProductImages(ctx, tx, created.ID, images)
		})
		if err == nil {
			return created, nil
		}
		if isUniqueViolation(err, "products_slug_key") {
			if derived {
				continue
			}
			return nil, fmt.Errorf("product slug %q: %w", base, ErrDuplicateSlug)
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	return nil, fmt.Errorf("product slug for %q: %w", p.Name, ErrDuplicateSlug)
}

func insertProductImages(ctx context.Context, q dbx.Querier, productID int64, images []*ProductImage) error {
	const stmt = `
		INSERT INTO product_images (product_id, image_url, alt, is_primary, sort_order)
		VALUES ($1, $2, $3, $4, $5)`

	primarySeen := false
	for i, img := range images {
		if img == nil {
			continue
		}
		isPrimary := img.IsPrimary && !primarySeen
		if isPrimary {
			primarySeen = true
		}
		if _, err := q.Exec(ctx, stmt, productID, img.ImageURL, img.Alt, isPrimary, i); err != nil {
			return fmt.Errorf("insert product image: %w", err)
		}
	}
	return nil
}

func (r *Repository) checkProductCategory(ctx context.Context, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	if _, err := r.GetCategoryByID(ctx, *categoryID); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return invalid("category_id", fmt.Sprintf("category with ID %d does not exist", *categoryID))
		}
		return err
	}
	return nil
}

func (r *Repository) GetProductByID(ctx context.Context, id int64) (*Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *Repository) GetProductDetailBySlug(ctx context.Context, slug string) (*ProductDetail, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE slug = $1`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product by slug: %w", err)
	}

	detail := &ProductDetail{Product: p, Images: []*ProductImage{}, Fitments: []*FitmentRecord{}}

	if p.CategoryID != nil {
		c, err := r.GetCategoryByID(ctx, *p.CategoryID)
		if err != nil && !errors.Is(err, ErrCategoryNotFound) {
			return nil, err
		}
		detail.Category = c
	}

	if detail.Images, err = r.ListProductImages(ctx, p.ID); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT `+fitmentColumns+` FROM fitments WHERE product_id = $1 ORDER BY id`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list product fitments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		f, err := scanFitment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product fitment: %w", err)
		}
		detail.Fitments = append(detail.Fitments, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return detail, nil
}

// ListProducts filters by category slug (the category itself plus its direct
// children) and an inclusive price range.
func (r *Repository) ListProducts(ctx context.Context, f ProductFilter) ([]*Product, int, error) {
	orderBy, ok := productOrderings[f.Ordering]
	if !ok {
		orderBy = productOrderings[defaultProductOrdering]
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 10
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var minPrice, maxPrice any
	if f.MinPrice != nil {
		minPrice = f.MinPrice.String()
	}
	if f.MaxPrice != nil {
		maxPrice = f.MaxPrice.String()
	}

	where := `
		WHERE ($1 = '' OR category_id IN (
			SELECT id FROM categories WHERE slug = $1
			UNION
			SELECT c.id FROM categories c JOIN categories pc ON c.parent_id = pc.id WHERE pc.slug = $1
		))
		AND ($2::numeric IS NULL OR price >= $2::numeric)
		AND ($3::numeric IS NULL OR price <= $3::numeric)`

	query := `SELECT ` + productColumns + `, COUNT(*) OVER() AS total_count FROM products` + where +
		` ORDER BY ` + orderBy + `, id ASC LIMIT $4 OFFSET $5`

	rows, err := r.db.Query(ctx, query, f.CategorySlug, minPrice, maxPrice, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	list := make([]*Product, 0, f.Limit)
	var total int
	for rows.Next() {
		p, err := scanProduct(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}

	if len(list) == 0 && f.Offset > 0 {
		if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where,
			f.CategorySlug, minPrice, maxPrice).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count products: %w", err)
		}
	}

	return list, total, nil
}

func (r *Repository) ListAllProducts(ctx context.Context) ([]*Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}
	defer rows.Close()

	list := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return list, nil
}

func (r *Repository) UpdateProduct(ctx context.Context, p *Product, images []*ProductImage) (*Product, error) {
	if p.ID == 0 {
		return nil, invalid("id", "product ID is required")
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if p.Slug != "" && !IsValidSlug(p.Slug) {
		return nil, invalid("slug", "invalid slug format")
	}
	if err := r.checkProductCategory(ctx, p.CategoryID); err != nil {
		return nil, err
	}

	query := `
		UPDATE products
		SET name = $1, slug = COALESCE(NULLIF($2, ''), slug), image_url = $3, price = $4, stars = $5,
			category_id = $6, stock_status = $7, warranty = $8, delivery_days = $9, return_days = $10,
			description = $11, updated_at = now()
		WHERE id = $12
		RETURNING ` + productColumns

	var updated *Product
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		updated, err = scanProduct(tx.QueryRow(ctx, query,
			p.Name, p.Slug, p.ImageURL, p.Price, p.Stars, p.CategoryID, p.StockStatus,
			p.Warranty, p.DeliveryDays, p.ReturnDays, p.Description, p.ID))
		if err != nil {
			return err
		}

		if images == nil {
			return nil
		}
		if _, err := tx.Exec(ctx, `DELETE FROM product_images WHERE product_id = $1`, p.ID); err != nil {
			return fmt.Errorf("clear product images: %w", err)
		}
		return insertProductImages(ctx, tx, p.ID, images)
	})
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrProductNotFound
		case isUniqueViolation(err, "products_slug_key"):
			return nil, fmt.Errorf("product slug %q: %w", p.Slug, ErrDuplicateSlug)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return updated, nil
}

// DeleteProduct removes the product and, by cascade, its images. Fitment
// records referencing it become orphans.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// ListProductImages returns images primary first, then in insertion order.
func (r *Repository) ListProductImages(ctx context.Context, productID int64) ([]*ProductImage, error) {
	q := `
		SELECT ` + productImageColumns + `
		FROM product_images
		WHERE product_id = $1
		ORDER BY is_primary DESC, sort_order ASC, id ASC`
	rows, err := r.db.Query(ctx, q, productID)
	if err != nil {
		return nil, fmt.Errorf("list product_images: %w", err)
	}
	defer rows.Close()

	out := []*ProductImage{}
	for rows.Next() {
		var img ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.ImageURL, &img.Alt, &img.IsPrimary,
			&img.SortOrder, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product_image: %w", err)
		}
		out = append(out, &img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

// likePattern escapes LIKE wildcards in s and wraps it for a contains match.
// Empty input stays empty so callers can skip the predicate.
func likePattern(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
