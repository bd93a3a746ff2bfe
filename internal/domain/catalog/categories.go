package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"partsfit/internal/dbx"
)

const categoryColumns = `id, name, slug, parent_id, description, created_at, updated_at`

// slugAttempts bounds the retries when a concurrent insert takes a derived slug.
const slugAttempts = 3

func scanCategory(row pgx.Row) (*Category, error) {
	c := &Category{}
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// CreateCategory inserts c. An empty slug is derived from the name and
// suffixed until unique; an explicit slug that is taken is rejected.
func (r *Repository) CreateCategory(ctx context.Context, c *Category) (*Category, error) {
	if err := validateCategory(c); err != nil {
		return nil, err
	}

	var nameTaken bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE LOWER(name) = LOWER($1))`, c.Name).Scan(&nameTaken); err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if nameTaken {
		return nil, fmt.Errorf("category %q: %w", c.Name, ErrDuplicateName)
	}

	if c.ParentID != nil {
		if _, err := r.GetCategoryByID(ctx, *c.ParentID); err != nil {
			if errors.Is(err, ErrCategoryNotFound) {
				return nil, fmt.Errorf("parent category %d: %w", *c.ParentID, ErrInvalidParent)
			}
			return nil, err
		}
	}

	derived := c.Slug == ""
	if !derived {
		var taken bool
		if err := r.db.QueryRow(ctx, slugTables["categories"], c.Slug).Scan(&taken); err != nil {
			return nil, fmt.Errorf("check category slug: %w", err)
		}
		if taken {
			return nil, fmt.Errorf("category slug %q: %w", c.Slug, ErrDuplicateSlug)
		}
	}

	query := `
        INSERT INTO categories (name, slug, parent_id, description)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + categoryColumns

	slug := c.Slug
	for attempt := 0; attempt < slugAttempts; attempt++ {
		if derived {
			base := Slugify(c.Name)
			if base == "" {
				base = "category"
			}
			var err error
			if slug, err = nextFreeSlug(ctx, r.db, "categories", base); err != nil {
				return nil, err
			}
		}

		created, err := scanCategory(r.db.QueryRow(ctx, query, c.Name, slug, c.ParentID, c.Description))
		if err == nil {
			return created, nil
		}
		switch {
		case isUniqueViolation(err, "categories_slug_key") && derived:
			continue
		case isUniqueViolation(err, "categories_slug_key"):
			return nil, fmt.Errorf("category slug %q: %w", slug, ErrDuplicateSlug)
		case isUniqueViolation(err, "categories_name_key"):
			return nil, fmt.Errorf("category %q: %w", c.Name, ErrDuplicateName)
		default:
			return nil, fmt.Errorf("create category: %w", err)
		}
	}
	return nil, fmt.Errorf("category slug for %q: %w", c.Name, ErrDuplicateSlug)
}

func (r *Repository) GetCategoryByID(ctx context.Context, id int64) (*Category, error) {
	return getCategory(ctx, r.db, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
}

func (r *Repository) GetCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	return getCategory(ctx, r.db, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
}

func getCategory(ctx context.Context, q dbx.Querier, query string, arg any) (*Category, error) {
	c, err := scanCategory(q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *Repository) ListCategories(ctx context.Context, limit, offset int) ([]*Category, int, error) {
	if limit < 1 || limit > 100 {
		limit = 30
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + categoryColumns + `, COUNT(*) OVER() AS total_count
		FROM categories
		ORDER BY name, id
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	list := []*Category{}
	var total int
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.Description,
			&c.CreatedAt, &c.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	// Paged past the end: the window count is unavailable.
	if len(list) == 0 && offset > 0 {
		if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count categories: %w", err)
		}
	}

	return list, total, nil
}

func (r *Repository) ListChildCategories(ctx context.Context, parentID int64) ([]*Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE parent_id = $1 ORDER BY name, id`, parentID)
	if err != nil {
		return nil, fmt.Errorf("list child categories: %w", err)
	}
	defer rows.Close()

	children := []*Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child category: %w", err)
		}
		children = append(children, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return children, nil
}

// UpdateCategory writes name, slug, parent and description as given. The slug
// is never re-derived from a new name.
func (r *Repository) UpdateCategory(ctx context.Context, c *Category) (*Category, error) {
	if err := validateCategory(c); err != nil {
		return nil, err
	}
	if !IsValidSlug(c.Slug) {
		return nil, invalid("slug", "invalid slug format")
	}

	if c.ParentID != nil {
		if err := r.checkParent(ctx, c.ID, *c.ParentID); err != nil {
			return nil, err
		}
	}

	query := `
        UPDATE categories
        SET name = $1, slug = $2, parent_id = $3, description = $4, updated_at = NOW()
        WHERE id = $5
        RETURNING ` + categoryColumns

	updated, err := scanCategory(r.db.QueryRow(ctx, query, c.Name, c.Slug, c.ParentID, c.Description, c.ID))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrCategoryNotFound
		case isUniqueViolation(err, "categories_slug_key"):
			return nil, fmt.Errorf("category slug %q: %w", c.Slug, ErrDuplicateSlug)
		case isUniqueViolation(err, "categories_name_key"):
			return nil, fmt.Errorf("category %q: %w", c.Name, ErrDuplicateName)
		}
		return nil, fmt.Errorf("update category: %w", err)
	}

	return updated, nil
}

// checkParent rejects a missing parent and any parent whose ancestor chain
// reaches the category itself.
func (r *Repository) checkParent(ctx context.Context, id, parentID int64) error {
	seen := map[int64]bool{}
	current := &parentID
	for current != nil {
		if *current == id {
			return fmt.Errorf("category %d cannot descend from itself: %w", id, ErrInvalidParent)
		}
		if seen[*current] {
			return nil
		}
		seen[*current] = true

		parent, err := r.GetCategoryByID(ctx, *current)
		if err != nil {
			if errors.Is(err, ErrCategoryNotFound) {
				return fmt.Errorf("parent category %d: %w", *current, ErrInvalidParent)
			}
			return err
		}
		current = parent.ParentID
	}
	return nil
}

// DeleteCategory removes one category. Children keep existing with a NULL
// parent (ON DELETE SET NULL); products lose their category the same way.
func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
