package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"partsfit/internal/dbx"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
	edgeHyphens  = regexp.MustCompile(`^-+|-+$`)
	validSlug    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify lower-cases s and collapses every run of non-alphanumerics into a
// single hyphen.
func Slugify(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	return edgeHyphens.ReplaceAllString(slug, "")
}

func IsValidSlug(slug string) bool {
	return len(slug) <= 120 && validSlug.MatchString(slug)
}

// slugTables whitelists the tables nextFreeSlug may probe.
var slugTables = map[string]string{
	"categories": "SELECT EXISTS(SELECT 1 FROM categories WHERE slug = $1)",
	"products":   "SELECT EXISTS(SELECT 1 FROM products WHERE slug = $1)",
}

// nextFreeSlug returns base, or base-1, base-2, ... whichever is free first.
func nextFreeSlug(ctx context.Context, q dbx.Querier, table, base string) (string, error) {
	query, ok := slugTables[table]
	if !ok {
		return "", fmt.Errorf("slug lookup on unknown table %q", table)
	}
	return firstFree(base, func(candidate string) (bool, error) {
		var exists bool
		if err := q.QueryRow(ctx, query, candidate).Scan(&exists); err != nil {
			return false, fmt.Errorf("check %s slug: %w", table, err)
		}
		return exists, nil
	})
}

func firstFree(base string, taken func(string) (bool, error)) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		exists, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
