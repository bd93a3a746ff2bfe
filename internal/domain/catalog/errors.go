package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
	ErrFitmentNotFound  = fmt.Errorf("fitment %w", ErrNotFound)
	ErrAdminNotFound    = fmt.Errorf("admin %w", ErrNotFound)
	ErrDuplicateSlug    = errors.New("slug already exists")
	ErrDuplicateName    = errors.New("name already exists")
	ErrInvalidParent    = errors.New("invalid parent category")
)

// ValidationError reports a single rejected field on an admin write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
