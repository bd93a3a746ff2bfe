package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

const adminColumns = `id, username, email, password, is_staff, created_at`

func scanAdmin(row pgx.Row) (*Admin, error) {
	a := &Admin{}
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.Password.hash, &a.IsStaff, &a.CreatedAt)
	return a, err
}

// CreateAdmin stores a staff account with a bcrypt hash of plain.
func (r *Repository) CreateAdmin(ctx context.Context, username, email, plain string) (*Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("username", "username is required")
	}
	if len(plain) < 8 {
		return nil, invalid("password", "password must be at least 8 characters")
	}

	a := &Admin{Username: username, Email: email, IsStaff: true}
	if err := a.Password.Set(plain); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	query := `
		INSERT INTO admins (username, email, password, is_staff)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	if err := r.db.QueryRow(ctx, query, a.Username, a.Email, a.Password.hash, a.IsStaff).
		Scan(&a.ID, &a.CreatedAt); err != nil {
		if isUniqueViolation(err, "") {
			return nil, fmt.Errorf("admin %q: %w", username, ErrDuplicateName)
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return a, nil
}

func (r *Repository) GetAdminByID(ctx context.Context, id int64) (*Admin, error) {
	return r.getAdmin(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = $1`, id)
}

func (r *Repository) GetAdminByUsername(ctx context.Context, username string) (*Admin, error) {
	return r.getAdmin(ctx, `SELECT `+adminColumns+` FROM admins WHERE username = $1`, username)
}

func (r *Repository) getAdmin(ctx context.Context, query string, arg any) (*Admin, error) {
	a, err := scanAdmin(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return a, nil
}
