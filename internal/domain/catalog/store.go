package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type CategoryStore interface {
	CreateCategory(ctx context.Context, c *Category) (*Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	ListCategories(ctx context.Context, limit, offset int) ([]*Category, int, error)
	ListChildCategories(ctx context.Context, parentID int64) ([]*Category, error)
	UpdateCategory(ctx context.Context, c *Category) (*Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type ProductStore interface {
	CreateProduct(ctx context.Context, p *Product, images []*ProductImage) (*Product, error)
	GetProductByID(ctx context.Context, id int64) (*Product, error)
	GetProductDetailBySlug(ctx context.Context, slug string) (*ProductDetail, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]*Product, int, error)
	ListAllProducts(ctx context.Context) ([]*Product, error)
	// UpdateProduct replaces the product's images wholesale when images is
	// non-nil and leaves them untouched when it is nil.
	UpdateProduct(ctx context.Context, p *Product, images []*ProductImage) (*Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListProductImages(ctx context.Context, productID int64) ([]*ProductImage, error)
}

type FitmentStore interface {
	CreateFitment(ctx context.Context, f *FitmentRecord) (*FitmentRecord, error)
	GetFitmentDetail(ctx context.Context, id int64) (*FitmentDetail, error)
	UpdateFitment(ctx context.Context, f *FitmentRecord) (*FitmentRecord, error)
	DeleteFitment(ctx context.Context, id int64) error
	ListFitments(ctx context.Context, f FitmentFilter) ([]FitmentDetail, int, error)
	ListFitmentCandidates(ctx context.Context, q CandidateQuery) ([]FitmentDetail, error)
}

type AdminStore interface {
	CreateAdmin(ctx context.Context, username, email, plain string) (*Admin, error)
	GetAdminByID(ctx context.Context, id int64) (*Admin, error)
	GetAdminByUsername(ctx context.Context, username string) (*Admin, error)
}

// Repository implements every catalog store on top of a pgx pool.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ------------------------------------
// Transaction helper
// ------------------------------------
func (r *Repository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Printf("warning: rollback failed: %v", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
