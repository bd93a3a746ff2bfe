package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"partsfit/internal/domain/catalog"
)

// Container groups the stores the API depends on. Tests may fill in only the
// stores a handler uses.
type Container struct {
	pool       *pgxpool.Pool
	Categories catalog.CategoryStore
	Products   catalog.ProductStore
	Fitments   catalog.FitmentStore
	Admins     catalog.AdminStore
}

func NewContainer(db *pgxpool.Pool) *Container {
	repo := catalog.NewRepository(db)
	return &Container{
		pool:       db,
		Categories: repo,
		Products:   repo,
		Fitments:   repo,
		Admins:     repo,
	}
}

// Ping checks the database behind the container.
func (c *Container) Ping(ctx context.Context) error {
	if c.pool == nil {
		return errors.New("storage: no database pool")
	}
	return c.pool.Ping(ctx)
}
