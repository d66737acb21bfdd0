package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ironkart/ironkart/internal/domain/content"
)

const (
	getAboutSQL = `SELECT id, title, content, updated_at
		FROM about_content ORDER BY updated_at DESC LIMIT 1`

	upsertAboutSQL = `INSERT INTO about_content (id, title, content)
		VALUES ($1, $2, $3)
		ON CONFLICT (id)
		DO UPDATE SET title = EXCLUDED.title, content = EXCLUDED.content, updated_at = now()`
)

var _ content.Repository = (*ContentRepository)(nil)

// ContentRepository implements content.Repository backed by PostgreSQL.
type ContentRepository struct {
	pool *pgxpool.Pool
}

// NewContentRepository returns a ContentRepository that uses the given pool.
func NewContentRepository(pool *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{pool: pool}
}

// Get returns the saved about content, or content.ErrNotFound when none exists.
func (r *ContentRepository) Get(ctx context.Context) (*content.About, error) {
	rows, err := r.pool.Query(ctx, getAboutSQL)
	if err != nil {
		return nil, fmt.Errorf("getting about content: %w", err)
	}

	a, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (content.About, error) {
		var a content.About
		err := row.Scan(&a.ID, &a.Title, &a.Content, &a.UpdatedAt)
		return a, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, content.ErrNotFound
		}
		return nil, fmt.Errorf("getting about content: %w", err)
	}
	return &a, nil
}

// Upsert saves the about content, replacing any prior row with the same ID.
func (r *ContentRepository) Upsert(ctx context.Context, a *content.About) error {
	_, err := r.pool.Exec(ctx, upsertAboutSQL, a.ID, a.Title, a.Content)
	if err != nil {
		return fmt.Errorf("upserting about content: %w", err)
	}
	return nil
}
