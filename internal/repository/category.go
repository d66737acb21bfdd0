package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ironkart/ironkart/internal/domain/catalog"
)

const (
	listCategoriesSQL = `SELECT id, name, description, image, display_order
		FROM categories ORDER BY display_order, id`

	insertCategorySQL = `INSERT INTO categories (id, name, description, image, display_order)
		VALUES ($1, $2, $3, $4, $5)`

	updateCategorySQL = `UPDATE categories SET
		name = $2, description = $3, image = $4, display_order = $5, updated_at = now()
		WHERE id = $1`

	deleteCategorySQL = `DELETE FROM categories WHERE id = $1`

	upsertCategorySQL = `INSERT INTO categories (id, name, description, image, display_order)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description,
			image = EXCLUDED.image, display_order = EXCLUDED.display_order,
			updated_at = now()`
)

var _ catalog.CategoryRepository = (*CategoryRepository)(nil)

// CategoryRepository implements catalog.CategoryRepository backed by PostgreSQL.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a CategoryRepository that uses the given pool.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// List returns all categories in display order.
func (r *CategoryRepository) List(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Category, error) {
		var c catalog.Category
		err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Image, &c.DisplayOrder)
		return c, err
	})
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	_, err := r.pool.Exec(ctx, insertCategorySQL,
		c.ID, c.Name, c.Description, c.Image, c.DisplayOrder,
	)
	if err != nil {
		return fmt.Errorf("creating category %q: %w", c.ID, err)
	}
	return nil
}

// Update rewrites an existing category. Returns catalog.ErrCategoryNotFound
// when the category does not exist.
func (r *CategoryRepository) Update(ctx context.Context, c *catalog.Category) error {
	tag, err := r.pool.Exec(ctx, updateCategorySQL,
		c.ID, c.Name, c.Description, c.Image, c.DisplayOrder,
	)
	if err != nil {
		return fmt.Errorf("updating category %q: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

// Upsert inserts the category or rewrites it in place. Used by the seeding
// tool, which must be re-runnable.
func (r *CategoryRepository) Upsert(ctx context.Context, c *catalog.Category) error {
	_, err := r.pool.Exec(ctx, upsertCategorySQL,
		c.ID, c.Name, c.Description, c.Image, c.DisplayOrder,
	)
	if err != nil {
		return fmt.Errorf("upserting category %q: %w", c.ID, err)
	}
	return nil
}

// Delete removes a category. Returns catalog.ErrCategoryNotFound when absent.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteCategorySQL, id)
	if err != nil {
		return fmt.Errorf("deleting category %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}
