package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ironkart/ironkart/internal/domain/catalog"
)

const productColumns = `id, name, category, price, original_price, image, images,
	description, specifications, in_stock, featured, created_at, updated_at`

const (
	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	insertProductSQL = `INSERT INTO products
		(id, name, category, price, original_price, image, images, description, specifications, in_stock, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	updateProductSQL = `UPDATE products SET
		name = $2, category = $3, price = $4, original_price = $5, image = $6,
		images = $7, description = $8, specifications = $9, in_stock = $10,
		featured = $11, updated_at = now()
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	upsertProductSQL = `INSERT INTO products
		(id, name, category, price, original_price, image, images, description, specifications, in_stock, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, category = EXCLUDED.category, price = EXCLUDED.price,
			original_price = EXCLUDED.original_price, image = EXCLUDED.image,
			images = EXCLUDED.images, description = EXCLUDED.description,
			specifications = EXCLUDED.specifications, in_stock = EXCLUDED.in_stock,
			featured = EXCLUDED.featured, updated_at = now()`
)

var _ catalog.Repository = (*ProductRepository)(nil)

// ProductRepository implements catalog.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns products matching the filter, newest first.
func (r *ProductRepository) List(ctx context.Context, f catalog.Filter) ([]catalog.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`

	var (
		conds []string
		args  []any
	)
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.Featured {
		conds = append(conds, "featured")
	}
	if f.Deals {
		conds = append(conds, "original_price IS NOT NULL AND original_price > price")
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", n, n))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	specs, err := marshalSpecs(p.Specifications)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, insertProductSQL,
		p.ID, p.Name, p.Category, p.Price, nullDecimal(p.OriginalPrice),
		p.Image, p.Images, p.Description, specs, p.InStock, p.Featured,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// Update rewrites an existing product. Returns catalog.ErrNotFound when the
// product does not exist.
func (r *ProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	specs, err := marshalSpecs(p.Specifications)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.Category, p.Price, nullDecimal(p.OriginalPrice),
		p.Image, p.Images, p.Description, specs, p.InStock, p.Featured,
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Upsert inserts the product or rewrites it in place. Used by the seeding and
// feed ingest tools, which must be re-runnable.
func (r *ProductRepository) Upsert(ctx context.Context, p *catalog.Product) error {
	specs, err := marshalSpecs(p.Specifications)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, upsertProductSQL,
		p.ID, p.Name, p.Category, p.Price, nullDecimal(p.OriginalPrice),
		p.Image, p.Images, p.Description, specs, p.InStock, p.Featured,
	)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.ID, err)
	}
	return nil
}

// Delete removes a product. Returns catalog.ErrNotFound when absent.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var (
		p        catalog.Product
		original decimal.NullDecimal
		specs    []byte
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Category, &p.Price, &original, &p.Image, &p.Images,
		&p.Description, &specs, &p.InStock, &p.Featured, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return p, err
	}
	if original.Valid {
		v := original.Decimal
		p.OriginalPrice = &v
	}
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &p.Specifications); err != nil {
			return p, fmt.Errorf("unmarshaling specifications for %q: %w", p.ID, err)
		}
	}
	return p, nil
}

func marshalSpecs(specs map[string]string) ([]byte, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(specs)
	if err != nil {
		return nil, fmt.Errorf("marshaling specifications: %w", err)
	}
	return b, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
