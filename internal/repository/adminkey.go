package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ironkart/ironkart/internal/session"
)

const getAdminKeyByHashSQL = `SELECT id, key_hash, name
	FROM admin_keys WHERE key_hash = $1 AND active = TRUE`

var _ session.KeyRepository = (*AdminKeyRepository)(nil)

// AdminKeyRepository provides admin key lookups backed by PostgreSQL.
type AdminKeyRepository struct {
	pool *pgxpool.Pool
}

// NewAdminKeyRepository returns an AdminKeyRepository that uses the given pool.
func NewAdminKeyRepository(pool *pgxpool.Pool) *AdminKeyRepository {
	return &AdminKeyRepository{pool: pool}
}

// FindByHash looks up an active admin key by its HMAC-SHA256 hash.
func (r *AdminKeyRepository) FindByHash(ctx context.Context, hash string) (*session.AdminKey, error) {
	rows, err := r.pool.Query(ctx, getAdminKeyByHashSQL, hash)
	if err != nil {
		return nil, fmt.Errorf("finding admin key by hash: %w", err)
	}

	key, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (session.AdminKey, error) {
		var k session.AdminKey
		err := row.Scan(&k.ID, &k.KeyHash, &k.Name)
		return k, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("admin key not found: %w", err)
		}
		return nil, fmt.Errorf("finding admin key by hash: %w", err)
	}
	return &key, nil
}

// SeedAdminKey inserts an admin key hash if it is not already present. Used
// by cmd/seed-db.
func SeedAdminKey(ctx context.Context, pool *pgxpool.Pool, id, hash, name string) error {
	_, err := pool.Exec(ctx,
		`INSERT INTO admin_keys (id, key_hash, name) VALUES ($1, $2, $3)
		 ON CONFLICT (key_hash) DO NOTHING`,
		id, hash, name,
	)
	if err != nil {
		return fmt.Errorf("seeding admin key: %w", err)
	}
	return nil
}
