package redis

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/ironkart/ironkart/internal/domain/cart"
)

const cartKeyPrefix = "cart:"

var _ cart.SessionRepository = (*CartRepository)(nil)

// CartRepository persists cart line items per session with a TTL, so an
// abandoned cart survives a page reload but not forever.
type CartRepository struct {
	client *Client
	ttl    time.Duration
}

// NewCartRepository creates a CartRepository. A zero TTL keeps carts until
// explicitly deleted.
func NewCartRepository(client *Client, ttl time.Duration) *CartRepository {
	return &CartRepository{client: client, ttl: ttl}
}

// Load returns the persisted line items for the session, or
// cart.ErrSessionNotFound when none exist.
func (r *CartRepository) Load(ctx context.Context, sessionID string) ([]cart.LineItem, error) {
	data, err := r.client.Get(ctx, cartKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cart.ErrSessionNotFound
		}
		return nil, errors.Wrap(err, "load cart")
	}
	return cart.DecodeItems(data)
}

// Save writes the session's line items, refreshing the TTL.
func (r *CartRepository) Save(ctx context.Context, sessionID string, items []cart.LineItem) error {
	data := cart.EncodeItems(items)
	if err := r.client.Set(ctx, cartKeyPrefix+sessionID, data, r.ttl).Err(); err != nil {
		return errors.Wrap(err, "save cart")
	}
	return nil
}

// Delete removes the session's persisted cart.
func (r *CartRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, cartKeyPrefix+sessionID).Err(); err != nil {
		return errors.Wrap(err, "delete cart")
	}
	return nil
}
