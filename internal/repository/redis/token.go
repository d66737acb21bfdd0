package redis

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/ironkart/ironkart/internal/session"
)

const tokenKeyPrefix = "admin_session:"

var _ session.TokenStore = (*TokenStore)(nil)

// TokenStore persists admin session tokens with their TTL.
type TokenStore struct {
	client *Client
}

// NewTokenStore creates a TokenStore over the shared client.
func NewTokenStore(client *Client) *TokenStore {
	return &TokenStore{client: client}
}

// Put stores the token → admin mapping for the given TTL.
func (s *TokenStore) Put(ctx context.Context, token, adminID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, tokenKeyPrefix+token, adminID, ttl).Err(); err != nil {
		return errors.Wrap(err, "store session token")
	}
	return nil
}

// Get resolves a token to its admin ID. Unknown or expired tokens return
// session.ErrUnauthorized.
func (s *TokenStore) Get(ctx context.Context, token string) (string, error) {
	adminID, err := s.client.Get(ctx, tokenKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", session.ErrUnauthorized
		}
		return "", errors.Wrap(err, "get session token")
	}
	return adminID, nil
}

// Delete removes the token.
func (s *TokenStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, tokenKeyPrefix+token).Err(); err != nil {
		return errors.Wrap(err, "delete session token")
	}
	return nil
}
