// Package session manages the admin console session: an explicit object with
// a login-issued token and a clear-on-logout lifecycle, replacing any notion
// of an ambient client-side flag.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrUnauthorized is returned for unknown admin keys and invalid or
	// expired session tokens.
	ErrUnauthorized = errors.New("unauthorized")
)

// AdminKey holds the identity data for a validated admin key.
type AdminKey struct {
	ID      string
	KeyHash string
	Name    string
}

// KeyRepository provides lookup of admin keys by their HMAC-SHA256 hash.
type KeyRepository interface {
	FindByHash(ctx context.Context, hash string) (*AdminKey, error)
}

// TokenStore persists issued session tokens with a TTL.
type TokenStore interface {
	Put(ctx context.Context, token, adminID string, ttl time.Duration) error
	Get(ctx context.Context, token string) (adminID string, err error)
	Delete(ctx context.Context, token string) error
}

// Session identifies a logged-in admin.
type Session struct {
	Token     string
	AdminID   string
	AdminName string
}

// Manager authenticates admin keys and manages session tokens.
type Manager struct {
	keys   KeyRepository
	tokens TokenStore
	pepper []byte
	ttl    time.Duration
}

// NewManager creates a session Manager. The pepper is mixed into the HMAC of
// every presented admin key before lookup.
func NewManager(keys KeyRepository, tokens TokenStore, pepper []byte, ttl time.Duration) *Manager {
	return &Manager{
		keys:   keys,
		tokens: tokens,
		pepper: pepper,
		ttl:    ttl,
	}
}

// HashKey computes the HMAC-SHA256 hex digest of an admin key with the given
// pepper. Shared with the seeding tool so stored hashes match.
func HashKey(pepper []byte, key string) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

// Login authenticates the presented admin key and issues a session token.
func (m *Manager) Login(ctx context.Context, key string) (*Session, error) {
	mac := hmac.New(sha256.New, m.pepper)
	mac.Write([]byte(key))
	hash := mac.Sum(nil)

	info, err := m.keys.FindByHash(ctx, hex.EncodeToString(hash))
	if err != nil {
		return nil, ErrUnauthorized
	}

	// Constant-time comparison guards against timing side-channels even though
	// the lookup already succeeded: the stored hash could differ from what we
	// computed if the repository returns a stale/wrong row.
	stored, err := hex.DecodeString(info.KeyHash)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if subtle.ConstantTimeCompare(hash, stored) != 1 {
		return nil, ErrUnauthorized
	}

	token, err := newToken()
	if err != nil {
		return nil, errors.Wrap(err, "generate token")
	}
	if err := m.tokens.Put(ctx, token, info.ID, m.ttl); err != nil {
		return nil, errors.Wrap(err, "store token")
	}

	return &Session{
		Token:     token,
		AdminID:   info.ID,
		AdminName: info.Name,
	}, nil
}

// Validate resolves a bearer token to the admin it was issued for.
func (m *Manager) Validate(ctx context.Context, token string) (adminID string, err error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	adminID, err = m.tokens.Get(ctx, token)
	if err != nil {
		return "", ErrUnauthorized
	}
	return adminID, nil
}

// Logout deletes the session token. Unknown tokens are a no-op.
func (m *Manager) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.tokens.Delete(ctx, token)
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
