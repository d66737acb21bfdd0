package session

import (
	"context"
	"sync"
	"time"
)

var _ TokenStore = (*MemoryTokenStore)(nil)

// MemoryTokenStore keeps session tokens in process memory. Used when no
// shared token store is configured; sessions do not survive a restart.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]memoryToken
}

type memoryToken struct {
	adminID   string
	expiresAt time.Time
}

// NewMemoryTokenStore returns an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]memoryToken)}
}

// Put stores the token. A zero TTL means the token never expires.
func (s *MemoryTokenStore) Put(_ context.Context, token, adminID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := memoryToken{adminID: adminID}
	if ttl != 0 {
		t.expiresAt = time.Now().Add(ttl)
	}
	s.tokens[token] = t
	return nil
}

// Get resolves a token, lazily evicting it when expired.
func (s *MemoryTokenStore) Get(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[token]
	if !ok {
		return "", ErrUnauthorized
	}
	if !t.expiresAt.IsZero() && time.Now().After(t.expiresAt) {
		delete(s.tokens, token)
		return "", ErrUnauthorized
	}
	return t.adminID, nil
}

// Delete removes the token. Unknown tokens are a no-op.
func (s *MemoryTokenStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}
