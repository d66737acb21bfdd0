package cart

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned by a SessionRepository when no cart has been
// persisted for the session.
var ErrSessionNotFound = errors.New("cart session not found")

// SessionRepository persists cart line items per session. Implementations are
// a durability aid only: the Store's in-memory state stays authoritative for
// the current session even when every call here fails.
type SessionRepository interface {
	Load(ctx context.Context, sessionID string) ([]LineItem, error)
	Save(ctx context.Context, sessionID string, items []LineItem) error
	Delete(ctx context.Context, sessionID string) error
}

// Subscriber is notified after every cart mutation with the session ID and
// the new badge count.
type Subscriber func(sessionID string, itemCount int)

// Store owns all live carts, keyed by session ID. Views hold only read
// references; every mutation goes through the Store, which persists the new
// state best-effort and notifies subscribers.
type Store struct {
	mu       sync.Mutex
	carts    map[string]*Cart
	sessions SessionRepository

	subMu sync.RWMutex
	subs  []Subscriber
}

// NewStore creates a Store backed by the given session repository. A nil
// repository disables persistence entirely.
func NewStore(sessions SessionRepository) *Store {
	return &Store{
		carts:    make(map[string]*Cart),
		sessions: sessions,
	}
}

// Subscribe registers a callback invoked after every mutating operation.
func (s *Store) Subscribe(fn Subscriber) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subs = append(s.subs, fn)
}

// Get returns the current line items, badge count, and subtotal-ready cart
// for the session, restoring persisted state on first access.
func (s *Store) Get(ctx context.Context, sessionID string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.load(ctx, sessionID)

	// Return a detached copy so callers cannot mutate around the Store.
	return Restore(c.items)
}

// AddItem adds the product snapshot to the session's cart.
func (s *Store) AddItem(ctx context.Context, sessionID string, p ProductSnapshot, quantity int) error {
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		return c.AddItem(p, quantity)
	})
}

// UpdateQuantity sets the quantity for a product in the session's cart.
// Non-positive quantities remove the line; unknown products are a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) error {
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		c.UpdateQuantity(productID, quantity)
		return nil
	})
}

// RemoveItem deletes a product line from the session's cart.
func (s *Store) RemoveItem(ctx context.Context, sessionID, productID string) error {
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		c.RemoveItem(productID)
		return nil
	})
}

// Clear empties the session's cart. Used after a completed checkout or an
// explicit clear-cart action.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		c.Clear()
		return nil
	})
}

// mutate loads the session cart, applies fn, persists the result best-effort,
// and notifies subscribers.
func (s *Store) mutate(ctx context.Context, sessionID string, fn func(*Cart) error) error {
	s.mu.Lock()
	c := s.load(ctx, sessionID)
	if err := fn(c); err != nil {
		s.mu.Unlock()
		return err
	}
	items := c.Items()
	count := c.ItemCount()
	s.mu.Unlock()

	s.persist(ctx, sessionID, items)
	s.notify(sessionID, count)
	return nil
}

// load returns the live cart for the session, restoring persisted state or
// starting empty. Caller must hold s.mu.
func (s *Store) load(ctx context.Context, sessionID string) *Cart {
	if c, ok := s.carts[sessionID]; ok {
		return c
	}

	c := New()
	if s.sessions != nil {
		items, err := s.sessions.Load(ctx, sessionID)
		switch {
		case err == nil:
			c = Restore(items)
		case errors.Is(err, ErrSessionNotFound):
			// Fresh session.
		default:
			// Restore failure degrades to an empty cart for this session.
			zctx.From(ctx).Warn("cart restore failed",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		}
	}
	s.carts[sessionID] = c
	return c
}

// persist writes the cart state through the session repository. Failures are
// logged and swallowed: in-memory state remains authoritative.
func (s *Store) persist(ctx context.Context, sessionID string, items []LineItem) {
	if s.sessions == nil {
		return
	}

	var err error
	if len(items) == 0 {
		err = s.sessions.Delete(ctx, sessionID)
	} else {
		err = s.sessions.Save(ctx, sessionID, items)
	}
	if err != nil {
		zctx.From(ctx).Warn("cart persist failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
}

func (s *Store) notify(sessionID string, itemCount int) {
	s.subMu.RLock()
	subs := s.subs
	s.subMu.RUnlock()
	for _, fn := range subs {
		fn(sessionID, itemCount)
	}
}
