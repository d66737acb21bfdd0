package cart

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSessionRepo struct {
	saved   map[string][]LineItem
	loadErr error
	saveErr error
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{saved: make(map[string][]LineItem)}
}

func (m *mockSessionRepo) Load(_ context.Context, sessionID string) ([]LineItem, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	items, ok := m.saved[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return items, nil
}

func (m *mockSessionRepo) Save(_ context.Context, sessionID string, items []LineItem) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved[sessionID] = items
	return nil
}

func (m *mockSessionRepo) Delete(_ context.Context, sessionID string) error {
	delete(m.saved, sessionID)
	return nil
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	require.NoError(t, s.AddItem(ctx, "alice", snapshot("p1", "100"), 1))
	require.NoError(t, s.AddItem(ctx, "bob", snapshot("p2", "200"), 2))

	assert.Equal(t, 1, s.Get(ctx, "alice").ItemCount())
	assert.Equal(t, 2, s.Get(ctx, "bob").ItemCount())
	assert.True(t, s.Get(ctx, "carol").IsEmpty())
}

func TestStore_PersistsThroughRepository(t *testing.T) {
	repo := newMockSessionRepo()
	s := NewStore(repo)
	ctx := context.Background()

	require.NoError(t, s.AddItem(ctx, "sess", snapshot("p1", "100"), 2))

	require.Len(t, repo.saved["sess"], 1)
	assert.Equal(t, 2, repo.saved["sess"][0].Quantity)
}

func TestStore_RestoresFromRepository(t *testing.T) {
	repo := newMockSessionRepo()
	repo.saved["sess"] = []LineItem{{Product: snapshot("p1", "100"), Quantity: 3}}

	s := NewStore(repo)
	c := s.Get(context.Background(), "sess")

	assert.Equal(t, 3, c.ItemCount())
}

func TestStore_PersistFailureKeepsMemoryState(t *testing.T) {
	repo := newMockSessionRepo()
	repo.saveErr = errors.New("redis down")
	s := NewStore(repo)
	ctx := context.Background()

	require.NoError(t, s.AddItem(ctx, "sess", snapshot("p1", "100"), 1))

	// The write failed but the in-memory cart is still authoritative.
	assert.Equal(t, 1, s.Get(ctx, "sess").ItemCount())
}

func TestStore_LoadFailureStartsEmpty(t *testing.T) {
	repo := newMockSessionRepo()
	repo.loadErr = errors.New("redis down")
	s := NewStore(repo)

	assert.True(t, s.Get(context.Background(), "sess").IsEmpty())
}

func TestStore_ClearDeletesPersistedState(t *testing.T) {
	repo := newMockSessionRepo()
	s := NewStore(repo)
	ctx := context.Background()

	require.NoError(t, s.AddItem(ctx, "sess", snapshot("p1", "100"), 1))
	require.NoError(t, s.Clear(ctx, "sess"))

	_, ok := repo.saved["sess"]
	assert.False(t, ok)
	assert.True(t, s.Get(ctx, "sess").IsEmpty())
}

func TestStore_NotifiesSubscribersWithBadgeCount(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	var gotSession string
	var gotCounts []int
	s.Subscribe(func(sessionID string, itemCount int) {
		gotSession = sessionID
		gotCounts = append(gotCounts, itemCount)
	})

	require.NoError(t, s.AddItem(ctx, "sess", snapshot("p1", "100"), 2))
	require.NoError(t, s.UpdateQuantity(ctx, "sess", "p1", 5))
	require.NoError(t, s.RemoveItem(ctx, "sess", "p1"))

	assert.Equal(t, "sess", gotSession)
	assert.Equal(t, []int{2, 5, 0}, gotCounts)
}

func TestStore_GetReturnsDetachedCopy(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	require.NoError(t, s.AddItem(ctx, "sess", snapshot("p1", "100"), 1))

	c := s.Get(ctx, "sess")
	c.Clear()

	assert.Equal(t, 1, s.Get(ctx, "sess").ItemCount())
}

func TestStore_MutationErrorIsReturned(t *testing.T) {
	s := NewStore(nil)

	err := s.AddItem(context.Background(), "sess", ProductSnapshot{}, 1)
	assert.ErrorIs(t, err, ErrEmptyProductID)
}
