package session

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPepper = []byte("test-pepper")

type mockKeyRepo struct {
	keys map[string]*AdminKey // hash -> key
}

func (m *mockKeyRepo) FindByHash(_ context.Context, hash string) (*AdminKey, error) {
	if k, ok := m.keys[hash]; ok {
		return k, nil
	}
	return nil, errors.New("admin key not found")
}

func newManagerWithKey(key string) (*Manager, *MemoryTokenStore) {
	hash := HashKey(testPepper, key)
	repo := &mockKeyRepo{keys: map[string]*AdminKey{
		hash: {ID: "admin-1", KeyHash: hash, Name: "Test Admin"},
	}}
	tokens := NewMemoryTokenStore()
	return NewManager(repo, tokens, testPepper, time.Hour), tokens
}

func TestLogin_ValidKey(t *testing.T) {
	m, _ := newManagerWithKey("super-secret")

	sess, err := m.Login(context.Background(), "super-secret")
	require.NoError(t, err)

	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "admin-1", sess.AdminID)
	assert.Equal(t, "Test Admin", sess.AdminName)
}

func TestLogin_UnknownKey(t *testing.T) {
	m, _ := newManagerWithKey("super-secret")

	_, err := m.Login(context.Background(), "wrong-key")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogin_TokensAreUnique(t *testing.T) {
	m, _ := newManagerWithKey("super-secret")

	s1, err := m.Login(context.Background(), "super-secret")
	require.NoError(t, err)
	s2, err := m.Login(context.Background(), "super-secret")
	require.NoError(t, err)

	assert.NotEqual(t, s1.Token, s2.Token)
}

func TestValidate(t *testing.T) {
	m, _ := newManagerWithKey("super-secret")

	sess, err := m.Login(context.Background(), "super-secret")
	require.NoError(t, err)

	adminID, err := m.Validate(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", adminID)
}

func TestValidate_EmptyAndUnknownTokens(t *testing.T) {
	m, _ := newManagerWithKey("super-secret")

	_, err := m.Validate(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = m.Validate(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogout_InvalidatesToken(t *testing.T) {
	m, _ := newManagerWithKey("super-secret")

	sess, err := m.Login(context.Background(), "super-secret")
	require.NoError(t, err)

	require.NoError(t, m.Logout(context.Background(), sess.Token))

	_, err = m.Validate(context.Background(), sess.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogout_EmptyTokenNoOp(t *testing.T) {
	m, _ := newManagerWithKey("super-secret")
	assert.NoError(t, m.Logout(context.Background(), ""))
}

func TestHashKey_Deterministic(t *testing.T) {
	h1 := HashKey(testPepper, "key")
	h2 := HashKey(testPepper, "key")
	h3 := HashKey([]byte("other-pepper"), "key")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}

func TestMemoryTokenStore_Expiry(t *testing.T) {
	s := NewMemoryTokenStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "tok", "admin-1", -time.Second))

	_, err := s.Get(ctx, "tok")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMemoryTokenStore_ZeroTTLNeverExpires(t *testing.T) {
	s := NewMemoryTokenStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "tok", "admin-1", 0))

	adminID, err := s.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", adminID)
}
