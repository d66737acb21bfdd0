//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironkart/ironkart/internal/domain/cart"
	redisrepo "github.com/ironkart/ironkart/internal/repository/redis"
	"github.com/ironkart/ironkart/internal/session"
)

func TestRedisCartRepository_RoundTrip(t *testing.T) {
	client := setupRedis(t)
	repo := redisrepo.NewCartRepository(client, time.Hour)
	ctx := context.Background()

	_, err := repo.Load(ctx, "missing")
	assert.ErrorIs(t, err, cart.ErrSessionNotFound)

	items := []cart.LineItem{
		{
			Product: cart.ProductSnapshot{
				ID:       "tm-4000",
				Name:     "Treadmill",
				Category: "cardio",
				Price:    decimal.RequireFromString("85000"),
				Image:    "tm.jpg",
			},
			Quantity: 1,
		},
		{
			Product: cart.ProductSnapshot{
				ID:       "fb-300",
				Name:     "Flat Bench",
				Category: "strength",
				Price:    decimal.RequireFromString("14500"),
				Image:    "fb.jpg",
			},
			Quantity: 2,
		},
	}
	require.NoError(t, repo.Save(ctx, "sess-1", items))

	loaded, err := repo.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "tm-4000", loaded[0].Product.ID)
	assert.True(t, loaded[0].Product.Price.Equal(items[0].Product.Price))
	assert.Equal(t, 2, loaded[1].Quantity)

	// Sessions are isolated from each other.
	_, err = repo.Load(ctx, "sess-2")
	assert.ErrorIs(t, err, cart.ErrSessionNotFound)

	require.NoError(t, repo.Delete(ctx, "sess-1"))
	_, err = repo.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, cart.ErrSessionNotFound)
}

func TestRedisCartRepository_TTLExpiry(t *testing.T) {
	client := setupRedis(t)
	repo := redisrepo.NewCartRepository(client, 500*time.Millisecond)
	ctx := context.Background()

	items := []cart.LineItem{{
		Product:  cart.ProductSnapshot{ID: "p1", Name: "P1", Price: decimal.RequireFromString("100")},
		Quantity: 1,
	}}
	require.NoError(t, repo.Save(ctx, "sess-ttl", items))

	_, err := repo.Load(ctx, "sess-ttl")
	require.NoError(t, err)

	time.Sleep(time.Second)

	_, err = repo.Load(ctx, "sess-ttl")
	assert.ErrorIs(t, err, cart.ErrSessionNotFound)
}

func TestRedisTokenStore(t *testing.T) {
	client := setupRedis(t)
	store := redisrepo.NewTokenStore(client)
	ctx := context.Background()

	_, err := store.Get(ctx, "nope")
	assert.ErrorIs(t, err, session.ErrUnauthorized)

	require.NoError(t, store.Put(ctx, "tok-1", "admin-1", time.Hour))

	adminID, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", adminID)

	require.NoError(t, store.Delete(ctx, "tok-1"))
	_, err = store.Get(ctx, "tok-1")
	assert.ErrorIs(t, err, session.ErrUnauthorized)
}

func TestRedisTokenStore_TTLExpiry(t *testing.T) {
	client := setupRedis(t)
	store := redisrepo.NewTokenStore(client)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "tok-short", "admin-1", 500*time.Millisecond))

	time.Sleep(time.Second)

	_, err := store.Get(ctx, "tok-short")
	assert.ErrorIs(t, err, session.ErrUnauthorized)
}
