package cache

import (
	"context"
	"testing"
	"time"

	"lawlink-api/core/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	config.SetForTesting(&config.Config{
		JWT: config.JWTConfig{RefreshTokenTTL: time.Hour},
	})
	return NewCacheWithClient(client), mr
}

func TestSetGetDel(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	require.NoError(t, c.Del(ctx, "k"))
	val, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestGetMissingKeyReturnsEmpty(t *testing.T) {
	c, _ := newTestCache(t)

	val, err := c.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestTokenBlacklist(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	blacklisted, err := c.IsTokenBlacklisted(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, blacklisted)

	require.NoError(t, c.AddToTokenBlacklist(ctx, "tok"))

	blacklisted, err = c.IsTokenBlacklisted(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, blacklisted)

	// Blacklist entries expire with the refresh token lifetime.
	mr.FastForward(2 * time.Hour)
	blacklisted, err = c.IsTokenBlacklisted(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, blacklisted)
}
