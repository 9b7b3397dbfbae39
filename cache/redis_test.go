package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisDocumentCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisDocumentCache(mr.Addr(), "", 0, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisDocumentCache(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "tracks")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "tracks", []byte(`[{"id":"1"}]`)))
	got, err := c.Get(ctx, "tracks")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(got))
	assert.True(t, mr.Exists(GetDocumentKey("tracks")))

	require.NoError(t, c.Delete(ctx, "tracks"))
	_, err = c.Get(ctx, "tracks")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisDocumentCacheExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "albums", []byte(`[]`)))
	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, "albums")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCheckRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	assert.NoError(t, c.CheckRoundTrip(context.Background()))
}

func TestNewRedisDocumentCacheUnreachable(t *testing.T) {
	_, err := NewRedisDocumentCache("127.0.0.1:1", "", 0, time.Minute)
	assert.Error(t, err)
}
