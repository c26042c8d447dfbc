package workspace

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisStore(rdb, ttl), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	s, mr := newRedisStore(t, 0)
	ctx := context.Background()

	tabs := []Entry{entry(3), entry(1)}
	require.NoError(t, s.Save(ctx, "doc-1", tabs, 1))

	assert.True(t, mr.Exists("workspace:doc-1:tabs"))
	active, err := mr.Get("workspace:doc-1:active")
	require.NoError(t, err)
	assert.Equal(t, "1", active)

	gotTabs, gotActive, err := s.Load(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, tabs, gotTabs)
	assert.Equal(t, int64(1), gotActive)
}

func TestRedisStoreMissingKeysDefaultToHome(t *testing.T) {
	s, _ := newRedisStore(t, 0)

	tabs, active, err := s.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, tabs)
	assert.Equal(t, TabHome, active)
}

func TestRedisStoreSentinelActive(t *testing.T) {
	s, _ := newRedisStore(t, 0)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "doc-1", nil, TabNewPatient))
	tabs, active, err := s.Load(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, tabs)
	assert.Equal(t, TabNewPatient, active)
}

func TestRedisStoreCorruptState(t *testing.T) {
	s, mr := newRedisStore(t, 0)
	require.NoError(t, mr.Set("workspace:doc-1:tabs", "{not json"))

	_, _, err := s.Load(context.Background(), "doc-1")
	require.ErrorIs(t, err, ErrCorruptState)

	m := NewManager("doc-1", newFakeFetcher(), s, Options{})
	require.NoError(t, m.Restore(context.Background()), "corrupt state is discarded")
	assert.Equal(t, TabHome, m.Active())
}

func TestRedisStoreTTL(t *testing.T) {
	s, mr := newRedisStore(t, time.Hour)
	require.NoError(t, s.Save(context.Background(), "doc-1", []Entry{entry(1)}, 1))

	assert.Equal(t, time.Hour, mr.TTL("workspace:doc-1:tabs"))
	mr.FastForward(2 * time.Hour)
	assert.False(t, mr.Exists("workspace:doc-1:tabs"))
}
