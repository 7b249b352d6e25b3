package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/myshop/myshop-manager/internal/dependency"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStatsCache(t *testing.T, c dependency.StatsCache) {
	ctx := context.Background()

	v0, err := c.Version(ctx)
	require.NoError(t, err)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	b, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	require.NoError(t, c.Bump(ctx))
	v1, err := c.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, v0+1, v1)
}

func TestMemory(t *testing.T) {
	testStatsCache(t, NewMemory())
}

func TestMemoryBumpDropsEntries(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, m.Bump(ctx))
	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	now = now.Add(59 * time.Second)
	_, ok, _ := m.Get(ctx, "k")
	assert.True(t, ok)
	now = now.Add(time.Second)
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	c, err := New(context.Background(), &Config{Type: "none"})
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = New(context.Background(), &Config{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	_, err = New(context.Background(), &Config{Type: "memcached"})
	assert.Error(t, err)
}

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedis(t *testing.T) {
	client := getRedisClient(t)
	r := NewRedisWithClient(client, "test:"+uuid.NewString()+":")
	t.Cleanup(func() { _ = r.Close() })
	testStatsCache(t, r)
}
