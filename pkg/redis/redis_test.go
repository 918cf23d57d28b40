package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/folio/pkg/config"
)

func TestNew_Disabled(t *testing.T) {
	client, err := New(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestEnabled_NilClient(t *testing.T) {
	var c *Client
	assert.False(t, c.Enabled())
}

func TestCache_DisabledIsNoop(t *testing.T) {
	cache := NewCache(Disabled(), "folio")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var out map[string]int
	found, err := cache.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, out)

	assert.NoError(t, cache.Delete(ctx, "k"))
}

func TestCacheKeys(t *testing.T) {
	cache := NewCache(Disabled(), "folio")
	assert.Equal(t, "plan:main", PlanKey("main"))
	assert.Equal(t, "folio:cache:plan:main", cache.Key(PlanKey("main")))
}

func TestCache_RoundTrip(t *testing.T) {
	if testing.Short() || os.Getenv("REDIS_ENABLED") != "true" {
		t.Skip("REDIS_ENABLED not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	ctx := context.Background()
	client, err := New(ctx, cfg)
	require.NoError(t, err)
	defer client.Close()

	cache := NewCache(client, "folio-test")
	require.NoError(t, cache.Set(ctx, "probe", []string{"a", "b"}, TTLShort))

	var out []string
	found, err := cache.Get(ctx, "probe", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a", "b"}, out)

	require.NoError(t, cache.Delete(ctx, "probe"))
	found, err = cache.Get(ctx, "probe", &out)
	require.NoError(t, err)
	assert.False(t, found)
}
