package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Redis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRedis(client, "test:")
}

func TestRedis_GetSet(t *testing.T) {
	mr, r := setupTestRedis(t)
	ctx := context.Background()

	_, ok, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, "k", []byte(`{"a":1}`), time.Minute, TagProducts))

	v, ok, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(v))

	assert.True(t, mr.Exists("test:v:k"))
	assert.Equal(t, time.Minute, mr.TTL("test:v:k"))
	members, err := mr.Members("test:t:products")
	require.NoError(t, err)
	assert.Equal(t, []string{"test:v:k"}, members)
	assert.Equal(t, minTagTTL, mr.TTL("test:t:products"))
}

func TestRedis_Expiry(t *testing.T) {
	mr, r := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("v"), 5*time.Second))
	mr.FastForward(6 * time.Second)

	_, ok, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_Invalidate(t *testing.T) {
	mr, r := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "p", []byte("1"), time.Hour, TagProducts))
	require.NoError(t, r.Set(ctx, "c", []byte("2"), time.Hour, TagCollections))
	require.NoError(t, r.Set(ctx, "both", []byte("3"), time.Hour, TagProducts, TagCollections))

	require.NoError(t, r.Invalidate(ctx, TagProducts))

	_, ok, _ := r.Get(ctx, "p")
	assert.False(t, ok)
	_, ok, _ = r.Get(ctx, "both")
	assert.False(t, ok)
	_, ok, _ = r.Get(ctx, "c")
	assert.True(t, ok)
	assert.False(t, mr.Exists("test:t:products"))

	require.NoError(t, r.Invalidate(ctx, "missing"))
}

func TestRedis_ErrorsWhenDown(t *testing.T) {
	mr, r := setupTestRedis(t)
	mr.Close()

	_, _, err := r.Get(context.Background(), "k")
	require.Error(t, err)
	assert.Error(t, r.Ping(context.Background()))
}

func TestNewRedis_DefaultPrefix(t *testing.T) {
	r := NewRedis(nil, "")
	assert.Equal(t, "storefront:v:x", r.valueKey("x"))
}

func TestDial(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Dial(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer client.Close()

	_, err = Dial(context.Background(), "not a url")
	require.Error(t, err)
}
