package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedValue struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore_SetGet(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "rating:stats:u1", cachedValue{Name: "u1", Score: 4.25}, time.Hour))

	var got cachedValue
	found, err := store.Get(ctx, "rating:stats:u1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cachedValue{Name: "u1", Score: 4.25}, got)

	assert.Equal(t, time.Hour, mr.TTL("rating:stats:u1"))
}

func TestRedisStore_Get_Miss(t *testing.T) {
	store, _ := setupTestRedis(t)

	var got cachedValue
	found, err := store.Get(context.Background(), "rating:stats:missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_Get_Expired(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", cachedValue{Name: "x"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	var got cachedValue
	found, err := store.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_Get_CorruptValue(t *testing.T) {
	store, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("k", "{not json"))

	var got cachedValue
	found, err := store.Get(context.Background(), "k", &got)
	require.Error(t, err)
	assert.False(t, found)
}

func TestRedisStore_Delete(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", cachedValue{Name: "a"}, time.Hour))
	require.NoError(t, store.Set(ctx, "b", cachedValue{Name: "b"}, time.Hour))

	require.NoError(t, store.Delete(ctx, "a", "b", "never-set"))
	assert.False(t, mr.Exists("a"))
	assert.False(t, mr.Exists("b"))

	require.NoError(t, store.Delete(ctx))
}

func TestRedisStore_ConnectionError(t *testing.T) {
	store, mr := setupTestRedis(t)
	mr.Close()

	var got cachedValue
	_, err := store.Get(context.Background(), "k", &got)
	assert.Error(t, err)
	assert.Error(t, store.Set(context.Background(), "k", cachedValue{}, time.Minute))
	assert.Error(t, store.Ping(context.Background()))
}
