package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", cachedValue{Name: "n", Score: 1.5}, time.Minute))

	var got cachedValue
	found, err := store.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cachedValue{Name: "n", Score: 1.5}, got)
}

func TestMemoryStore_Expiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", cachedValue{Name: "n"}, time.Minute))

	now = now.Add(59 * time.Second)
	var got cachedValue
	found, err := store.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)

	now = now.Add(time.Second)
	found, err = store.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	value := map[string]int{"a": 1}
	require.NoError(t, store.Set(ctx, "k", value, time.Minute))
	value["a"] = 2

	got := map[string]int{}
	found, err := store.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, got["a"])
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, store.Set(ctx, "b", 2, time.Minute))
	require.NoError(t, store.Delete(ctx, "a"))

	var got int
	found, _ := store.Get(ctx, "a", &got)
	assert.False(t, found)
	found, _ = store.Get(ctx, "b", &got)
	assert.True(t, found)
	assert.Equal(t, 2, got)
}

func TestMemoryStore_UnencodableValue(t *testing.T) {
	store := NewMemoryStore()
	err := store.Set(context.Background(), "k", make(chan int), time.Minute)
	assert.Error(t, err)
}
