package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisKV(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	kv := NewRedisKV(client, time.Hour)

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "s1:"+StateKey, []byte(`{"currentStep":1}`)))
	assert.True(t, mr.Exists("pitaya:s1:"+StateKey))
	assert.Equal(t, time.Hour, mr.TTL("pitaya:s1:"+StateKey))

	got, err := kv.Get(ctx, "s1:"+StateKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"currentStep":1}`, string(got))

	require.NoError(t, kv.Delete(ctx, "s1:"+StateKey))
	require.NoError(t, kv.Delete(ctx, "s1:"+StateKey))
	_, err = kv.Get(ctx, "s1:"+StateKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisKVExpiry(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	kv := NewRedisKV(client, time.Minute)

	require.NoError(t, kv.Set(ctx, "k", []byte("v")))
	mr.FastForward(2 * time.Minute)
	_, err := kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreOverRedis(t *testing.T) {
	ctx := context.Background()
	_, client := setupTestRedis(t)
	store := NewStore(NewRedisKV(client, 0), nil).Scoped("visitor")

	store.Save(ctx, sampleRecord(time.UTC))
	rec, ok := store.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, 3, rec.CurrentStep)

	store.Clear(ctx)
	_, ok = store.Load(ctx)
	assert.False(t, ok)
}

func TestRedisKVConnectionError(t *testing.T) {
	mr, client := setupTestRedis(t)
	mr.Close()
	kv := NewRedisKV(client, 0)

	_, err := kv.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
