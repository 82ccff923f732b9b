package redisstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileup/fileupd/pkg/handler"
)

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	return NewFromClient(client)
}

func TestSetGetDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	rec := handler.UploadRecord{ID: "abc", Length: 10, MetaData: handler.MetaData{"name": "a.txt"}}
	require.NoError(t, store.Set(ctx, "abc", rec, handler.TTLDefault()))

	got, ok, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec, got)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, ok, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyPrefix(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	store := NewFromClient(client, WithKeyPrefix("fileupd:"))

	rec := handler.UploadRecord{ID: "abc"}
	require.NoError(t, store.Set(context.Background(), "abc", rec, handler.TTLNone()))

	assert.True(t, server.Exists("fileupd:abc"))
}

func TestTTLSecondsSetsExpiry(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	store := NewFromClient(client)

	rec := handler.UploadRecord{ID: "abc"}
	require.NoError(t, store.Set(context.Background(), "abc", rec, handler.TTLSeconds(60)))

	ttl := server.TTL("abc")
	assert.Greater(t, ttl.Seconds(), float64(0))
}
