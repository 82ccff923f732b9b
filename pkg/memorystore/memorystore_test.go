package memorystore

import (
	"context"
	"testing"
	"time"

	"github.com/fileup/fileupd/pkg/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetDelete(t *testing.T) {
	store := New(time.Hour)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	rec := handler.UploadRecord{ID: "abc", Length: 10}
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

func TestTTLSecondsExpires(t *testing.T) {
	store := New(time.Hour)
	ctx := context.Background()

	rec := handler.UploadRecord{ID: "abc"}
	require.NoError(t, store.Set(ctx, "abc", rec, handler.TTLSeconds(0)))

	time.Sleep(5 * time.Millisecond)

	_, ok, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok, "a zero-second TTL should have expired immediately")
}

func TestTTLNoneNeverExpires(t *testing.T) {
	store := New(time.Hour)
	ctx := context.Background()

	rec := handler.UploadRecord{ID: "abc"}
	require.NoError(t, store.Set(ctx, "abc", rec, handler.TTLNone()))

	_, ok, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
}
