package filestore

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fileup/fileupd/pkg/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateExistsSizeDelete(t *testing.T) {
	store := New(t.TempDir())
	path := filepath.Join(store.Path, "upload-a")

	assert.False(t, store.Exists(path))
	assert.Equal(t, int64(0), store.Size(path))

	require.NoError(t, store.Create(path))
	assert.True(t, store.Exists(path))
	assert.Equal(t, int64(0), store.Size(path))

	assert.Error(t, store.Create(path), "creating an existing file must fail")

	require.NoError(t, store.Delete(path))
	assert.False(t, store.Exists(path))
	require.NoError(t, store.Delete(path), "deleting an absent file must be a no-op")
}

func TestCopyFromStreamAppendsAtSeekOffset(t *testing.T) {
	store := New(t.TempDir())
	path := filepath.Join(store.Path, "upload-a")
	require.NoError(t, store.Create(path))

	handle, err := store.Open(path)
	require.NoError(t, err)

	n, err := store.CopyFromStream(handle, strings.NewReader("hello "), 4, -1)
	require.NoError(t, err)
	assert.EqualValues(t, 6, n)
	require.NoError(t, handle.Close())

	handle, err = store.Open(path)
	require.NoError(t, err)
	require.NoError(t, handle.Seek(6))

	n, err = store.CopyFromStream(handle, strings.NewReader("world"), 4, -1)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
	require.NoError(t, handle.Close())

	assert.Equal(t, int64(11), store.Size(path))
}

func TestCopyFromStreamEnforcesLimit(t *testing.T) {
	store := New(t.TempDir())
	path := filepath.Join(store.Path, "upload-a")
	require.NoError(t, store.Create(path))

	handle, err := store.Open(path)
	require.NoError(t, err)
	defer handle.Close()

	n, err := store.CopyFromStream(handle, strings.NewReader("0123456789"), 3, 4)
	var conflict *handler.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.EqualValues(t, 4, n)
	assert.EqualValues(t, 4, conflict.BytesTransferred)
	assert.Equal(t, int64(4), store.Size(path))
}

func TestCopyFromStreamZeroLimitRejectsFirstByte(t *testing.T) {
	store := New(t.TempDir())
	path := filepath.Join(store.Path, "upload-a")
	require.NoError(t, store.Create(path))

	handle, err := store.Open(path)
	require.NoError(t, err)
	defer handle.Close()

	n, err := store.CopyFromStream(handle, strings.NewReader("x"), 3, 0)
	var conflict *handler.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Zero(t, n)
	assert.Equal(t, int64(0), store.Size(path))
}

func TestCopyFile(t *testing.T) {
	store := New(t.TempDir())
	chunkPath := filepath.Join(store.Path, "chunk")
	targetPath := filepath.Join(store.Path, "target")
	require.NoError(t, store.Create(chunkPath))
	require.NoError(t, store.Create(targetPath))

	chunkHandle, err := store.Open(chunkPath)
	require.NoError(t, err)
	_, err = store.CopyFromStream(chunkHandle, strings.NewReader("chunked"), 4, -1)
	require.NoError(t, err)
	require.NoError(t, chunkHandle.Close())

	n, err := store.CopyFile(targetPath, chunkPath, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)

	targetHandle, err := store.Open(targetPath)
	require.NoError(t, err)
	defer targetHandle.Close()

	var buf bytes.Buffer
	_, err = io.Copy(&buf, targetHandle)
	require.NoError(t, err)
	assert.Equal(t, "chunked", buf.String())
}
