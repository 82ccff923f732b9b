package handler_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileup/fileupd/pkg/handler"
)

func TestGetDisabledByDefault(t *testing.T) {
	e := newEnv(t, nil)

	id := e.create(map[string]string{"Upload-Length": "11"})
	require.Equal(t, 204, e.append(id, "0", "hello world", nil).Code)

	res := e.do("GET", basePath+id, nil, nil)
	assert.Equal(t, 405, res.Code)
}

func TestGetCompletedUpload(t *testing.T) {
	e := newEnv(t, func(c *handler.Config) {
		c.AllowGetCalls = true
	})

	contentType := base64.StdEncoding.EncodeToString([]byte("text/plain"))
	id := e.create(map[string]string{
		"Upload-Length":   "11",
		"Upload-Metadata": "type " + contentType,
	})
	require.Equal(t, 204, e.append(id, "0", "hello world", nil).Code)

	// GET does not require the protocol version header.
	res := e.do("GET", basePath+id, map[string]string{"Tus-Resumable": ""}, nil)
	require.Equal(t, 200, res.Code)
	assert.Equal(t, "hello world", res.Body.String())
	assert.Equal(t, "11", res.Header().Get("Content-Length"))
	assert.Equal(t, `attachment; filename="`+id+`"`, res.Header().Get("Content-Disposition"))
	assert.Equal(t, "binary", res.Header().Get("Content-Transfer-Encoding"))
	assert.Equal(t, "text/plain", res.Header().Get("Content-Type"))
}

func TestGetOmitsContentTypeWithoutMetadata(t *testing.T) {
	e := newEnv(t, func(c *handler.Config) {
		c.AllowGetCalls = true
	})

	id := e.create(map[string]string{"Upload-Length": "5"})
	require.Equal(t, 204, e.append(id, "0", "abcde", nil).Code)

	res := e.do("GET", basePath+id, nil, nil)
	require.Equal(t, 200, res.Code)
	assert.Empty(t, res.Header().Get("Content-Type"))
}

func TestGetIncompleteUpload(t *testing.T) {
	e := newEnv(t, func(c *handler.Config) {
		c.AllowGetCalls = true
	})

	id := e.create(map[string]string{"Upload-Length": "11"})
	require.Equal(t, 204, e.append(id, "0", "hello ", nil).Code)

	res := e.do("GET", basePath+id, nil, nil)
	assert.Equal(t, 403, res.Code)
}

func TestGetIncompleteUploadWhenPartialAllowed(t *testing.T) {
	e := newEnv(t, func(c *handler.Config) {
		c.AllowGetCalls = true
		c.AllowGetCallsForPartialUploads = true
	})

	id := e.create(map[string]string{"Upload-Length": "11"})
	require.Equal(t, 204, e.append(id, "0", "hello ", nil).Code)

	res := e.do("GET", basePath+id, nil, nil)
	require.Equal(t, 200, res.Code)
	assert.Equal(t, "hello ", res.Body.String())
	assert.Equal(t, "6", res.Header().Get("Content-Length"))
}

func TestGetUnknownUpload(t *testing.T) {
	e := newEnv(t, func(c *handler.Config) {
		c.AllowGetCalls = true
	})

	res := e.do("GET", basePath+"00000000000000000000000000000000", nil, nil)
	assert.Equal(t, 404, res.Code)

	res = e.do("GET", basePath+"not-an-id", nil, nil)
	assert.Equal(t, 400, res.Code)
}
