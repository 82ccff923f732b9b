package handler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionsAdvertisesCapabilities(t *testing.T) {
	e := newEnv(t, nil)

	res := e.do("OPTIONS", basePath, nil, nil)
	assert.Equal(t, 200, res.Code)
	assert.Equal(t, "1.0.0", res.Header().Get("Tus-Version"))
	assert.Equal(t, "1048576", res.Header().Get("Tus-Max-Size"))
	assert.Equal(t, "creation, creation-defer-length, creation-with-upload", res.Header().Get("Tus-Extension"))
}

func TestOptionsIsIdempotent(t *testing.T) {
	e := newEnv(t, nil)

	id := e.create(map[string]string{"Upload-Length": "11"})

	for i := 0; i < 3; i++ {
		res := e.do("OPTIONS", basePath, nil, nil)
		assert.Equal(t, 200, res.Code)
	}

	res := e.do("HEAD", basePath+id, nil, nil)
	assert.Equal(t, 200, res.Code)
	assert.Equal(t, "0", res.Header().Get("Upload-Offset"))
}
