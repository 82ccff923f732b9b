package locationprovider

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvideUuid(t *testing.T) {
	p := New("/files")

	r := httptest.NewRequest("HEAD", "/files/0123456789abcdef0123456789abcdef", nil)
	id, err := p.ProvideUuid(r)
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", id)

	r = httptest.NewRequest("HEAD", "/files/not-an-id", nil)
	_, err = p.ProvideUuid(r)
	assert.Error(t, err)
}

func TestProvideLocationRelative(t *testing.T) {
	p := New("/files")
	r := httptest.NewRequest("POST", "/files", nil)
	assert.Equal(t, "/files/abc", p.ProvideLocation("abc", r))
}

func TestProvideLocationRespectsForwardedHeaders(t *testing.T) {
	p := &PathProvider{BasePath: "/files/", RespectForwardedHeaders: true}
	r := httptest.NewRequest("POST", "/files", nil)
	r.Header.Set("X-Forwarded-Host", "uploads.example.com")
	r.Header.Set("X-Forwarded-Proto", "https")

	assert.Equal(t, "https://uploads.example.com/files/abc", p.ProvideLocation("abc", r))
}
