package handler_test

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileup/fileupd/pkg/filestore"
	"github.com/fileup/fileupd/pkg/handler"
	"github.com/fileup/fileupd/pkg/locationprovider"
	"github.com/fileup/fileupd/pkg/memorystore"
	"github.com/fileup/fileupd/pkg/targetpath"
)

const basePath = "/files/"

// eventRecorder is a handler.EventBus that remembers every published
// event, so tests can assert on lifecycle notifications.
type eventRecorder struct {
	mu     sync.Mutex
	events []handler.Event
}

func (r *eventRecorder) Publish(ev handler.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) all() []handler.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]handler.Event(nil), r.events...)
}

func (r *eventRecorder) ofType(t handler.EventType) []handler.Event {
	var out []handler.Event
	for _, ev := range r.all() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// env wires a Handler to real on-disk storage and an in-memory record
// store, the same composition cmd/fileupd ships.
type env struct {
	t       *testing.T
	handler *handler.Handler
	store   *memorystore.MemoryStore
	files   filestore.FileStore
	dir     string
	events  *eventRecorder
}

func newEnv(t *testing.T, mutate func(*handler.Config)) *env {
	t.Helper()

	dir := t.TempDir()
	paths, err := targetpath.New(dir)
	require.NoError(t, err)

	store := memorystore.New(time.Minute)
	files := filestore.New(dir)
	events := &eventRecorder{}

	config := handler.Config{
		MetadataStore:     store,
		FileStore:         files,
		LocationProvider:  locationprovider.New(basePath),
		TargetPathFactory: paths,
		EventBus:          events,
		MaxSize:           1024 * 1024,
		BasePath:          basePath,
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if mutate != nil {
		mutate(&config)
	}

	h, err := handler.NewHandler(config)
	require.NoError(t, err)

	return &env{
		t:       t,
		handler: h,
		store:   store,
		files:   files,
		dir:     dir,
		events:  events,
	}
}

// do sends a request to the handler. The Tus-Resumable header is set to
// 1.0.0 unless the caller supplies their own value; an explicitly empty
// value removes the header altogether.
func (e *env) do(method, path string, headers map[string]string, body io.Reader) *httptest.ResponseRecorder {
	e.t.Helper()

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Tus-Resumable", "1.0.0")
	for key, value := range headers {
		if value == "" {
			req.Header.Del(key)
			continue
		}
		req.Header.Set(key, value)
	}

	res := httptest.NewRecorder()
	e.handler.ServeHTTP(res, req)
	return res
}

var locationPattern = regexp.MustCompile(`^/files/([0-9a-f]{32})$`)

// create POSTs a new upload and returns its id.
func (e *env) create(headers map[string]string) string {
	e.t.Helper()

	res := e.do("POST", basePath, headers, nil)
	require.Equal(e.t, 201, res.Code, res.Body.String())

	m := locationPattern.FindStringSubmatch(res.Header().Get("Location"))
	require.Len(e.t, m, 2, "Location header must address the new upload")
	return m[1]
}

// append PATCHes body onto the upload at the given offset.
func (e *env) append(id, offset, body string, extra map[string]string) *httptest.ResponseRecorder {
	e.t.Helper()

	headers := map[string]string{
		"Content-Type":  "application/offset+octet-stream",
		"Upload-Offset": offset,
	}
	for key, value := range extra {
		headers[key] = value
	}

	return e.do("PATCH", basePath+id, headers, strings.NewReader(body))
}

func TestEveryResponseCarriesProtocolHeaders(t *testing.T) {
	e := newEnv(t, nil)

	for _, res := range []*httptest.ResponseRecorder{
		e.do("OPTIONS", basePath, nil, nil),
		e.do("HEAD", basePath+"unknown", nil, nil),
		e.do("POST", basePath, nil, nil),
	} {
		assert.Equal(t, "1.0.0", res.Header().Get("Tus-Resumable"))
		assert.Equal(t, "no-store", res.Header().Get("Cache-Control"))
	}
}

func TestRejectsUnsupportedVersion(t *testing.T) {
	e := newEnv(t, nil)

	res := e.do("POST", basePath, map[string]string{"Tus-Resumable": "0.2.2"}, nil)
	assert.Equal(t, 412, res.Code)

	res = e.do("HEAD", basePath+"a", map[string]string{"Tus-Resumable": ""}, nil)
	assert.Equal(t, 412, res.Code)
}

func TestRejectsUnknownMethod(t *testing.T) {
	e := newEnv(t, nil)

	res := e.do("DELETE", basePath+"a", nil, nil)
	assert.Equal(t, 400, res.Code)
}

func TestMethodOverride(t *testing.T) {
	e := newEnv(t, nil)

	res := e.do("POST", basePath, map[string]string{"X-HTTP-Method-Override": "OPTIONS"}, nil)
	assert.Equal(t, 200, res.Code)
	assert.Equal(t, "1.0.0", res.Header().Get("Tus-Version"))
}
