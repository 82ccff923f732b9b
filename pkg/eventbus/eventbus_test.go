package eventbus

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileup/fileupd/pkg/handler"
)

func TestBusDispatchesInRegistrationOrder(t *testing.T) {
	bus := New()

	var order []string
	bus.Subscribe(SubscriberFunc(func(ev handler.Event) {
		order = append(order, "first:"+ev.ID)
	}))
	bus.Subscribe(SubscriberFunc(func(ev handler.Event) {
		order = append(order, "second:"+ev.ID)
	}))

	bus.Publish(handler.Event{Type: handler.EventUploadStarted, ID: "abc"})

	assert.Equal(t, []string{"first:abc", "second:abc"}, order)
}

func TestBusWithoutSubscribers(t *testing.T) {
	bus := New()
	bus.Publish(handler.Event{Type: handler.EventUploadComplete, ID: "abc"})
}

func TestWebhookDeliver(t *testing.T) {
	var received webhookBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))

		w.WriteHeader(200)
	}))
	defer srv.Close()

	hook := NewWebhook(srv.URL)
	hook.setup()

	err := hook.deliver(handler.Event{
		Type:     handler.EventUploadComplete,
		ID:       "d8ff24bfdee94f20b2b1c7f527b0a16f",
		File:     "/srv/uploads/d8ff24bfdee94f20b2b1c7f527b0a16f",
		MetaData: handler.MetaData{"name": "cat.png"},
	})
	require.NoError(t, err)

	assert.Equal(t, "UploadComplete", received.Type)
	assert.Equal(t, "d8ff24bfdee94f20b2b1c7f527b0a16f", received.ID)
	assert.Equal(t, "/srv/uploads/d8ff24bfdee94f20b2b1c7f527b0a16f", received.File)
	assert.Equal(t, handler.MetaData{"name": "cat.png"}, received.MetaData)
}

func TestWebhookDeliverReportsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(400)
	}))
	defer srv.Close()

	hook := NewWebhook(srv.URL)
	hook.setup()

	err := hook.deliver(handler.Event{Type: handler.EventUploadStarted, ID: "abc"})
	require.Error(t, err)
}

func TestScriptRunnerIgnoresMissingScript(t *testing.T) {
	runner := ScriptRunner{Directory: t.TempDir()}
	runner.Handle(handler.Event{Type: handler.EventUploadComplete, ID: "abc"})
}
