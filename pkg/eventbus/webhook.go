package eventbus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sethgrid/pester"

	"github.com/fileup/fileupd/pkg/handler"
)

// Webhook delivers events as JSON POST requests to a remote endpoint,
// retrying on 5xx responses and network errors with a fixed pause
// (Backoff) between attempts.
type Webhook struct {
	// Endpoint is the URL events are POSTed to.
	Endpoint string
	// MaxRetries is how often a failed delivery is retried. Defaults
	// to 3.
	MaxRetries int
	// Backoff is the pause between retries. Defaults to one second.
	Backoff time.Duration
	// Timeout bounds a single delivery attempt including retries.
	// Defaults to 30 seconds.
	Timeout time.Duration
	// Logger receives delivery failures. Defaults to slog.Default().
	Logger *slog.Logger

	client *pester.Client
}

// webhookBody is the JSON document a Webhook POSTs for each event.
type webhookBody struct {
	Type     string           `json:"type"`
	ID       string           `json:"id"`
	File     string           `json:"file"`
	MetaData handler.MetaData `json:"metadata"`
}

// NewWebhook creates a Webhook for endpoint with default retry settings.
func NewWebhook(endpoint string) *Webhook {
	return &Webhook{Endpoint: endpoint}
}

func (w *Webhook) setup() {
	if w.MaxRetries == 0 {
		w.MaxRetries = 3
	}
	if w.Backoff == 0 {
		w.Backoff = time.Second
	}
	if w.Timeout == 0 {
		w.Timeout = 30 * time.Second
	}
	if w.Logger == nil {
		w.Logger = slog.Default()
	}

	client := pester.New()
	client.KeepLog = true
	client.MaxRetries = w.MaxRetries
	client.Backoff = func(_ int) time.Duration {
		return w.Backoff
	}
	w.client = client
}

// Handle implements Subscriber. Delivery runs on its own goroutine so a
// slow or unreachable endpoint never stalls the upload request that
// triggered the event.
func (w *Webhook) Handle(ev handler.Event) {
	if w.client == nil {
		w.setup()
	}

	go func() {
		if err := w.deliver(ev); err != nil {
			w.Logger.Error("WebhookDeliveryError", "endpoint", w.Endpoint, "id", ev.ID, "error", err)
		}
	}()
}

func (w *Webhook) deliver(ev handler.Event) error {
	body, err := json.Marshal(webhookBody{
		Type:     string(ev.Type),
		ID:       ev.ID,
		File:     ev.File,
		MetaData: ev.MetaData,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", w.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	io.Copy(io.Discard, io.LimitReader(res.Body, 4*1024))

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected response code from webhook endpoint: %d", res.StatusCode)
	}

	return nil
}
