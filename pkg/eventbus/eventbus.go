// Package eventbus provides the in-process implementation of
// handler.EventBus: a small synchronous dispatcher that fans
// UploadStarted/UploadComplete notifications out to registered
// subscribers. The subpattern follows tusd's hook system, where the
// handler's upload lifecycle notifications are glued to pluggable
// delivery mechanisms; here the delivery mechanisms are Subscriber
// implementations such as Webhook and ScriptRunner.
package eventbus

import (
	"log/slog"
	"sync"

	"github.com/fileup/fileupd/pkg/handler"
)

// Subscriber receives events published on a Bus. Handle is called
// synchronously and must not panic; errors are the subscriber's own
// problem to report, since publishing is fire-and-forget for the
// handler.
type Subscriber interface {
	Handle(ev handler.Event)
}

// SubscriberFunc adapts a plain function to the Subscriber interface.
type SubscriberFunc func(ev handler.Event)

func (f SubscriberFunc) Handle(ev handler.Event) { f(ev) }

// Bus dispatches events to its subscribers in registration order. The
// zero value is ready to use. Dispatch is synchronous: Publish returns
// after every subscriber has run, which keeps event ordering identical
// to the upload lifecycle ordering and makes the bus trivial to test.
// Subscribers doing slow work (network calls) should hand it off to
// their own goroutines.
type Bus struct {
	mu   sync.RWMutex
	subs []Subscriber
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers sub for all subsequently published events.
func (b *Bus) Subscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, sub)
}

// Publish implements handler.EventBus.
func (b *Bus) Publish(ev handler.Event) {
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.Handle(ev)
	}
}

// LogSubscriber returns a Subscriber that records every event on logger
// at Info level. cmd/fileupd registers it so upload lifecycle transitions
// show up in the server log even when no other subscriber is configured.
func LogSubscriber(logger *slog.Logger) Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return SubscriberFunc(func(ev handler.Event) {
		logger.Info("UploadEvent", "type", string(ev.Type), "id", ev.ID, "file", ev.File)
	})
}
