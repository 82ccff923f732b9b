// Package memorystore implements handler.MetadataStore in memory.
// Records only exist as long as the process is alive, the same tradeoff
// tusd's in-memory locker makes for locks.
package memorystore

import (
	"context"
	"sync"
	"time"

	"github.com/fileup/fileupd/pkg/handler"
)

// DefaultTTL is applied when a caller sets a record with
// handler.TTLDefault.
const DefaultTTL = 24 * time.Hour

// MemoryStore is a mutex-guarded map of upload id to record, with a
// background sweep evicting entries past their TTL.
type MemoryStore struct {
	defaultTTL time.Duration

	mu      sync.Mutex
	entries map[string]entry
}

type entry struct {
	record  handler.UploadRecord
	expires time.Time // zero means "never expires"
}

// New creates a MemoryStore and starts its background eviction sweep on
// interval. Callers that don't care can pass zero, which uses one minute.
func New(interval time.Duration) *MemoryStore {
	if interval <= 0 {
		interval = time.Minute
	}

	store := &MemoryStore{
		defaultTTL: DefaultTTL,
		entries:    make(map[string]entry),
	}

	go store.sweep(interval)

	return store
}

func (s *MemoryStore) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()

		s.mu.Lock()
		for id, e := range s.entries {
			if !e.expires.IsZero() && now.After(e.expires) {
				delete(s.entries, id)
			}
		}
		s.mu.Unlock()
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (handler.UploadRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return handler.UploadRecord{}, false, nil
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		delete(s.entries, id)
		return handler.UploadRecord{}, false, nil
	}

	return e.record, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, id string, rec handler.UploadRecord, ttl handler.TTL) error {
	e := entry{record: rec}

	if ttl.IsNone() {
		// expires stays zero: never evicted by the sweep.
	} else if secs, ok := ttl.Seconds(); ok {
		e.expires = time.Now().Add(time.Duration(secs) * time.Second)
	} else {
		e.expires = time.Now().Add(s.defaultTTL)
	}

	s.mu.Lock()
	s.entries[id] = e
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}
