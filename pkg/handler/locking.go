package handler

import (
	"sync"

	"github.com/fileup/fileupd/internal/semaphore"
)

// lockTable hands out a per-upload-id exclusive semaphore, closing the
// check-then-act race between reading an upload's offset and seeking/
// writing to it. The post-write size check in patch.go remains the
// authoritative guard regardless of whether a caller holds this lock.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]semaphore.Semaphore
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]semaphore.Semaphore)}
}

func (t *lockTable) acquire(id string) func() {
	t.mu.Lock()
	sem, ok := t.locks[id]
	if !ok {
		sem = semaphore.New(1)
		t.locks[id] = sem
	}
	t.mu.Unlock()

	sem.Acquire()
	// Entries are intentionally never removed: deleting one while another
	// goroutine holds a reference to its semaphore would let a third
	// arrival mint a second, independent semaphore for the same id and
	// defeat mutual exclusion. The table's steady-state size is bounded
	// by the number of distinct upload ids ever seen, which is cheap.
	return sem.Release
}
