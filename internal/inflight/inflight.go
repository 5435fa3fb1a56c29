// Package inflight deduplicates concurrent analysis requests for the same
// chat. Callers acquire the chat's slot before computing and must release it
// on every exit path.
package inflight

import "sync"

// Tracker marks chats with an analysis in progress.
type Tracker struct {
	mu     sync.Mutex
	active map[int64]struct{}
}

// New creates an empty Tracker.
func New() *Tracker {
	return &Tracker{active: make(map[int64]struct{})}
}

// TryAcquire reserves the slot for key. It returns false if an analysis for
// the key is already running.
func (t *Tracker) TryAcquire(key int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.active[key]; busy {
		return false
	}
	t.active[key] = struct{}{}
	return true
}

// Release frees the slot for key. Releasing an unheld key is a no-op.
func (t *Tracker) Release(key int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.active, key)
}
