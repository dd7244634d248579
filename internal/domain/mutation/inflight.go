package mutation

import "sync"

// inflight tracks which entity ids currently have a mutation in flight.
// Acquire is check-and-record under one lock so two mutations can never
// race a speculative apply against the same entity.
type inflight struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newInflight() *inflight {
	return &inflight{ids: make(map[string]struct{})}
}

// acquire records id as in flight. Returns false if it already was.
func (f *inflight) acquire(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, held := f.ids[id]; held {
		return false
	}
	f.ids[id] = struct{}{}
	return true
}

// release clears id so the next mutation may proceed.
func (f *inflight) release(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.ids, id)
}

// len returns the number of ids currently in flight.
func (f *inflight) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ids)
}
