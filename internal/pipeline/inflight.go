package pipeline

import "sync"

// inflight tracks (project, type) pairs with a generation running.
type inflight struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newInflight() *inflight {
	return &inflight{active: make(map[string]struct{})}
}

// acquire marks key busy. It returns a release func, or false when key is
// already busy.
func (f *inflight) acquire(key string) (func(), bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.active[key]; busy {
		return nil, false
	}
	f.active[key] = struct{}{}
	return func() {
		f.mu.Lock()
		delete(f.active, key)
		f.mu.Unlock()
	}, true
}
