// Package latest implements a "latest request wins" guard for asynchronous
// fetches. Two independently triggered fetches for different symbols give no
// ordering guarantee on arrival; a response is applied only if its epoch is
// still the newest issued for that resource, so a slow stale response can
// never overwrite a newer result.
package latest

import "sync"

// Tracker issues monotonically increasing request epochs for one resource.
// The zero value is ready to use.
type Tracker struct {
	mu      sync.Mutex
	current uint64
}

// Next issues a new epoch, invalidating all previously issued ones.
// Re-issuing a search (or navigating away) therefore logically cancels any
// in-flight request's effect on state.
func (t *Tracker) Next() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current++
	return t.current
}

// Current reports whether epoch is still the newest issued epoch, i.e.
// whether a resolving fetch may apply its result.
func (t *Tracker) Current(epoch uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return epoch == t.current
}
