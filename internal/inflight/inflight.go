// Package inflight guards long-running generation requests: at most one
// outstanding request per named slot, starting a new one cancels the
// superseded request first.
package inflight

import (
	"context"
	"sync"
)

type entry struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Registry tracks one cancellable context per slot key. The zero value is
// ready to use.
type Registry struct {
	mu    sync.Mutex
	slots map[string]*entry
}

// Start derives a cancellable context for the slot, cancelling whatever was
// running under the same key. The returned done func releases the slot once
// the request settles; calling it after Cancel already fired is a no-op.
func (r *Registry) Start(parent context.Context, key string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	e := &entry{ctx: ctx, cancel: cancel}

	r.mu.Lock()
	if r.slots == nil {
		r.slots = make(map[string]*entry)
	}
	if prev, ok := r.slots[key]; ok {
		prev.cancel()
	}
	r.slots[key] = e
	r.mu.Unlock()

	done := func() {
		r.mu.Lock()
		if r.slots[key] == e {
			delete(r.slots, key)
		}
		r.mu.Unlock()
		cancel()
	}
	return ctx, done
}

// Cancel aborts the slot's outstanding request. Safe to call when nothing is
// running or the request already settled: it is a no-op, never an error.
func (r *Registry) Cancel(key string) {
	r.mu.Lock()
	e, ok := r.slots[key]
	if ok {
		delete(r.slots, key)
	}
	r.mu.Unlock()

	if ok {
		e.cancel()
	}
}

// CancelAll aborts every outstanding request.
func (r *Registry) CancelAll() {
	r.mu.Lock()
	slots := r.slots
	r.slots = nil
	r.mu.Unlock()

	for _, e := range slots {
		e.cancel()
	}
}
