// Package subscription implements the subscription registry (spec
// component C4): maps a subscription id to its transport handle and a
// bounded, drop-newest event FIFO that callers drain on demand via the
// get-events verb.
package subscription

import (
	"sync"

	"github.com/google/uuid"

	"github.com/iexmatsu/waapi-toolserver/internal/metrics"
	"github.com/iexmatsu/waapi-toolserver/internal/wstransport"
)

// entry is one live subscription: its transport handle plus a bounded FIFO
// of undelivered event payloads.
type entry struct {
	mu     sync.Mutex
	handle wstransport.Handle
	topic  string
	events []any
	max    int
	// dropped counts events discarded because the buffer was full
	// (spec: "drop-newest" — the incoming event is the one discarded).
	dropped uint64
}

// Registry owns every live subscription for the current session. It is
// reset (discarded wholesale) on disconnect/reconnect — spec Non-goals
// explicitly exclude persisting subscription state across restarts.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	maxSize int
}

// New creates a registry whose per-subscription buffers hold at most
// maxBufferSize events before drop-newest kicks in.
func New(maxBufferSize int) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		maxSize: maxBufferSize,
	}
}

// NewID mints a fresh subscription id. Callers generate the id before the
// underlying transport Subscribe call completes, so the id can be closed
// over by the event handler without a data race on a field written after
// the subscribe call returns.
func (r *Registry) NewID() string {
	return uuid.NewString()
}

// Register associates id (from NewID) with its transport handle and the
// topic URI it was subscribed against (used only to label the dropped-event
// metric), making it visible to Drain/Remove. Must be called at most once
// per id.
func (r *Registry) Register(id, topic string, handle wstransport.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = &entry{handle: handle, topic: topic, max: r.maxSize}
}

// PushEvent appends an event payload to id's buffer. Non-blocking: when the
// buffer is at capacity the new event is dropped and the drop counter is
// incremented. Unknown ids are silently ignored (the subscription may have
// just been removed while an in-flight event was still arriving).
//
// Safe to call from the transport's read-loop goroutine — the one place in
// the system where a blocking call would be fatal (it would stall delivery
// to every other subscriber and reply waiter on the connection).
func (r *Registry) PushEvent(id string, event any) {
	r.mu.Lock()
	e := r.entries[id]
	r.mu.Unlock()
	if e == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.events) >= e.max {
		e.dropped++
		metrics.SubscriptionEventsDroppedTotal.WithLabelValues(e.topic).Inc()
		return
	}
	e.events = append(e.events, event)
}

// Drain returns up to maxCount queued events for id (or all of them, if
// maxCount <= 0), removing them from the buffer iff clear is true. Returns
// nil for an unknown id. Never blocks.
func (r *Registry) Drain(id string, maxCount int, clear bool) []any {
	r.mu.Lock()
	e := r.entries[id]
	r.mu.Unlock()
	if e == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	n := len(e.events)
	if maxCount > 0 && maxCount < n {
		n = maxCount
	}
	out := make([]any, n)
	copy(out, e.events[:n])

	if clear {
		remaining := len(e.events) - n
		copy(e.events, e.events[n:])
		e.events = e.events[:remaining]
	}
	return out
}

// Dropped returns the number of events discarded for id due to buffer
// overflow, for diagnostics/metrics.
func (r *Registry) Dropped(id string) uint64 {
	r.mu.Lock()
	e := r.entries[id]
	r.mu.Unlock()
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dropped
}

// Remove deletes id from the registry and returns its transport handle so
// the caller (the dispatcher, during unsubscribe or shutdown) can tear it
// down with the transport. Returns ok=false for an unknown id.
func (r *Registry) Remove(id string) (wstransport.Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return wstransport.Handle{}, false
	}
	delete(r.entries, id)
	return e.handle, true
}

// RemoveAll drains the registry entirely, returning every remaining handle
// so the dispatcher can unsubscribe each one during shutdown.
func (r *Registry) RemoveAll() []wstransport.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	handles := make([]wstransport.Handle, 0, len(r.entries))
	for id, e := range r.entries {
		handles = append(handles, e.handle)
		delete(r.entries, id)
	}
	return handles
}
