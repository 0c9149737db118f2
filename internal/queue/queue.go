// Package queue implements the time-ordered, bounded request queue (spec
// component C1): a min-heap keyed by (due_at, seq) that the dispatcher's
// single consumer goroutine drains in strict due-order.
package queue

import (
	"container/heap"
	"sync"
	"time"
)

// Item is one queued request. Seq is assigned by the queue and breaks ties
// between equal DueAt values, giving FIFO order among equi-scheduled puts.
type Item struct {
	DueAt time.Time
	Seq   uint64
	Value any
}

// heapSlice is the container/heap implementation, ordered by (DueAt, Seq).
type heapSlice []*Item

func (h heapSlice) Len() int { return len(h) }
func (h heapSlice) Less(i, j int) bool {
	if h[i].DueAt.Equal(h[j].DueAt) {
		return h[i].Seq < h[j].Seq
	}
	return h[i].DueAt.Before(h[j].DueAt)
}
func (h heapSlice) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *heapSlice) Push(x any)   { *h = append(*h, x.(*Item)) }
func (h *heapSlice) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Full is returned by Put when the queue is already at MaxSize.
type Full struct {
	Size int
	Max  int
}

func (e *Full) Error() string { return "queue full" }

// Queue is a bounded min-heap of (due_at, seq)-ordered items, with a single
// consumer blocking in PopDue until the head is due or Stop is called.
//
// Invariant: len(items) never exceeds maxSize; Put fails fast with *Full
// rather than blocking the producer.
//
// Signaling uses a 1-slot notify channel rather than sync.Cond: PopDue
// selects on notify, stop, and a timer sized to the lesser of (time until
// head is due) and PollInterval, which keeps shutdown latency bounded
// without the Cond+timeout wiring a blocking condvar would need.
type Queue struct {
	mu      sync.Mutex
	items   heapSlice
	maxSize int
	nextSeq uint64

	notify chan struct{}
	stopCh chan struct{}
	once   sync.Once

	// PollInterval bounds how long PopDue can block before re-checking the
	// stop signal, independent of how far in the future the head item is
	// due (spec §4.1: shutdown latency bounded by PollInterval).
	PollInterval time.Duration
}

// New creates a queue bounded at maxSize, waking its consumer at least
// every pollInterval even with no activity.
func New(maxSize int, pollInterval time.Duration) *Queue {
	return &Queue{
		maxSize:      maxSize,
		PollInterval: pollInterval,
		notify:       make(chan struct{}, 1),
		stopCh:       make(chan struct{}),
	}
}

// Put enqueues value, due at dueAt, returning *Full if the queue is already
// at capacity.
func (q *Queue) Put(value any, dueAt time.Time) (uint64, error) {
	q.mu.Lock()
	if len(q.items) >= q.maxSize {
		size, max := len(q.items), q.maxSize
		q.mu.Unlock()
		return 0, &Full{Size: size, Max: max}
	}

	q.nextSeq++
	seq := q.nextSeq
	heap.Push(&q.items, &Item{DueAt: dueAt, Seq: seq, Value: value})
	q.mu.Unlock()

	q.wake()
	return seq, nil
}

func (q *Queue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Size returns the current number of queued (not yet popped) items.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// MaxSize returns the configured capacity.
func (q *Queue) MaxSize() int { return q.maxSize }

// Stop wakes any blocked PopDue call and causes all future calls to return
// immediately with ok=false. Safe to call more than once.
func (q *Queue) Stop() {
	q.once.Do(func() { close(q.stopCh) })
}

// PopDue blocks until the head item's DueAt has passed, or Stop is called,
// returning (item, true) in the former case and (nil, false) in the latter.
func (q *Queue) PopDue() (*Item, bool) {
	for {
		select {
		case <-q.stopCh:
			return nil, false
		default:
		}

		q.mu.Lock()
		wait := q.PollInterval
		if len(q.items) > 0 {
			head := q.items[0]
			now := time.Now()
			if !head.DueAt.After(now) {
				item := heap.Pop(&q.items).(*Item)
				q.mu.Unlock()
				return item, true
			}
			if d := head.DueAt.Sub(now); d < wait {
				wait = d
			}
		}
		q.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-q.stopCh:
			timer.Stop()
			return nil, false
		case <-q.notify:
			timer.Stop()
		case <-timer.C:
		}
	}
}
