// Package dispatcher implements the tool-server's single consumer of the
// timed priority queue (spec component C3): one goroutine drains due
// requests from internal/queue and performs the corresponding
// call/subscribe/unsubscribe against the Authoring-API transport, handing
// results back to waiters over single-slot reply channels.
package dispatcher

import (
	"bytes"
	"context"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/iexmatsu/waapi-toolserver/internal/logging"
	"github.com/iexmatsu/waapi-toolserver/internal/metrics"
	"github.com/iexmatsu/waapi-toolserver/internal/queue"
	"github.com/iexmatsu/waapi-toolserver/internal/subscription"
	"github.com/iexmatsu/waapi-toolserver/internal/waapierr"
	"github.com/iexmatsu/waapi-toolserver/internal/wstransport"
)

// kind enumerates the three request shapes the consumer understands.
type kind int

const (
	kindCall kind = iota
	kindSubscribe
	kindUnsubscribe
)

// Reply is what a producer reads off a request's single-slot channel: a
// successful value, or an error. Exactly one of the two is meaningful; the
// consumer writes at most once.
type Reply struct {
	Value any
	Err   error
}

// request is the unit of work pushed through the priority queue. Reply, if
// non-nil, is a buffered (capacity 1) channel so the consumer's write never
// blocks even if the producer already gave up (spec §3: "non-blocking
// single-slot to prevent consumer stalls").
type request struct {
	kind    kind
	uri     string
	args    map[string]any
	options map[string]any
	subID   string
	handler wstransport.EventHandler // kindSubscribe only
	reply   chan Reply
}

// Dispatcher owns the one permitted caller of the transport's
// Call/Subscribe/Unsubscribe methods: its own consumer goroutine.
type Dispatcher struct {
	q        *queue.Queue
	client   wstransport.Client
	subs     *subscription.Registry
	logger   zerolog.Logger
	limiter  *rate.Limiter
	callTout time.Duration

	done     chan struct{} // closed once the consumer goroutine returns
	consumer atomic.Int64  // goroutine id of the running consumer, 0 if none

	processed atomic.Uint64
	failed    atomic.Uint64
}

// Option configures a Dispatcher at construction time.
type Option func(*Dispatcher)

// WithRateLimit caps outbound RPC calls/sec issued by the consumer. A
// non-positive limit disables rate limiting (the default).
func WithRateLimit(perSecond int) Option {
	return func(d *Dispatcher) {
		if perSecond > 0 {
			d.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
		}
	}
}

// New constructs a Dispatcher over client and starts its consumer goroutine.
// q's PollInterval governs how promptly Stop is noticed (spec §4.1).
func New(q *queue.Queue, client wstransport.Client, subs *subscription.Registry, callTimeout time.Duration, logger zerolog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		q:        q,
		client:   client,
		subs:     subs,
		logger:   logger.With().Str("component", "dispatcher").Logger(),
		callTout: callTimeout,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	go d.run()
	return d
}

// IsAlive reports whether the consumer goroutine is still running.
func (d *Dispatcher) IsAlive() bool {
	select {
	case <-d.done:
		return false
	default:
		return true
	}
}

// IsConsumerGoroutine reports whether the calling goroutine is this
// dispatcher's own consumer — used to reject re-entrant submissions that
// would otherwise deadlock the consumer waiting on its own reply.
func (d *Dispatcher) IsConsumerGoroutine() bool {
	id := d.consumer.Load()
	return id != 0 && id == goroutineID()
}

// reentrantErr is returned when a caller running on the consumer goroutine
// itself attempts to enqueue — a programmer error, not a runtime condition.
type reentrantErr struct{}

func (reentrantErr) Error() string {
	return "dispatcher: cannot enqueue from the consumer goroutine itself (would deadlock)"
}

// Enqueue schedules a call to uri, due at dueAt (zero value means "now").
// If wantReply is false the request is fire-and-forget: Enqueue returns a
// nil channel and the consumer logs (rather than propagates) any failure.
func (d *Dispatcher) Enqueue(uri string, args, options map[string]any, dueAt time.Time, wantReply bool) (<-chan Reply, error) {
	if d.IsConsumerGoroutine() {
		return nil, reentrantErr{}
	}
	if dueAt.IsZero() {
		dueAt = time.Now()
	}

	req := &request{kind: kindCall, uri: uri, args: args, options: options}
	if wantReply {
		req.reply = make(chan Reply, 1)
	}

	if _, err := d.q.Put(req, dueAt); err != nil {
		if full, ok := err.(*queue.Full); ok {
			metrics.QueueRejectedTotal.Inc()
			return nil, &waapierr.QueueFull{Size: full.Size, Max: full.Max}
		}
		return nil, err
	}
	metrics.QueueDepth.Set(float64(d.q.Size()))
	return req.reply, nil
}

// EnqueueSubscribe schedules a subscription registration for uri. The reply
// value, on success, is the subscription id (string).
func (d *Dispatcher) EnqueueSubscribe(uri string, options map[string]any, handler wstransport.EventHandler) (<-chan Reply, error) {
	if d.IsConsumerGoroutine() {
		return nil, reentrantErr{}
	}
	req := &request{kind: kindSubscribe, uri: uri, options: options, handler: handler, reply: make(chan Reply, 1)}
	if _, err := d.q.Put(req, time.Now()); err != nil {
		if full, ok := err.(*queue.Full); ok {
			metrics.QueueRejectedTotal.Inc()
			return nil, &waapierr.QueueFull{Size: full.Size, Max: full.Max}
		}
		return nil, err
	}
	return req.reply, nil
}

// EnqueueUnsubscribe schedules removal of subscriptionID. The reply value,
// on success, is a bool indicating whether the transport confirmed teardown.
func (d *Dispatcher) EnqueueUnsubscribe(subscriptionID string) (<-chan Reply, error) {
	if d.IsConsumerGoroutine() {
		return nil, reentrantErr{}
	}
	req := &request{kind: kindUnsubscribe, subID: subscriptionID, reply: make(chan Reply, 1)}
	if _, err := d.q.Put(req, time.Now()); err != nil {
		if full, ok := err.(*queue.Full); ok {
			metrics.QueueRejectedTotal.Inc()
			return nil, &waapierr.QueueFull{Size: full.Size, Max: full.Max}
		}
		return nil, err
	}
	return req.reply, nil
}

// Await waits on reply for at most timeout, translating a local give-up into
// waapierr.Timeout. The dispatcher is not told to cancel — it completes the
// call regardless and drops the late write.
func Await(reply <-chan Reply, uri string, timeout time.Duration) (any, error) {
	if reply == nil {
		return nil, nil // fire-and-forget: nothing to wait for
	}
	select {
	case r := <-reply:
		return r.Value, r.Err
	case <-time.After(timeout):
		return nil, &waapierr.Timeout{URI: uri, Timeout: timeout.String()}
	}
}

// Stop signals the consumer to exit, waits up to timeout for it to do so,
// then force-unsubscribes every remaining subscription and disconnects the
// transport. Calling it again is safe: the wait returns at once, there are
// no subscriptions left to remove, and the transport's Disconnect is called
// a second time.
func (d *Dispatcher) Stop(timeout time.Duration) {
	d.q.Stop()

	select {
	case <-d.done:
	case <-time.After(timeout):
		d.logger.Warn().Dur("timeout", timeout).Msg("dispatcher consumer did not exit within shutdown timeout")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for _, h := range d.subs.RemoveAll() {
		if _, err := d.client.Unsubscribe(ctx, h); err != nil {
			d.logger.Warn().Err(err).Msg("failed to unsubscribe during shutdown")
		}
	}
	if err := d.client.Disconnect(); err != nil {
		d.logger.Warn().Err(err).Msg("transport disconnect reported an error during shutdown")
	}
}

// Stats returns (processed, failed) lifetime counters for diagnostics.
func (d *Dispatcher) Stats() (processed, failed uint64) {
	return d.processed.Load(), d.failed.Load()
}

func (d *Dispatcher) run() {
	d.consumer.Store(goroutineID())
	defer close(d.done)
	defer logging.RecoverPanic(d.logger, "dispatcher.run", nil)

	for {
		item, ok := d.q.PopDue()
		if !ok {
			d.logger.Info().Msg("dispatcher consumer exiting")
			return
		}
		metrics.QueueDepth.Set(float64(d.q.Size()))

		req, ok := item.Value.(*request)
		if !ok {
			continue
		}
		d.handle(req)
	}
}

func (d *Dispatcher) handle(req *request) {
	if d.limiter != nil {
		_ = d.limiter.Wait(context.Background())
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.callTout)
	defer cancel()

	start := time.Now()
	switch req.kind {
	case kindCall:
		d.handleCall(ctx, req)
	case kindSubscribe:
		d.handleSubscribe(ctx, req)
	case kindUnsubscribe:
		d.handleUnsubscribe(ctx, req)
	}
	metrics.DispatchLatency.WithLabelValues(kindLabel(req.kind)).Observe(time.Since(start).Seconds())
}

func (d *Dispatcher) handleCall(ctx context.Context, req *request) {
	value, err := d.client.Call(ctx, req.uri, req.args, req.options)
	d.record(req, err)
	d.reply(req, Reply{Value: value, Err: err})
}

func (d *Dispatcher) handleSubscribe(ctx context.Context, req *request) {
	id := d.subs.NewID()
	handler := req.handler
	wrapped := func(event any) { d.subs.PushEvent(id, event) }
	if handler != nil {
		wrapped = func(event any) {
			d.subs.PushEvent(id, event)
			handler(event)
		}
	}

	handle, err := d.client.Subscribe(ctx, req.uri, req.options, wrapped)
	d.record(req, err)
	if err != nil {
		d.reply(req, Reply{Err: err})
		return
	}
	d.subs.Register(id, req.uri, handle)
	metrics.SubscriptionsActive.Inc()
	d.reply(req, Reply{Value: id})
}

func (d *Dispatcher) handleUnsubscribe(ctx context.Context, req *request) {
	handle, ok := d.subs.Remove(req.subID)
	if !ok {
		d.reply(req, Reply{Value: false})
		return
	}
	ok2, err := d.client.Unsubscribe(ctx, handle)
	d.record(req, err)
	if err != nil {
		d.reply(req, Reply{Err: err})
		return
	}
	metrics.SubscriptionsActive.Dec()
	d.reply(req, Reply{Value: ok2})
}

func (d *Dispatcher) record(req *request, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		d.failed.Add(1)
		d.logger.Warn().Err(err).Str("uri", req.uri).Str("kind", kindLabel(req.kind)).Msg("dispatch failed")
	} else {
		d.processed.Add(1)
	}
	metrics.DispatchedTotal.WithLabelValues(kindLabel(req.kind), outcome).Inc()
}

// reply writes result to req.reply without blocking; if the producer already
// abandoned the wait (buffer full, which cannot happen with capacity-1 and a
// single writer, or the channel was nil for fire-and-forget) the write is a
// silent no-op.
func (d *Dispatcher) reply(req *request, result Reply) {
	if req.reply == nil {
		if result.Err != nil {
			d.logger.Warn().Err(result.Err).Str("uri", req.uri).Msg("fire-and-forget call failed")
		}
		return
	}
	select {
	case req.reply <- result:
	default:
	}
}

func kindLabel(k kind) string {
	switch k {
	case kindCall:
		return "call"
	case kindSubscribe:
		return "subscribe"
	case kindUnsubscribe:
		return "unsubscribe"
	default:
		return "unknown"
	}
}

// goroutineID parses the current goroutine's id out of a runtime stack
// trace. This is the standard (if informal) way to obtain it in Go — the
// runtime exposes no public API — and is only ever used for the re-entrancy
// check above, never for scheduling or correctness-critical logic.
func goroutineID() int64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	if i := bytes.IndexByte(buf, ' '); i >= 0 {
		buf = buf[:i]
	}
	id, _ := strconv.ParseInt(string(buf), 10, 64)
	return id
}
