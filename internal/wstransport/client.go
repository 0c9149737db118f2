// Package wstransport implements the single concrete connection to the
// Authoring API: a WebSocket-based JSON-RPC peer. Every other component in
// this repository depends only on the Client interface, grounded on the
// spec's black-box contract ("call(uri, args, options) -> value | error",
// "subscribe(uri, options, handler) -> handle", "unsubscribe(handle) ->
// bool", "disconnect()").
//
// The dial path is grounded on internal/multi/proxy.go's use of
// websocket.Dialer with DialContext/HandshakeTimeout; the read/write split
// is grounded on internal/shared/pump_read.go and pump_write.go.
package wstransport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/iexmatsu/waapi-toolserver/internal/waapierr"
)

// Handle identifies a live subscription with the remote peer. Opaque to
// callers; only wstransport and the dispatcher (C3, which owns the one
// permitted reference to it) construct or inspect its contents.
type Handle struct {
	id string
}

// EventHandler receives one decoded event payload per call. It must not
// block: it is invoked on the transport's single read-loop goroutine, so a
// slow handler stalls delivery of all other subscriptions and replies.
type EventHandler func(event any)

// Client is the Authoring-API surface every other component depends on.
type Client interface {
	Call(ctx context.Context, uri string, args, options map[string]any) (any, error)
	Subscribe(ctx context.Context, uri string, options map[string]any, handler EventHandler) (Handle, error)
	Unsubscribe(ctx context.Context, handle Handle) (bool, error)
	Disconnect() error
}

// wire envelopes. The Authoring API's own wire format is a black box per
// spec; this is this transport's choice of a JSON-RPC-shaped framing over
// the WebSocket, kept deliberately small.
type callEnvelope struct {
	ID      string         `json:"id"`
	Kind    string         `json:"kind"` // "call" | "subscribe" | "unsubscribe"
	URI     string         `json:"uri,omitempty"`
	Args    map[string]any `json:"args,omitempty"`
	Options map[string]any `json:"options,omitempty"`
	SubID   string         `json:"subscriptionId,omitempty"`
}

type replyEnvelope struct {
	ID             string          `json:"id"`
	Result         json.RawMessage `json:"result,omitempty"`
	Error          *wireError      `json:"error,omitempty"`
	SubscriptionID string          `json:"subscriptionId,omitempty"`
	Event          json.RawMessage `json:"event,omitempty"`
}

type wireError struct {
	Message string `json:"message"`
}

type pending struct {
	replyCh chan replyEnvelope
}

// WSClient dials the Authoring API over ws:// and multiplexes concurrent
// callers' requests/replies over the single underlying connection. Per
// spec invariant, only one frame is ever in flight on the wire at a time
// from this process's perspective: WSClient itself does not serialize
// writes beyond what's required for wire safety — that serialization is
// the dispatcher's job (single consumer goroutine, §3 invariants).
type WSClient struct {
	conn   *websocket.Conn
	logger zerolog.Logger

	writeMu sync.Mutex

	mu          sync.Mutex
	nextID      uint64
	waiters     map[string]pending
	subscribers map[string]EventHandler
	closed      bool
	closeCh     chan struct{}
}

// Dial connects to the Authoring API at url and starts the read loop.
func Dial(ctx context.Context, url string, handshakeTimeout time.Duration, logger zerolog.Logger) (*WSClient, error) {
	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, &waapierr.TransportError{URI: url, Cause: err}
	}

	c := &WSClient{
		conn:        conn,
		logger:      logger.With().Str("component", "wstransport").Logger(),
		waiters:     make(map[string]pending),
		subscribers: make(map[string]EventHandler),
		closeCh:     make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *WSClient) nextRequestID() string {
	id := atomic.AddUint64(&c.nextID, 1)
	return fmt.Sprintf("req-%d", id)
}

// Call sends a call envelope and blocks until the matching reply arrives
// or ctx is done.
func (c *WSClient) Call(ctx context.Context, uri string, args, options map[string]any) (any, error) {
	id := c.nextRequestID()
	replyCh := make(chan replyEnvelope, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, &waapierr.NotConnected{}
	}
	c.waiters[id] = pending{replyCh: replyCh}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.waiters, id)
		c.mu.Unlock()
	}()

	env := callEnvelope{ID: id, Kind: "call", URI: uri, Args: args, Options: options}
	if err := c.writeJSON(env); err != nil {
		return nil, &waapierr.TransportError{URI: uri, Cause: err}
	}

	select {
	case reply := <-replyCh:
		if reply.Error != nil {
			return nil, &waapierr.CallError{URI: uri, Cause: fmt.Errorf("%s", reply.Error.Message)}
		}
		var value any
		if len(reply.Result) > 0 {
			if err := json.Unmarshal(reply.Result, &value); err != nil {
				return nil, &waapierr.TransportError{URI: uri, Cause: err}
			}
		}
		return value, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.closeCh:
		return nil, &waapierr.NotConnected{}
	}
}

// Subscribe registers handler for events on uri, returning the server-minted
// subscription id wrapped in a Handle.
func (c *WSClient) Subscribe(ctx context.Context, uri string, options map[string]any, handler EventHandler) (Handle, error) {
	id := c.nextRequestID()
	replyCh := make(chan replyEnvelope, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Handle{}, &waapierr.NotConnected{}
	}
	c.waiters[id] = pending{replyCh: replyCh}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.waiters, id)
		c.mu.Unlock()
	}()

	env := callEnvelope{ID: id, Kind: "subscribe", URI: uri, Options: options}
	if err := c.writeJSON(env); err != nil {
		return Handle{}, &waapierr.TransportError{URI: uri, Cause: err}
	}

	select {
	case reply := <-replyCh:
		if reply.Error != nil {
			return Handle{}, &waapierr.CallError{URI: uri, Cause: fmt.Errorf("%s", reply.Error.Message)}
		}
		subID := reply.SubscriptionID
		c.mu.Lock()
		c.subscribers[subID] = handler
		c.mu.Unlock()
		return Handle{id: subID}, nil
	case <-ctx.Done():
		return Handle{}, ctx.Err()
	case <-c.closeCh:
		return Handle{}, &waapierr.NotConnected{}
	}
}

// Unsubscribe tears down a prior subscription.
func (c *WSClient) Unsubscribe(ctx context.Context, handle Handle) (bool, error) {
	id := c.nextRequestID()
	replyCh := make(chan replyEnvelope, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, &waapierr.NotConnected{}
	}
	c.waiters[id] = pending{replyCh: replyCh}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.waiters, id)
		delete(c.subscribers, handle.id)
		c.mu.Unlock()
	}()

	env := callEnvelope{ID: id, Kind: "unsubscribe", SubID: handle.id}
	if err := c.writeJSON(env); err != nil {
		return false, &waapierr.TransportError{Cause: err}
	}

	select {
	case reply := <-replyCh:
		if reply.Error != nil {
			return false, &waapierr.CallError{Cause: fmt.Errorf("%s", reply.Error.Message)}
		}
		var ok bool
		if len(reply.Result) > 0 {
			_ = json.Unmarshal(reply.Result, &ok)
		}
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-c.closeCh:
		return false, &waapierr.NotConnected{}
	}
}

// Disconnect closes the underlying connection and unblocks every pending waiter.
func (c *WSClient) Disconnect() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.closeCh)
	return c.conn.Close()
}

func (c *WSClient) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// readLoop is the transport's single reader goroutine: it decodes each
// incoming frame and either completes a waiter or fans an event out to its
// subscriber. Must never block on a handler.
func (c *WSClient) readLoop() {
	defer logRecover(c.logger)
	defer func() {
		c.mu.Lock()
		if !c.closed {
			c.closed = true
			close(c.closeCh)
		}
		c.mu.Unlock()
	}()

	for {
		var env replyEnvelope
		if err := c.conn.ReadJSON(&env); err != nil {
			c.logger.Warn().Err(err).Msg("waapi transport read loop ending")
			return
		}

		if env.SubscriptionID != "" && env.ID == "" {
			c.mu.Lock()
			handler := c.subscribers[env.SubscriptionID]
			c.mu.Unlock()
			if handler == nil {
				continue
			}
			var event any
			if len(env.Event) > 0 {
				if err := json.Unmarshal(env.Event, &event); err != nil {
					c.logger.Warn().Err(err).Str("subscription_id", env.SubscriptionID).Msg("failed to decode event payload")
					continue
				}
			}
			handler(event)
			continue
		}

		c.mu.Lock()
		w, ok := c.waiters[env.ID]
		c.mu.Unlock()
		if !ok {
			continue
		}
		select {
		case w.replyCh <- env:
		default:
		}
	}
}

func logRecover(logger zerolog.Logger) {
	if r := recover(); r != nil {
		logger.Error().Interface("panic_value", r).Msg("waapi transport read loop panicked")
	}
}
