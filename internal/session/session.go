// Package session implements the tool-server's single-session manager
// (spec component C2): it owns the one Authoring-API client and its
// dispatcher, orchestrating connect/reconnect/disconnect and exposing a
// "reconnecting?" gate so other components can fast-fail rather than queue
// work against a session that is mid-transition.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/iexmatsu/waapi-toolserver/internal/config"
	"github.com/iexmatsu/waapi-toolserver/internal/dispatcher"
	"github.com/iexmatsu/waapi-toolserver/internal/metrics"
	"github.com/iexmatsu/waapi-toolserver/internal/queue"
	"github.com/iexmatsu/waapi-toolserver/internal/subscription"
	"github.com/iexmatsu/waapi-toolserver/internal/waapierr"
	"github.com/iexmatsu/waapi-toolserver/internal/wstransport"
)

// State mirrors spec §3's session state variable.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Dialer abstracts wstransport.Dial so tests can substitute a fake
// transport without opening a real socket.
type Dialer func(ctx context.Context, url string, handshakeTimeout time.Duration, logger zerolog.Logger) (wstransport.Client, error)

// Session is the single-session state machine described in spec §4.2. All
// state transitions are serialized by mu; the consumer goroutine inside the
// active dispatcher never acquires mu (spec §5 locking discipline).
type Session struct {
	mu         sync.Mutex
	state      State
	client     wstransport.Client
	dispatcher *dispatcher.Dispatcher
	subs       *subscription.Registry

	reconnecting atomic.Bool

	cfg    *config.Config
	logger zerolog.Logger
	dial   Dialer
}

// New constructs an unconnected Session. Callers must call Connect before
// issuing any RPC work.
func New(cfg *config.Config, logger zerolog.Logger, dial Dialer) *Session {
	if dial == nil {
		dial = func(ctx context.Context, url string, handshakeTimeout time.Duration, l zerolog.Logger) (wstransport.Client, error) {
			return wstransport.Dial(ctx, url, handshakeTimeout, l)
		}
	}
	return &Session{
		cfg:    cfg,
		logger: logger.With().Str("component", "session").Logger(),
		dial:   dial,
		state:  StateIdle,
	}
}

// IsReconnecting reports whether a Connect call is currently in progress.
func (s *Session) IsReconnecting() bool {
	return s.reconnecting.Load()
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatcher returns the live dispatcher for issuing requests, or a
// waapierr.Reconnecting / waapierr.NotConnected fast-fail.
func (s *Session) Dispatcher() (*dispatcher.Dispatcher, error) {
	if s.reconnecting.Load() {
		return nil, &waapierr.Reconnecting{}
	}
	s.mu.Lock()
	d := s.dispatcher
	s.mu.Unlock()
	if d == nil {
		return nil, &waapierr.NotConnected{}
	}
	return d, nil
}

// Subscriptions returns the active subscription registry (C4) for draining
// events, or a Reconnecting/NotConnected fast-fail matching Dispatcher.
func (s *Session) Subscriptions() (*subscription.Registry, error) {
	if s.reconnecting.Load() {
		return nil, &waapierr.Reconnecting{}
	}
	s.mu.Lock()
	subs := s.subs
	s.mu.Unlock()
	if subs == nil {
		return nil, &waapierr.NotConnected{}
	}
	return subs, nil
}

// Connect implements spec §4.2's algorithm: tear down any existing
// (client, dispatcher) pair, fast-failing concurrent callers with
// Reconnecting while that happens, then construct a fresh pair.
//
// Step ordering matters: the session lock is held only while flipping state
// and swapping pointers, never across the blocking dial or dispatcher
// teardown (spec §5: "no component ever acquires the session lock while
// holding the queue mutex... or vice versa").
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.reconnecting.Load() {
		s.mu.Unlock()
		return &waapierr.AlreadyReconnecting{}
	}
	s.reconnecting.Store(true)
	s.state = StateReconnecting
	metrics.SessionState.Set(float64(StateReconnecting))

	oldClient := s.client
	oldDispatcher := s.dispatcher
	s.client = nil
	s.dispatcher = nil
	s.mu.Unlock()

	if oldDispatcher != nil {
		oldDispatcher.Stop(s.cfg.DispatcherShutdownTimeout)
	} else if oldClient != nil {
		if err := oldClient.Disconnect(); err != nil {
			s.logger.Warn().Err(err).Msg("error closing previous transport during reconnect")
		}
	}

	start := time.Now()
	newClient, err := s.dial(ctx, s.cfg.WaapiURL, s.cfg.CallTimeout, s.logger)
	if err != nil {
		s.mu.Lock()
		s.reconnecting.Store(false)
		s.state = StateDisconnected
		metrics.SessionState.Set(float64(StateDisconnected))
		s.mu.Unlock()
		return err
	}

	subs := subscription.New(s.cfg.MaxSubscriptionBuffer)
	q := queue.New(s.cfg.MaxQueueSize, s.cfg.QueuePollInterval)
	metrics.QueueCapacity.Set(float64(s.cfg.MaxQueueSize))

	var dispatcherOpts []dispatcher.Option
	if s.cfg.DispatchRateLimit > 0 {
		dispatcherOpts = append(dispatcherOpts, dispatcher.WithRateLimit(s.cfg.DispatchRateLimit))
	}
	newDispatcher := dispatcher.New(q, newClient, subs, s.cfg.CallTimeout, s.logger, dispatcherOpts...)

	s.mu.Lock()
	s.client = newClient
	s.dispatcher = newDispatcher
	s.subs = subs
	s.state = StateConnected
	s.reconnecting.Store(false)
	metrics.SessionState.Set(float64(StateConnected))
	s.mu.Unlock()

	metrics.ReconnectsTotal.Inc()
	metrics.ReconnectDuration.Observe(time.Since(start).Seconds())
	s.logger.Info().Str("url", s.cfg.WaapiURL).Msg("waapi session connected")
	return nil
}

// Disconnect stops the active dispatcher (draining in-flight work per spec
// §4.3) and closes the transport. Safe to call multiple times.
func (s *Session) Disconnect() {
	s.mu.Lock()
	d := s.dispatcher
	c := s.client
	s.dispatcher = nil
	s.client = nil
	s.state = StateDisconnected
	metrics.SessionState.Set(float64(StateDisconnected))
	s.mu.Unlock()

	if d != nil {
		d.Stop(s.cfg.DispatcherShutdownTimeout)
		return // Stop already disconnects the transport it was given
	}
	if c != nil {
		if err := c.Disconnect(); err != nil {
			s.logger.Warn().Err(err).Msg("error closing transport on disconnect")
		}
	}
}
