package rpcserver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iexmatsu/waapi-toolserver/internal/config"
	"github.com/iexmatsu/waapi-toolserver/internal/plan"
	"github.com/iexmatsu/waapi-toolserver/internal/session"
	"github.com/iexmatsu/waapi-toolserver/internal/verbs"
	"github.com/iexmatsu/waapi-toolserver/internal/wstransport"
)

func newTestServer() *Server {
	reg := verbs.NewRegistry()
	logger := zerolog.Nop()
	runner := plan.New(nil, reg, plan.Config{}, logger)
	return New(reg, runner, logger)
}

// failingClient succeeds on every call except the one named in failURI,
// letting tests drive a mutating plan past undo.beginGroup and into a
// mid-plan rollback triggered by a specific verb's RPC.
type failingClient struct {
	failURI string
}

func (f failingClient) Call(ctx context.Context, uri string, args, options map[string]any) (any, error) {
	if uri == f.failURI {
		return nil, errors.New("boom: " + uri)
	}
	return map[string]any{"id": uri}, nil
}
func (failingClient) Subscribe(ctx context.Context, uri string, options map[string]any, handler wstransport.EventHandler) (wstransport.Handle, error) {
	return wstransport.Handle{}, nil
}
func (failingClient) Unsubscribe(ctx context.Context, handle wstransport.Handle) (bool, error) {
	return true, nil
}
func (failingClient) Disconnect() error { return nil }

func newFailingTestServer(t *testing.T, failURI string) *Server {
	t.Helper()
	cfg := &config.Config{
		WaapiURL:                  "ws://fake/waapi",
		CallTimeout:               time.Second,
		DispatcherShutdownTimeout: time.Second,
		QueuePollInterval:         10 * time.Millisecond,
		MaxQueueSize:              32,
		MaxSubscriptionBuffer:     8,
	}
	logger := zerolog.Nop()
	sess := session.New(cfg, logger, func(ctx context.Context, url string, handshakeTimeout time.Duration, l zerolog.Logger) (wstransport.Client, error) {
		return failingClient{failURI: failURI}, nil
	})
	t.Cleanup(sess.Disconnect)
	reg := verbs.NewRegistry()
	runner := plan.New(sess, reg, plan.Config{CallTimeout: time.Second}, logger)
	return New(reg, runner, logger)
}

func readResponses(t *testing.T, out *bytes.Buffer, n int) []response {
	t.Helper()
	sc := bufio.NewScanner(out)
	var resps []response
	for sc.Scan() {
		var r response
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("invalid response line %q: %v", sc.Text(), err)
		}
		resps = append(resps, r)
	}
	if len(resps) != n {
		t.Fatalf("expected %d response lines, got %d: %q", n, len(resps), out.String())
	}
	return resps
}

func TestServeListCommands(t *testing.T) {
	s := newTestServer()
	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"list_commands"}` + "\n")
	var out bytes.Buffer

	if err := s.Serve(context.Background(), in, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resps := readResponses(t, &out, 1)
	if resps[0].Error != nil {
		t.Fatalf("unexpected error response: %+v", resps[0].Error)
	}
	list, ok := resps[0].Result.([]any)
	if !ok || len(list) == 0 {
		t.Fatalf("expected non-empty command list, got %#v", resps[0].Result)
	}
}

func TestServeUnknownMethod(t *testing.T) {
	s := newTestServer()
	in := strings.NewReader(`{"jsonrpc":"2.0","id":2,"method":"bogus"}` + "\n")
	var out bytes.Buffer

	if err := s.Serve(context.Background(), in, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resps := readResponses(t, &out, 1)
	if resps[0].Error == nil || resps[0].Error.Kind != "validation" {
		t.Fatalf("expected validation error for unknown method, got %+v", resps[0].Error)
	}
}

func TestServeMalformedLineYieldsParseError(t *testing.T) {
	s := newTestServer()
	in := strings.NewReader("not json\n")
	var out bytes.Buffer

	if err := s.Serve(context.Background(), in, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resps := readResponses(t, &out, 1)
	if resps[0].Error == nil || resps[0].Error.Code != -32700 {
		t.Fatalf("expected parse error, got %+v", resps[0].Error)
	}
}

func TestServeMultipleLinesEachGetOneReply(t *testing.T) {
	s := newTestServer()
	in := strings.NewReader(
		`{"jsonrpc":"2.0","id":1,"method":"list_commands"}` + "\n" +
			`{"jsonrpc":"2.0","id":2,"method":"list_commands"}` + "\n",
	)
	var out bytes.Buffer

	if err := s.Serve(context.Background(), in, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	readResponses(t, &out, 2)
}

// TestServeExecutePlanFailureCarriesPartialLog is the wire-level regression
// for spec §7's "partial success is surfaced via the per-step log before
// the final error is returned": a mutating plan that fails mid-flight must
// still hand the client the log (begin_group through cancel_group) in the
// error response, not just the triggering error, so the caller can see
// which steps actually ran before re-querying session state (spec §9).
func TestServeExecutePlanFailureCarriesPartialLog(t *testing.T) {
	s := newFailingTestServer(t, "core.object.create")
	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"execute_plan","params":{"plan":[` +
		`{"command":"create_objects","args":{"child_names":["A"],"child_types":["Sound"],"parent_paths":["\\Actor-Mixer Hierarchy\\Default Work Unit"]}}` +
		`]}}` + "\n")
	var out bytes.Buffer

	if err := s.Serve(context.Background(), in, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resps := readResponses(t, &out, 1)
	if resps[0].Error == nil {
		t.Fatalf("expected plan failure, got result: %#v", resps[0].Result)
	}

	rawLog, ok := resps[0].Error.Details["log"]
	if !ok {
		t.Fatalf("expected error details to carry the partial log, got: %+v", resps[0].Error.Details)
	}
	entries, ok := rawLog.([]any)
	if !ok || len(entries) == 0 {
		t.Fatalf("expected a non-empty log, got %#v", rawLog)
	}

	var sawBegin, sawCancel bool
	for _, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		switch m["command"] {
		case "undo.begin_group":
			sawBegin = true
		case "undo.cancel_group":
			sawCancel = true
		}
	}
	if !sawBegin || !sawCancel {
		t.Fatalf("expected log to contain undo.begin_group and undo.cancel_group, got %+v", entries)
	}
}
