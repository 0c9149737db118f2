package verbs

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iexmatsu/waapi-toolserver/internal/config"
	"github.com/iexmatsu/waapi-toolserver/internal/session"
	"github.com/iexmatsu/waapi-toolserver/internal/wstransport"
)

// echoClient is a fake wstransport.Client that records every call and
// returns a canned (or echoed) value, letting verb adapters be exercised
// end-to-end without a real Authoring-API connection.
type echoClient struct {
	calls   []callRecord
	results map[string]any
	errs    map[string]error
}

type callRecord struct {
	uri  string
	args map[string]any
}

func (e *echoClient) Call(ctx context.Context, uri string, args, options map[string]any) (any, error) {
	e.calls = append(e.calls, callRecord{uri: uri, args: args})
	if err, ok := e.errs[uri]; ok {
		return nil, err
	}
	if v, ok := e.results[uri]; ok {
		return v, nil
	}
	return map[string]any{"id": uri, "name": "created"}, nil
}

func (e *echoClient) Subscribe(ctx context.Context, uri string, options map[string]any, handler wstransport.EventHandler) (wstransport.Handle, error) {
	return wstransport.Handle{}, nil
}
func (e *echoClient) Unsubscribe(ctx context.Context, handle wstransport.Handle) (bool, error) {
	return true, nil
}
func (e *echoClient) Disconnect() error { return nil }

func newTestSession(t *testing.T, client *echoClient) (*session.Session, *Context) {
	t.Helper()
	cfg := &config.Config{
		WaapiURL:                  "ws://fake/waapi",
		CallTimeout:               time.Second,
		DispatcherShutdownTimeout: time.Second,
		QueuePollInterval:         10 * time.Millisecond,
		MaxQueueSize:              32,
		MaxSubscriptionBuffer:     8,
	}
	sess := session.New(cfg, zerolog.Nop(), func(ctx context.Context, url string, handshakeTimeout time.Duration, l zerolog.Logger) (wstransport.Client, error) {
		return client, nil
	})
	if err := sess.Connect(context.Background()); err != nil {
		t.Fatalf("test session connect failed: %v", err)
	}
	t.Cleanup(sess.Disconnect)
	return sess, &Context{Session: sess, CallTimeout: time.Second}
}

func TestListAllEventNamesIssuesObjectGet(t *testing.T) {
	client := &echoClient{}
	_, vc := newTestSession(t, client)

	if _, err := listAllEventNames(context.Background(), vc, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.calls) != 1 || client.calls[0].uri != "core.object.get" {
		t.Fatalf("expected one core.object.get call, got %+v", client.calls)
	}
}

func TestCreateObjectsRequiresParentSource(t *testing.T) {
	client := &echoClient{}
	_, vc := newTestSession(t, client)

	_, err := createObjects(context.Background(), vc, map[string]any{
		"child_names": []any{"A", "B"},
		"child_types": []any{"Sound", "Sound"},
	})
	if err == nil {
		t.Fatal("expected a validation error when neither parent_paths nor prev_response_objects is given")
	}
}

func TestCreateObjectsIssuesOneCallPerChild(t *testing.T) {
	client := &echoClient{}
	_, vc := newTestSession(t, client)

	result, err := createObjects(context.Background(), vc, map[string]any{
		"child_names":  []any{"A", "B"},
		"child_types":  []any{"Sound", "Sound"},
		"parent_paths": []any{"\\Actor-Mixer Hierarchy\\Default Work Unit", "\\Actor-Mixer Hierarchy\\Default Work Unit"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	results, ok := result.([]any)
	if !ok || len(results) != 2 {
		t.Fatalf("expected 2 results, got %v", result)
	}
	if len(client.calls) != 2 {
		t.Fatalf("expected 2 core.object.create calls, got %d", len(client.calls))
	}
	for _, c := range client.calls {
		if c.uri != "core.object.create" {
			t.Fatalf("expected core.object.create, got %s", c.uri)
		}
	}
}

func TestCreateObjectsMismatchedLengthsFail(t *testing.T) {
	client := &echoClient{}
	_, vc := newTestSession(t, client)

	_, err := createObjects(context.Background(), vc, map[string]any{
		"child_names":  []any{"A", "B"},
		"child_types":  []any{"Sound"},
		"parent_paths": []any{"\\x", "\\x"},
	})
	if err == nil {
		t.Fatal("expected a validation error for mismatched list lengths")
	}
}

func TestCreateObjectsStopsOnFirstFailure(t *testing.T) {
	client := &echoClient{errs: map[string]error{"core.object.create": errBoom{}}}
	_, vc := newTestSession(t, client)

	_, err := createObjects(context.Background(), vc, map[string]any{
		"child_names":  []any{"A", "B"},
		"child_types":  []any{"Sound", "Sound"},
		"parent_paths": []any{"\\x", "\\x"},
	})
	if err == nil {
		t.Fatal("expected the adapter to surface the transport error")
	}
}

func TestRegistryListIsDeterministicAndNonEmpty(t *testing.T) {
	r := NewRegistry()
	list := r.List()
	if len(list) == 0 {
		t.Fatal("expected a non-empty verb list")
	}
	second := NewRegistry().List()
	for i := range list {
		if list[i] != second[i] {
			t.Fatalf("expected List() to be deterministic across calls at index %d", i)
		}
	}
}

func TestIsMutatingMatchesClosedEnumeration(t *testing.T) {
	r := NewRegistry()
	if !r.IsMutating("create_objects") {
		t.Fatal("create_objects should be mutating")
	}
	if r.IsMutating("list_all_event_names") {
		t.Fatal("list_all_event_names should not be mutating")
	}
	if r.IsMutating("no_such_verb") {
		t.Fatal("an unknown verb should never be reported as mutating")
	}
}

func TestParamNamesFromSignature(t *testing.T) {
	r := NewRegistry()
	e, ok := r.Lookup("create_objects")
	if !ok {
		t.Fatal("expected create_objects to be registered")
	}
	names := e.ParamNames()
	if len(names) == 0 || names[0] != "child_names" {
		t.Fatalf("expected first positional param to be child_names, got %v", names)
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic on duplicate verb registration")
		}
	}()
	r := &Registry{entries: make(map[string]Entry)}
	r.add(Entry{Name: "dup"})
	r.add(Entry{Name: "dup"})
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
