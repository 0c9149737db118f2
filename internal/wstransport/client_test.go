package wstransport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/iexmatsu/waapi-toolserver/internal/waapierr"
)

// fakeAuthoringServer runs a minimal WebSocket peer that understands this
// package's call/subscribe/unsubscribe envelopes, letting the real
// WSClient be exercised end-to-end without an actual Wwise instance.
func fakeAuthoringServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var subID string
		for {
			var env callEnvelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			switch env.Kind {
			case "call":
				if env.URI == "fail.me" {
					conn.WriteJSON(replyEnvelope{ID: env.ID, Error: &wireError{Message: "business failure"}})
					continue
				}
				conn.WriteJSON(replyEnvelope{ID: env.ID, Result: mustJSON(map[string]any{"uri": env.URI})})
			case "subscribe":
				subID = "sub-1"
				conn.WriteJSON(replyEnvelope{ID: env.ID, SubscriptionID: subID})
				conn.WriteJSON(replyEnvelope{SubscriptionID: subID, Event: mustJSON("ping")})
			case "unsubscribe":
				conn.WriteJSON(replyEnvelope{ID: env.ID, Result: mustJSON(true)})
			}
		}
	}))
	return srv
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func TestDialCallRoundTrip(t *testing.T) {
	srv := fakeAuthoringServer(t)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/waapi"
	client, err := Dial(context.Background(), url, time.Second, zerolog.Nop())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer client.Disconnect()

	val, err := client.Call(context.Background(), "core.object.get", nil, nil)
	if err != nil {
		t.Fatalf("unexpected call error: %v", err)
	}
	m, ok := val.(map[string]any)
	if !ok || m["uri"] != "core.object.get" {
		t.Fatalf("expected echoed uri, got %v", val)
	}
}

func TestDialCallErrorSurfacesAsCallError(t *testing.T) {
	srv := fakeAuthoringServer(t)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/waapi"
	client, err := Dial(context.Background(), url, time.Second, zerolog.Nop())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer client.Disconnect()

	_, err = client.Call(context.Background(), "fail.me", nil, nil)
	if err == nil {
		t.Fatal("expected an error from the remote business failure")
	}
	if _, ok := err.(*waapierr.CallError); !ok {
		t.Fatalf("expected *waapierr.CallError, got %T: %v", err, err)
	}
}

func TestSubscribeDeliversEventAndUnsubscribe(t *testing.T) {
	srv := fakeAuthoringServer(t)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/waapi"
	client, err := Dial(context.Background(), url, time.Second, zerolog.Nop())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer client.Disconnect()

	events := make(chan any, 1)
	handle, err := client.Subscribe(context.Background(), "object.created", nil, func(event any) {
		events <- event
	})
	if err != nil {
		t.Fatalf("unexpected subscribe error: %v", err)
	}

	select {
	case ev := <-events:
		if ev != "ping" {
			t.Fatalf("expected ping event, got %v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscribed event")
	}

	ok, err := client.Unsubscribe(context.Background(), handle)
	if err != nil || !ok {
		t.Fatalf("expected unsubscribe to succeed, got ok=%v err=%v", ok, err)
	}
}

func TestDisconnectIsIdempotentAndRejectsLaterCalls(t *testing.T) {
	srv := fakeAuthoringServer(t)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/waapi"
	client, err := Dial(context.Background(), url, time.Second, zerolog.Nop())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	if err := client.Disconnect(); err != nil {
		t.Fatalf("unexpected error on first disconnect: %v", err)
	}
	if err := client.Disconnect(); err != nil {
		t.Fatalf("expected second disconnect to be a no-op, got %v", err)
	}

	if _, err := client.Call(context.Background(), "core.ping", nil, nil); err == nil {
		t.Fatal("expected a call after disconnect to fail")
	}
}
