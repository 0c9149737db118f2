package subscription

import (
	"testing"

	"github.com/iexmatsu/waapi-toolserver/internal/wstransport"
)

func TestDrainDropNewestWhenFull(t *testing.T) {
	r := New(2)
	id := r.NewID()
	r.Register(id, "test.topic", wstransport.Handle{})

	r.PushEvent(id, "a")
	r.PushEvent(id, "b")
	r.PushEvent(id, "c") // dropped: buffer full at 2

	got := r.Drain(id, 0, false)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected [a b], got %v", got)
	}
	if d := r.Dropped(id); d != 1 {
		t.Fatalf("expected 1 dropped event, got %d", d)
	}
}

func TestDrainClearsOnlyWhenRequested(t *testing.T) {
	r := New(10)
	id := r.NewID()
	r.Register(id, "test.topic", wstransport.Handle{})
	r.PushEvent(id, 1)
	r.PushEvent(id, 2)

	peek := r.Drain(id, 1, false)
	if len(peek) != 1 || peek[0] != 1 {
		t.Fatalf("expected peek [1], got %v", peek)
	}

	all := r.Drain(id, 0, true)
	if len(all) != 2 {
		t.Fatalf("expected 2 events still buffered, got %v", all)
	}

	if remaining := r.Drain(id, 0, false); len(remaining) != 0 {
		t.Fatalf("expected buffer empty after clear, got %v", remaining)
	}
}

func TestDrainUnknownIDReturnsNil(t *testing.T) {
	r := New(10)
	if got := r.Drain("nope", 0, false); got != nil {
		t.Fatalf("expected nil for unknown id, got %v", got)
	}
}

func TestRemoveAndRemoveAll(t *testing.T) {
	r := New(10)
	idA := r.NewID()
	idB := r.NewID()
	r.Register(idA, "test.topic", wstransport.Handle{})
	r.Register(idB, "test.topic", wstransport.Handle{})

	if _, ok := r.Remove(idA); !ok {
		t.Fatal("expected Remove to find idA")
	}
	if _, ok := r.Remove(idA); ok {
		t.Fatal("expected second Remove of idA to fail")
	}

	handles := r.RemoveAll()
	if len(handles) != 1 {
		t.Fatalf("expected RemoveAll to return 1 remaining handle, got %d", len(handles))
	}
	if got := r.RemoveAll(); len(got) != 0 {
		t.Fatalf("expected registry empty after RemoveAll, got %v", got)
	}
}
