package plan

import "testing"

func TestResolveLiteralVariable(t *testing.T) {
	s := NewStore()
	s.Set("last", map[string]any{"id": "{guid}", "name": "Kick"})

	v, err := s.Resolve("$last")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, ok := v.(map[string]any)
	if !ok || m["id"] != "{guid}" {
		t.Fatalf("expected bound map, got %#v", v)
	}
}

func TestResolveFieldProjection(t *testing.T) {
	s := NewStore()
	s.Set("last", map[string]any{"id": "{guid}", "name": "Kick"})

	v, err := s.Resolve("$last.id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "{guid}" {
		t.Fatalf("expected {guid}, got %#v", v)
	}
}

func TestResolveFieldProjectionOverSequence(t *testing.T) {
	s := NewStore()
	s.Set("last", []any{
		map[string]any{"id": "a"},
		map[string]any{"id": "b"},
		map[string]any{"name": "no id here"},
	})

	v, err := s.Resolve("$last.id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ids, ok := v.([]any)
	if !ok || len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("expected [a b] skipping the entry without id, got %#v", v)
	}
}

func TestResolveUnknownVariableFails(t *testing.T) {
	s := NewStore()
	_, err := s.Resolve("$missing")
	if err == nil {
		t.Fatal("expected error for unknown variable")
	}
}

func TestResolveRecursesIntoNestedStructures(t *testing.T) {
	s := NewStore()
	s.Set("parentId", "{parent-guid}")

	args := map[string]any{
		"objects": []any{
			map[string]any{"parent": "$parentId", "name": "literal"},
		},
	}
	resolved, err := s.Resolve(args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := resolved.(map[string]any)
	objects := m["objects"].([]any)
	obj := objects[0].(map[string]any)
	if obj["parent"] != "{parent-guid}" {
		t.Fatalf("expected nested $parentId resolved, got %#v", obj["parent"])
	}
	if obj["name"] != "literal" {
		t.Fatalf("literal string must pass through unchanged, got %#v", obj["name"])
	}
}

func TestResolveLiteralStringContainingDollarIsUnchanged(t *testing.T) {
	s := NewStore()
	v, err := s.Resolve("price is $5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "price is $5" {
		t.Fatalf("expected literal passthrough, got %#v", v)
	}
}
