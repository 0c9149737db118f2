package verbs

import "testing"

func TestReqStringSliceRejectsEmptyAndWrongType(t *testing.T) {
	if _, err := reqStringSlice(map[string]any{"k": []any{}}, "k"); err == nil {
		t.Fatal("expected error for empty list")
	}
	if _, err := reqStringSlice(map[string]any{"k": "not a list"}, "k"); err == nil {
		t.Fatal("expected error for non-list value")
	}
	if _, err := reqStringSlice(map[string]any{}, "k"); err == nil {
		t.Fatal("expected error for missing key")
	}
	got, err := reqStringSlice(map[string]any{"k": []any{"a", "b"}}, "k")
	if err != nil || len(got) != 2 {
		t.Fatalf("expected [a b], got %v, err=%v", got, err)
	}
}

func TestSameLengthDetectsMismatch(t *testing.T) {
	if err := sameLength("mismatch", []string{"a", "b"}, []string{"c"}); err == nil {
		t.Fatal("expected a length mismatch error")
	}
	if err := sameLength("ok", []string{"a", "b"}, []string{"c", "d"}); err != nil {
		t.Fatalf("unexpected error for equal lengths: %v", err)
	}
}

func TestToFloatAcceptsNumericTypes(t *testing.T) {
	cases := []any{float64(1), float32(1), int(1), int64(1)}
	for _, c := range cases {
		if _, err := toFloat(c); err != nil {
			t.Fatalf("expected %T to convert cleanly, got %v", c, err)
		}
	}
	if _, err := toFloat("nope"); err == nil {
		t.Fatal("expected an error converting a non-numeric value")
	}
}

func TestOptIntFallsBackToDefaultOnBadType(t *testing.T) {
	if got := optInt(map[string]any{"k": "not an int"}, "k", 42); got != 42 {
		t.Fatalf("expected fallback to default 42, got %d", got)
	}
	if got := optInt(map[string]any{"k": float64(7)}, "k", 42); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}
