package plan

import (
	"encoding/json"
	"testing"

	"github.com/iexmatsu/waapi-toolserver/internal/verbs"
)

func TestParseStepStructuredForm(t *testing.T) {
	reg := verbs.NewRegistry()
	raw := RawStep{Command: "resolve_descendants", Args: map[string]any{"parent_path": "\\Actor-Mixer Hierarchy"}}

	step, err := ParseStep(raw, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Command != "resolve_descendants" {
		t.Fatalf("unexpected command: %q", step.Command)
	}
	if step.Args["parent_path"] != "\\Actor-Mixer Hierarchy" {
		t.Fatalf("unexpected args: %#v", step.Args)
	}
}

func TestParseStepStringFormPositionalArgs(t *testing.T) {
	reg := verbs.NewRegistry()
	raw := RawStep{String: `set_object_property('\Actor-Mixer Hierarchy\Kick', "Volume", -6)`}

	step, err := ParseStep(raw, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Command != "set_object_property" {
		t.Fatalf("unexpected command: %q", step.Command)
	}
	if step.Args["object_path"] != "\\Actor-Mixer Hierarchy\\Kick" {
		t.Fatalf("unexpected object_path: %#v", step.Args["object_path"])
	}
	if step.Args["property_name"] != "Volume" {
		t.Fatalf("unexpected property_name: %#v", step.Args["property_name"])
	}
	if step.Args["value"] != float64(-6) {
		t.Fatalf("unexpected value: %#v", step.Args["value"])
	}
}

func TestParseStepStringFormMixedPositionalAndKeyword(t *testing.T) {
	reg := verbs.NewRegistry()
	raw := RawStep{String: `post_event("Play_Kick", "Kick_01", delay_ms=250)`}

	step, err := ParseStep(raw, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Args["event_name"] != "Play_Kick" || step.Args["game_obj_name"] != "Kick_01" {
		t.Fatalf("unexpected positional binding: %#v", step.Args)
	}
	if step.Args["delay_ms"] != float64(250) {
		t.Fatalf("unexpected keyword binding: %#v", step.Args["delay_ms"])
	}
}

func TestParseStepStringFormVariableReferenceIsKeptAsLiteralString(t *testing.T) {
	reg := verbs.NewRegistry()
	raw := RawStep{String: `resolve_descendants($parentId)`}

	step, err := ParseStep(raw, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Args["parent_path"] != "$parentId" {
		t.Fatalf("expected raw $parentId to survive parsing for later resolution, got %#v", step.Args["parent_path"])
	}
}

func TestParseStepStringFormRejectsTooManyPositionalArgs(t *testing.T) {
	reg := verbs.NewRegistry()
	raw := RawStep{String: `resolve_descendants("a", "b")`}

	if _, err := ParseStep(raw, reg); err == nil {
		t.Fatal("expected error for too many positional arguments")
	}
}

func TestParseStepStringFormNumericArgsWithKeyword(t *testing.T) {
	reg := verbs.NewRegistry()
	raw := RawStep{String: `set_rtpc("MyRTPC", 0, 100, 500, game_object_name="Kick_01")`}

	step, err := ParseStep(raw, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Args["start"] != float64(0) || step.Args["end"] != float64(100) {
		t.Fatalf("unexpected numeric args: %#v", step.Args)
	}
	if step.Args["game_object_name"] != "Kick_01" {
		t.Fatalf("unexpected keyword arg: %#v", step.Args["game_object_name"])
	}
}

func TestRawStepUnmarshalJSONString(t *testing.T) {
	var rs RawStep
	if err := json.Unmarshal([]byte(`"post_event(\"Play_Kick\", \"Kick_01\")"`), &rs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rs.String != `post_event("Play_Kick", "Kick_01")` {
		t.Fatalf("unexpected string form: %q", rs.String)
	}
}

func TestRawStepUnmarshalJSONObject(t *testing.T) {
	var rs RawStep
	data := []byte(`{"command":"post_event","args":{"event_name":"Play_Kick"},"save_as":"evt"}`)
	if err := json.Unmarshal(data, &rs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rs.Command != "post_event" || rs.SaveAs != "evt" {
		t.Fatalf("unexpected structured form: %#v", rs)
	}
}
