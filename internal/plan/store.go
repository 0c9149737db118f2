// Package plan implements the plan runner (spec component C6): it parses a
// plan's steps, resolves $variable references against prior step results,
// validates each verb against the static registry, and executes steps in
// order inside an optional undo-group bracket.
package plan

import (
	"regexp"
	"strings"

	"github.com/iexmatsu/waapi-toolserver/internal/waapierr"
)

// Store is the per-plan name -> value binding table (spec §3 "Plan
// store"): populated by the implicit "last" after every step and by any
// step's explicit save_as annotation.
type Store struct {
	values map[string]any
}

// NewStore creates an empty per-plan variable store.
func NewStore() *Store {
	return &Store{values: make(map[string]any)}
}

// Set binds name to value, overwriting any previous binding.
func (s *Store) Set(name string, value any) {
	s.values[name] = value
}

// Get returns the binding for name, or ok=false if unbound.
func (s *Store) Get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// varRefPattern matches a whole-string $name or $name.field reference.
// Resolution only fires when the entire string value is a reference — a
// string merely containing a "$" is a literal, matching spec §4.6's
// "Literal $name" wording (the reference is the full argument value, not
// embedded in a larger string).
var varRefPattern = regexp.MustCompile(`^\$([A-Za-z_][A-Za-z0-9_]*)(?:\.([A-Za-z_][A-Za-z0-9_]*))?$`)

// Resolve walks args (maps, slices, and scalars) and replaces any string
// matching $name[.field] with its bound value, recursing into nested
// structures (spec §4.6). An unknown variable fails with ValidationError.
// Runner.Run resolves each step's arguments just before that step runs, so
// the error stops the failing step before its call is issued; the steps
// before it have already run. There is no separate check of the whole plan
// for unknown variables before execution starts.
func (s *Store) Resolve(args any) (any, error) {
	switch v := args.(type) {
	case string:
		return s.resolveString(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			r, err := s.Resolve(val)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			r, err := s.Resolve(val)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	default:
		return v, nil
	}
}

func (s *Store) resolveString(str string) (any, error) {
	m := varRefPattern.FindStringSubmatch(str)
	if m == nil {
		return str, nil
	}
	name, field := m[1], m[2]

	binding, ok := s.values[name]
	if !ok {
		return nil, &waapierr.ValidationError{
			Field:   strings.TrimSuffix(str, "."+field),
			Message: "unknown variable $" + name,
			Value:   str,
		}
	}
	if field == "" {
		return binding, nil
	}
	return projectField(binding, field), nil
}

// projectField implements the ".field" half of $name.field: a single
// mapping yields its field; a sequence of mappings yields the projected
// list, skipping entries that lack the field (spec §9 open question a,
// kept as documented behavior rather than erroring).
func projectField(binding any, field string) any {
	switch b := binding.(type) {
	case map[string]any:
		return b[field]
	case []any:
		out := make([]any, 0, len(b))
		for _, entry := range b {
			if m, ok := entry.(map[string]any); ok {
				if v, present := m[field]; present {
					out = append(out, v)
				}
			}
		}
		return out
	default:
		return nil
	}
}
