package verbs

import (
	"fmt"

	"github.com/iexmatsu/waapi-toolserver/internal/waapierr"
)

// The helpers below translate a verb's map[string]any arguments (already
// variable-resolved by the plan runner, spec §9 "Dynamic argument
// resolution") into typed Go values, returning *waapierr.ValidationError on
// any shape mismatch — grounded on the original Python adapters' style of
// raising ValueError before ever reaching the Authoring API.

func valErr(field, msg string, value any) error {
	return &waapierr.ValidationError{Field: field, Message: msg, Value: value}
}

func reqString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", valErr(key, "is required", nil)
	}
	s, ok := v.(string)
	if !ok {
		return "", valErr(key, "must be a string", v)
	}
	if s == "" {
		return "", valErr(key, "must not be empty", v)
	}
	return s, nil
}

func optString(args map[string]any, key, def string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

func reqStringSlice(args map[string]any, key string) ([]string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, valErr(key, "is required", nil)
	}
	slice, ok := v.([]any)
	if !ok {
		// Allow a pre-typed []string, e.g. from tests constructing args directly.
		if ss, ok := v.([]string); ok {
			if len(ss) == 0 {
				return nil, valErr(key, "must be a non-empty list", v)
			}
			return ss, nil
		}
		return nil, valErr(key, "must be a list", v)
	}
	if len(slice) == 0 {
		return nil, valErr(key, "must be a non-empty list", v)
	}
	out := make([]string, len(slice))
	for i, e := range slice {
		s, ok := e.(string)
		if !ok {
			return nil, valErr(key, fmt.Sprintf("element %d must be a string", i), e)
		}
		out[i] = s
	}
	return out, nil
}

func optStringSlice(args map[string]any, key string) []string {
	v, ok := args[key]
	if !ok || v == nil {
		return nil
	}
	if slice, ok := v.([]any); ok {
		out := make([]string, 0, len(slice))
		for _, e := range slice {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	if ss, ok := v.([]string); ok {
		return ss
	}
	return nil
}

func reqFloatSlice(args map[string]any, key string) ([]float64, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, valErr(key, "is required", nil)
	}
	slice, ok := v.([]any)
	if !ok {
		return nil, valErr(key, "must be a list", v)
	}
	out := make([]float64, len(slice))
	for i, e := range slice {
		f, err := toFloat(e)
		if err != nil {
			return nil, valErr(key, fmt.Sprintf("element %d must be numeric", i), e)
		}
		out[i] = f
	}
	return out, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("not numeric")
	}
}

func reqInt(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, valErr(key, "is required", nil)
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, valErr(key, "must be an integer", v)
	}
	return int(f), nil
}

func optInt(args map[string]any, key string, def int) int {
	v, ok := args[key]
	if !ok || v == nil {
		return def
	}
	f, err := toFloat(v)
	if err != nil {
		return def
	}
	return int(f)
}

func reqFloat(args map[string]any, key string) (float64, error) {
	v, ok := args[key]
	if !ok {
		return 0, valErr(key, "is required", nil)
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, valErr(key, "must be numeric", v)
	}
	return f, nil
}

func reqNonNegInt(args map[string]any, key string) (int, error) {
	n, err := reqInt(args, key)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, valErr(key, "must be non-negative", n)
	}
	return n, nil
}

func optMap(args map[string]any, key string) map[string]any {
	v, ok := args[key]
	if !ok || v == nil {
		return nil
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return nil
}

// anySlice returns args[key] as []any, regardless of whether it holds
// objects resolved from a $var reference to a prior step's result.
func anySlice(args map[string]any, key string) []any {
	v, ok := args[key]
	if !ok || v == nil {
		return nil
	}
	if s, ok := v.([]any); ok {
		return s
	}
	return nil
}

// sameLength validates that every named list argument has identical length,
// mirroring the original's repeated "if not (len(a) == len(b) == ...)" guard.
func sameLength(msg string, lists ...[]string) error {
	if len(lists) == 0 {
		return nil
	}
	n := len(lists[0])
	for _, l := range lists[1:] {
		if len(l) != n {
			return valErr("", msg, nil)
		}
	}
	return nil
}
