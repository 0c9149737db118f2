package plan

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/iexmatsu/waapi-toolserver/internal/verbs"
	"github.com/iexmatsu/waapi-toolserver/internal/waapierr"
)

// Step is one parsed, not-yet-resolved plan step (spec §3 "Plan step"). It
// normalizes both the structured {command, args, save_as} form and the
// string "verb(args)" call-expression form onto the same shape.
type Step struct {
	Command string
	Args    map[string]any
	SaveAs  string
	Raw     string // original string form, for error messages; empty for structured steps
}

// RawStep is the wire shape of one step as received over JSON-RPC: either a
// bare call-expression string, or an object with command/args/save_as.
type RawStep struct {
	// String form: set when the step was sent as a JSON string.
	String string
	// Structured form: set when the step was sent as a JSON object.
	Command string         `json:"command"`
	Args    map[string]any `json:"args"`
	SaveAs  string         `json:"save_as"`
}

// UnmarshalJSON accepts either a JSON string (the call-expression form) or
// a JSON object (the structured form), matching spec §6's "a plan step may
// be given either as a string ... or as an object" wording.
func (r *RawStep) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		r.String = asString
		return nil
	}
	type structured RawStep
	var s structured
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = RawStep(s)
	return nil
}

// ParseStep normalizes one raw step into a Step, using reg to recover
// positional parameter names for the string-call-expression form (spec
// §4.6). It does not validate that Command exists in reg — that is
// Runner.Run's job, so unknown-verb errors are reported uniformly for both
// step forms.
func ParseStep(raw RawStep, reg *verbs.Registry) (Step, error) {
	if raw.String != "" {
		return parseCallExpr(raw.String, reg)
	}
	args := raw.Args
	if args == nil {
		args = map[string]any{}
	}
	return Step{Command: raw.Command, Args: args, SaveAs: raw.SaveAs}, nil
}

// parseCallExpr parses the subset of Go-like call-expression syntax spec §6
// describes for string-form steps: identifier(arg, ..., keyword=arg, ...)
// where each arg is a literal (string, number, bool, null) or a nested
// [...]/{...} literal reused verbatim from JSON. There is no
// parser-combinator library anywhere in the example pack and this grammar
// is small enough that a hand-rolled depth/quote-tracking split (splitArgs)
// is clearer than pressing a general-purpose tokenizer into service for a
// string dialect (Wwise paths, Python-style None/kwargs) it was never built
// to lex.
func parseCallExpr(expr string, reg *verbs.Registry) (Step, error) {
	expr = strings.TrimSpace(expr)
	open := strings.IndexByte(expr, '(')
	if open < 0 || !strings.HasSuffix(expr, ")") {
		return Step{}, callErr(expr, "expected verb(args) call syntax")
	}
	name := strings.TrimSpace(expr[:open])
	if name == "" {
		return Step{}, callErr(expr, "missing verb name")
	}
	inner := expr[open+1 : len(expr)-1]

	var paramNames []string
	if e, ok := reg.Lookup(name); ok {
		paramNames = e.ParamNames()
	}

	args, err := parseArgList(expr, inner, paramNames)
	if err != nil {
		return Step{}, err
	}
	return Step{Command: name, Args: args, Raw: expr}, nil
}

// argToken is one top-level comma-separated argument, already split into an
// optional "keyword=" prefix and its literal text.
type argToken struct {
	keyword string
	literal string
}

func parseArgList(fullExpr, inner string, paramNames []string) (map[string]any, error) {
	inner = strings.TrimSpace(inner)
	args := map[string]any{}
	if inner == "" {
		return args, nil
	}

	tokens, err := splitArgs(fullExpr, inner)
	if err != nil {
		return nil, err
	}

	positional := 0
	for _, tok := range tokens {
		val, err := parseLiteral(fullExpr, tok.literal)
		if err != nil {
			return nil, err
		}
		if tok.keyword != "" {
			args[tok.keyword] = val
			continue
		}
		if positional >= len(paramNames) {
			return nil, callErr(fullExpr, fmt.Sprintf("too many positional arguments (verb declares %d)", len(paramNames)))
		}
		args[paramNames[positional]] = val
		positional++
	}
	return args, nil
}

// splitArgs splits inner on top-level commas (respecting nested
// brackets/braces/parens and quoted strings) and separates each piece's
// optional leading "keyword=" from its literal text. Quote scanning only
// needs to know where a quoted span ends, not what it means — so it skips
// escaped characters blindly rather than validating escape sequences,
// leaving that to parseLiteral/parseQuoted once the span is isolated.
func splitArgs(fullExpr, inner string) ([]argToken, error) {
	var tokens []argToken
	depth := 0
	argStart := 0
	lastKeyword := ""
	sawEquals := false
	var quote byte // 0 when not inside a quoted string, else '"' or '\''

	flush := func(end int) {
		piece := strings.TrimSpace(inner[argStart:end])
		if piece == "" {
			return
		}
		kw := lastKeyword
		lit := piece
		if sawEquals {
			if i := strings.IndexByte(piece, '='); i >= 0 {
				lit = strings.TrimSpace(piece[i+1:])
			}
		}
		tokens = append(tokens, argToken{keyword: kw, literal: lit})
		lastKeyword = ""
		sawEquals = false
	}

	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if quote != 0 {
			if c == '\\' && i+1 < len(inner) {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				flush(i)
				argStart = i + 1
			}
		case '=':
			if depth == 0 && !sawEquals {
				keyword := strings.TrimSpace(inner[argStart:i])
				if !isIdentifier(keyword) {
					return nil, callErr(fullExpr, fmt.Sprintf("invalid keyword argument name %q", keyword))
				}
				lastKeyword = keyword
				sawEquals = true
			}
		}
	}
	if quote != 0 {
		return nil, callErr(fullExpr, "unterminated string literal in arguments")
	}
	flush(len(inner))
	return tokens, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}

// parseLiteral interprets one argument's literal text as a JSON-ish scalar:
// quoted string, true/false, null, or a number. Nested [...]/{...} literals
// are parsed with encoding/json since they're already valid JSON once
// lifted out of the call expression.
func parseLiteral(fullExpr, lit string) (any, error) {
	lit = strings.TrimSpace(lit)
	switch {
	case lit == "true":
		return true, nil
	case lit == "false":
		return false, nil
	case lit == "null" || lit == "None":
		return nil, nil
	case strings.HasPrefix(lit, "$"):
		// A bare $name[.field] variable reference: kept as a raw string,
		// resolved later against the plan store (Store.Resolve), not here.
		return lit, nil
	case strings.HasPrefix(lit, `"`) || strings.HasPrefix(lit, "'"):
		return parseQuoted(fullExpr, lit)
	case strings.HasPrefix(lit, "[") || strings.HasPrefix(lit, "{"):
		return parseJSONLiteral(fullExpr, lit)
	default:
		if n, err := strconv.ParseFloat(lit, 64); err == nil {
			return n, nil
		}
		return nil, callErr(fullExpr, fmt.Sprintf("unparseable literal %q", lit))
	}
}

// parseQuoted unquotes a string literal. Double-quoted literals follow
// strict JSON/Go escaping. Single-quoted literals are a convenience form
// for Wwise object paths, which are thick with literal backslashes
// ("\Actor-Mixer Hierarchy\Kick") that would otherwise all need doubling;
// single quotes only interpret \' and \\, leaving every other backslash as
// a literal character.
func parseQuoted(fullExpr, lit string) (string, error) {
	if len(lit) < 2 {
		return "", callErr(fullExpr, fmt.Sprintf("unterminated string literal %q", lit))
	}
	if lit[0] == '\'' {
		if lit[len(lit)-1] != '\'' {
			return "", callErr(fullExpr, fmt.Sprintf("unterminated string literal %q", lit))
		}
		body := lit[1 : len(lit)-1]
		body = strings.ReplaceAll(body, `\'`, `'`)
		body = strings.ReplaceAll(body, `\\`, `\`)
		return body, nil
	}
	unquoted, err := strconv.Unquote(lit)
	if err != nil {
		return "", callErr(fullExpr, fmt.Sprintf("invalid string literal %q", lit))
	}
	return unquoted, nil
}

// parseJSONLiteral parses a nested [...]/{...} argument as JSON — once
// lifted out of the surrounding call expression it already has to be valid
// JSON for any of the array/object-typed verb arguments (e.g. create_objects'
// objects list) to make sense.
func parseJSONLiteral(fullExpr, lit string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(lit), &v); err != nil {
		return nil, callErr(fullExpr, fmt.Sprintf("invalid JSON literal %q: %v", lit, err))
	}
	return v, nil
}

func callErr(expr, msg string) error {
	return &waapierr.ValidationError{
		Field:   "step",
		Message: msg,
		Value:   expr,
	}
}
