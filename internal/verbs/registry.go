// Package verbs implements the static verb registry (spec component C5): a
// compile-time-registered table mapping a verb name to an adapter function
// and its documentation. Adapters validate argument shape, then issue one
// or more dispatcher calls against Authoring-API URIs; variable ($name
// references) are already resolved by the plan runner (internal/plan)
// before an adapter ever sees its arguments.
//
// Grounded on original_source/app/scripts/wwise_mcp.py: every hand-written
// function there becomes a named, hand-validated adapter below; the long
// tail of one-line _wrap(...) passthroughs becomes the generic table in
// passthrough.go, preserving the original's "validate shape, delegate,
// log-and-reraise on failure" shape without carrying over its logging
// mechanics (this repo's logging is zerolog, wired by the dispatcher and
// session, not by the verb itself).
package verbs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iexmatsu/waapi-toolserver/internal/dispatcher"
	"github.com/iexmatsu/waapi-toolserver/internal/session"
)

// Context is the session-scoped handle every adapter receives. Adapters are
// pure with respect to session state (spec §4.5): they never touch the
// session's lock or internals directly, only this narrow surface.
type Context struct {
	Session     *session.Session
	CallTimeout time.Duration
}

// Adapter binds an already variable-resolved argument map to one or more
// Authoring-API calls.
type Adapter func(ctx context.Context, c *Context, args map[string]any) (any, error)

// Entry is one row of the static verb table.
type Entry struct {
	Name      string
	Signature string
	Doc       string
	Mutating  bool
	Adapter   Adapter
	// Timeout, if non-zero, overrides Context.CallTimeout for this verb
	// alone (spec §9 open question c: per-verb override, default unset).
	Timeout time.Duration
}

// Registry is the closed, compile-time-registered verb table.
type Registry struct {
	entries map[string]Entry
	order   []string // registration order, for deterministic List() output
}

// NewRegistry builds the full verb table. Constructed once at process
// startup; never mutated afterward (spec §9: "package-level globals should
// be reserved for the verb registry (pure, read-only)").
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]Entry)}
	registerCoreVerbs(r)
	registerPassthroughVerbs(r)
	registerTopicVerbs(r)
	return r
}

func (r *Registry) add(e Entry) {
	if _, exists := r.entries[e.Name]; exists {
		panic(fmt.Sprintf("verbs: duplicate registration of %q", e.Name))
	}
	r.entries[e.Name] = e
	r.order = append(r.order, e.Name)
}

// ParamNames returns the positional parameter names declared in e's
// Signature (spec §4.6: a plan-runner string-form step may pass positional
// literals, which the runner zips against these names). A "**kwargs"-style
// signature (the passthrough verbs) has no fixed positional names and
// returns nil — those verbs only accept keyword arguments.
func (e Entry) ParamNames() []string {
	sig := strings.TrimSpace(e.Signature)
	if sig == "" || strings.Contains(sig, "**") {
		return nil
	}
	parts := strings.Split(sig, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if i := strings.Index(p, "="); i >= 0 {
			p = strings.TrimSpace(p[:i])
		}
		names = append(names, p)
	}
	return names
}

// Lookup returns the entry for name, or ok=false if unknown.
func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// IsMutating reports whether name is in the closed enumeration of verbs
// that mutate project state (spec §4.5). Unknown verbs are not mutating
// (the plan runner rejects unknown verbs separately, before this matters).
func (r *Registry) IsMutating(name string) bool {
	e, ok := r.entries[name]
	return ok && e.Mutating
}

// List returns every verb's signature and doc, in registration order, for
// the list_commands RPC (spec §6): one "verb(sig)\n    doc" entry per verb.
func (r *Registry) List() []string {
	out := make([]string, 0, len(r.order))
	for _, name := range r.order {
		e := r.entries[name]
		sig := e.Signature
		if sig == "" {
			sig = "args"
		}
		out = append(out, fmt.Sprintf("%s(%s)\n    %s", e.Name, sig, e.Doc))
	}
	return out
}

// Call issues a request-reply RPC directly against uri, bypassing the verb
// table. The plan runner uses this for the core.undo.* bracketing calls
// (spec §4.6), which are not themselves plan steps.
func (c *Context) Call(ctx context.Context, uri string, args, options map[string]any) (any, error) {
	return c.call(ctx, uri, args, options, 0)
}

// call issues a request-reply RPC and waits for its result within c's
// configured timeout (or the entry's override, applied by the caller).
func (c *Context) call(ctx context.Context, uri string, args, options map[string]any, timeout time.Duration) (any, error) {
	d, err := c.Session.Dispatcher()
	if err != nil {
		return nil, err
	}
	reply, err := d.Enqueue(uri, args, options, time.Time{}, true)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = c.CallTimeout
	}
	return dispatcher.Await(reply, uri, timeout)
}

// fireAndForget schedules uri without waiting for a reply, optionally due
// at now+delay (spec scenario #3: scheduled fire-and-forget).
func (c *Context) fireAndForget(uri string, args, options map[string]any, delay time.Duration) error {
	d, err := c.Session.Dispatcher()
	if err != nil {
		return err
	}
	dueAt := time.Time{}
	if delay > 0 {
		dueAt = time.Now().Add(delay)
	}
	_, err = d.Enqueue(uri, args, options, dueAt, false)
	return err
}
