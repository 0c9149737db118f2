package plan

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iexmatsu/waapi-toolserver/internal/metrics"
	"github.com/iexmatsu/waapi-toolserver/internal/session"
	"github.com/iexmatsu/waapi-toolserver/internal/verbs"
	"github.com/iexmatsu/waapi-toolserver/internal/waapierr"
)

// StepResult is one entry in a plan's execution log (spec §4.6).
type StepResult struct {
	Command string         `json:"command"`
	Args    map[string]any `json:"args"`
	Result  any            `json:"result,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Result is the outcome of Runner.Run: a full per-step log and, on
// failure, the error that stopped execution.
type Result struct {
	Log []StepResult
	Err error
}

// Runner executes a plan's steps in order against a session (spec
// component C6).
type Runner struct {
	session *session.Session
	reg     *verbs.Registry
	cfg     Config
	logger  zerolog.Logger
}

// Config carries the timeouts the runner needs; copied from the
// top-level server config rather than importing it directly, keeping
// this package dependency-free of internal/config.
type Config struct {
	CallTimeout time.Duration
}

// New constructs a Runner bound to sess and reg.
func New(sess *session.Session, reg *verbs.Registry, cfg Config, logger zerolog.Logger) *Runner {
	return &Runner{session: sess, reg: reg, cfg: cfg, logger: logger.With().Str("component", "plan").Logger()}
}

// Run executes raw as a sequence of steps (spec §4.6):
//  1. parse every step up front, resolving each verb against the registry
//     and rejecting the whole plan before any call is made if a verb is
//     unknown (a "static pre-pass", per spec §9's interpreter note);
//  2. ensure the session is connected;
//  3. if any step is a mutating verb, bracket the run in a
//     core.undo.beginGroup/endGroup/cancelGroup group;
//  4. execute steps strictly in order, resolving $variables against prior
//     results before each call, binding "last" and any save_as name after
//     each step;
//  5. on the first failure, best-effort cancelGroup and return the partial
//     log alongside the error.
func (r *Runner) Run(ctx context.Context, raw []RawStep) Result {
	start := time.Now()
	outcome := "error"
	defer func() {
		metrics.PlanDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()

	steps := make([]Step, 0, len(raw))
	for _, rs := range raw {
		step, err := ParseStep(rs, r.reg)
		if err != nil {
			return Result{Err: err}
		}
		if _, ok := r.reg.Lookup(step.Command); !ok {
			return Result{Err: &waapierr.ValidationError{Field: "command", Message: "unknown verb", Value: step.Command}}
		}
		steps = append(steps, step)
	}

	// "Ensure connection" (spec §4.6 step 1): a plan only pays for a real
	// connect when the session isn't already connected — calling Connect
	// unconditionally would tear down and redial a perfectly live session
	// on every single plan, which nothing in the spec's scenarios asks for.
	// Recorded as an open-question decision in DESIGN.md.
	connectLog := StepResult{Command: "connect"}
	if r.session.State() != session.StateConnected {
		if err := r.session.Connect(ctx); err != nil {
			connectLog.Error = err.Error()
			return Result{Log: []StepResult{connectLog}, Err: err}
		}
		connectLog.Result = "connected"
	} else {
		connectLog.Result = "already connected"
	}

	vc := &verbs.Context{Session: r.session, CallTimeout: r.cfg.CallTimeout}

	needsGroup := false
	for _, step := range steps {
		if r.reg.IsMutating(step.Command) {
			needsGroup = true
			break
		}
	}

	log := make([]StepResult, 1, len(steps)+3)
	log[0] = connectLog

	if needsGroup {
		beginLog := StepResult{Command: "undo.begin_group"}
		if _, err := vc.Call(ctx, "core.undo.beginGroup", nil, nil); err != nil {
			beginLog.Error = err.Error()
			log = append(log, beginLog)
			return Result{Log: log, Err: err}
		}
		log = append(log, beginLog)
	}

	store := NewStore()

	for _, step := range steps {
		resolved, err := store.Resolve(any(step.Args))
		if err != nil {
			log = append(log, StepResult{Command: step.Command, Args: step.Args, Error: err.Error()})
			return r.finish(ctx, needsGroup, log, err)
		}
		args, _ := resolved.(map[string]any)

		entry, _ := r.reg.Lookup(step.Command)
		stepCtx := vc
		if entry.Timeout > 0 {
			stepCtx = &verbs.Context{Session: r.session, CallTimeout: entry.Timeout}
		}
		result, callErr := entry.Adapter(ctx, stepCtx, args)

		sr := StepResult{Command: step.Command, Args: args}
		if callErr != nil {
			sr.Error = callErr.Error()
			log = append(log, sr)
			res := r.finish(ctx, needsGroup, log, callErr)
			outcome = "failed"
			return res
		}
		sr.Result = result
		log = append(log, sr)

		store.Set("last", result)
		if step.SaveAs != "" {
			store.Set(step.SaveAs, result)
		}
	}

	if needsGroup {
		endLog := StepResult{Command: "undo.end_group"}
		if _, err := vc.Call(ctx, "core.undo.endGroup", map[string]any{"displayName": "plan"}, nil); err != nil {
			endLog.Error = err.Error()
			log = append(log, endLog)
			metrics.UndoGroupOutcomeTotal.WithLabelValues("commit_failed").Inc()
			outcome = "commit_failed"
			return r.finish(ctx, true, log, err)
		}
		log = append(log, endLog)
		metrics.UndoGroupOutcomeTotal.WithLabelValues("committed").Inc()
	}
	outcome = "ok"
	return Result{Log: log}
}

// finish best-effort cancels the open undo group (if any) after a mid-plan
// failure and returns the partial log alongside the triggering error.
func (r *Runner) finish(ctx context.Context, needsGroup bool, log []StepResult, failure error) Result {
	if needsGroup {
		cancelLog := StepResult{Command: "undo.cancel_group"}
		if _, err := r.cancelGroup(ctx); err != nil {
			cancelLog.Error = err.Error()
			r.logger.Warn().Err(err).Msg("cancelGroup failed after plan step error")
		}
		log = append(log, cancelLog)
		metrics.UndoGroupOutcomeTotal.WithLabelValues("cancelled").Inc()
	}
	return Result{Log: log, Err: failure}
}

func (r *Runner) cancelGroup(ctx context.Context) (any, error) {
	vc := &verbs.Context{Session: r.session, CallTimeout: r.cfg.CallTimeout}
	return vc.Call(ctx, "core.undo.cancelGroup", nil, nil)
}
