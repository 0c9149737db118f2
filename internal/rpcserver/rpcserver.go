// Package rpcserver exposes the tool-server's line-delimited JSON-RPC 2.0
// surface over standard input/output (spec §6). It is the process's only
// consumer of stdin and only producer of stdout — every other component
// logs to stderr (internal/logging) precisely so it never shares that pipe.
package rpcserver

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/iexmatsu/waapi-toolserver/internal/logging"
	"github.com/iexmatsu/waapi-toolserver/internal/plan"
	"github.com/iexmatsu/waapi-toolserver/internal/verbs"
	"github.com/iexmatsu/waapi-toolserver/internal/waapierr"
)

// request is one line of the JSON-RPC 2.0 envelope.
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// response is one line of the JSON-RPC 2.0 reply envelope. Result and
// Error are mutually exclusive, matching the spec: successful replies omit
// error, failed replies omit result.
type response struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

// rpcError carries the taxonomy kind on the wire (spec §7: "kind, message,
// operation ... and a best-effort details map").
type rpcError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Kind    string         `json:"kind,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// executePlanParams is the params object for the execute_plan method.
type executePlanParams struct {
	Plan []plan.RawStep `json:"plan"`
}

// executePlanResult is the successful result shape for execute_plan.
type executePlanResult struct {
	Status        string            `json:"status"`
	StepsExecuted int               `json:"steps_executed"`
	Log           []plan.StepResult `json:"log"`
}

// Server reads JSON-RPC requests from r, one per line, and writes
// responses to w, also one per line (spec §6: "line-delimited JSON-RPC
// over standard input/output").
type Server struct {
	reg    *verbs.Registry
	runner *plan.Runner
	logger zerolog.Logger

	writeMu sync.Mutex
}

// New constructs a Server bound to reg (for list_commands) and runner (for
// execute_plan).
func New(reg *verbs.Registry, runner *plan.Runner, logger zerolog.Logger) *Server {
	return &Server{reg: reg, runner: runner, logger: logger.With().Str("component", "rpcserver").Logger()}
}

// Serve reads requests from r until EOF or ctx is done, dispatching each to
// its handler and writing exactly one reply line per request to w. It
// returns nil on a clean stdin EOF (spec §6: "the process exits on
// standard-input EOF").
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		// Copy before handing off: the next Scan() call reuses scanner's buffer.
		line = append([]byte(nil), line...)
		s.handleLine(ctx, line, w)
	}
	return scanner.Err()
}

func (s *Server) handleLine(ctx context.Context, line []byte, w io.Writer) {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		s.write(w, response{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: -32700, Message: "parse error", Kind: string(waapierr.KindValidation)},
		})
		return
	}

	defer logging.RecoverPanic(s.logger, "rpcserver.handleLine", map[string]any{"method": req.Method})

	result, err := s.dispatch(ctx, req)
	resp := response{JSONRPC: "2.0", ID: req.ID}
	if err != nil {
		resp.Error = toRPCError(err)
	} else {
		resp.Result = result
	}
	s.write(w, resp)
}

func (s *Server) dispatch(ctx context.Context, req request) (any, error) {
	switch req.Method {
	case "list_commands":
		return s.reg.List(), nil
	case "execute_plan":
		return s.executePlan(ctx, req.Params)
	default:
		return nil, &waapierr.ValidationError{Field: "method", Message: "unknown method", Value: req.Method}
	}
}

func (s *Server) executePlan(ctx context.Context, params json.RawMessage) (any, error) {
	var p executePlanParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &waapierr.ValidationError{Field: "plan", Message: "malformed plan params: " + err.Error()}
		}
	}

	result := s.runner.Run(ctx, p.Plan)
	if result.Err != nil {
		return nil, &planFailure{err: result.Err, log: result.Log}
	}
	return executePlanResult{
		Status:        "ok",
		StepsExecuted: len(result.Log),
		Log:           result.Log,
	}, nil
}

// planFailure wraps a plan's triggering error together with the partial
// per-step log accumulated before it, so a failing execute_plan's error
// response still carries the log on the wire (spec §7: "partial success is
// surfaced via the per-step log before the final error is returned"; §9:
// "the client should assume the session may be dirty and re-query state" —
// it needs the log to know which steps actually ran). It implements
// waapierr.WaapiError itself so toRPCError needs no special case for it.
type planFailure struct {
	err error
	log []plan.StepResult
}

func (f *planFailure) Error() string { return f.err.Error() }

func (f *planFailure) Kind() waapierr.Kind {
	if we, ok := f.err.(waapierr.WaapiError); ok {
		return we.Kind()
	}
	return ""
}

func (f *planFailure) Details() map[string]any {
	details := map[string]any{"log": f.log}
	if we, ok := f.err.(waapierr.WaapiError); ok {
		for k, v := range we.Details() {
			details[k] = v
		}
	}
	return details
}

func (s *Server) write(w io.Writer, resp response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to marshal rpc response")
		return
	}
	data = append(data, '\n')

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := w.Write(data); err != nil {
		s.logger.Error().Err(err).Msg("failed to write rpc response")
	}
}

// toRPCError maps an internal error onto the wire shape (spec §7). Errors
// implementing waapierr.WaapiError carry their kind and details map
// through; any other error becomes a generic internal error.
func toRPCError(err error) *rpcError {
	if we, ok := err.(waapierr.WaapiError); ok {
		return &rpcError{
			Code:    -32000,
			Message: we.Error(),
			Kind:    string(we.Kind()),
			Details: we.Details(),
		}
	}
	return &rpcError{Code: -32603, Message: err.Error()}
}
