// Package logging builds the structured zerolog logger used by every
// component of the tool-server.
package logging

import (
	"io"
	"os"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
)

// Level mirrors the enum accepted by Config.LogLevel.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format mirrors the enum accepted by Config.LogFormat.
type Format string

const (
	FormatJSON   Format = "json"
	FormatText   Format = "text"
	FormatPretty Format = "pretty"
)

// Options configures New.
type Options struct {
	Level  Level
	Format Format
}

// New creates a structured logger: JSON (or console-pretty) output,
// RFC3339 timestamps, and caller info.
//
//	logger := logging.New(logging.Options{Level: logging.LevelInfo, Format: logging.FormatJSON})
//	logger.Info().Str("component", "session").Msg("connected")
func New(opts Options) zerolog.Logger {
	// stdout carries the line-delimited JSON-RPC protocol (spec §6); all
	// logging goes to stderr so it never corrupts a client's read loop.
	var output io.Writer = os.Stderr

	var level zerolog.Level
	switch opts.Level {
	case LevelDebug:
		level = zerolog.DebugLevel
	case LevelInfo:
		level = zerolog.InfoLevel
	case LevelWarn:
		level = zerolog.WarnLevel
	case LevelError:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if opts.Format == FormatPretty {
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	return zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Str("service", "waapi-toolserver").
		Logger()
}

// LogError logs an error with additional context fields.
func LogError(logger zerolog.Logger, err error, msg string, fields map[string]any) {
	event := logger.Error().Err(err)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(msg)
}

// RecoverPanic is deferred in a function to catch and log a panic with its
// stack trace without crashing the process. The deferring function still
// returns: the dispatcher consumer loop, which defers it, exits after a
// recovered panic, and the RPC server's per-line handler, which also defers
// it, gives up on that one line.
func RecoverPanic(logger zerolog.Logger, where string, fields map[string]any) {
	r := recover()
	if r == nil {
		return
	}
	event := logger.Error().
		Interface("panic_value", r).
		Str("stack_trace", string(debug.Stack())).
		Str("where", where)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg("recovered from panic")
}
