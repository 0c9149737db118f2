// Package config loads the tool-server's process configuration from
// environment variables (and an optional .env file for local development).
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds all tool-server configuration.
//
// Tags:
//
//	env: environment variable name
//	envDefault: default value if unset
type Config struct {
	// Authoring API endpoint (the WebSocket RPC surface of the external app).
	WaapiURL string `env:"WAAPI_URL" envDefault:"ws://127.0.0.1:8080/waapi"`

	// Per-call waiter timeout. The dispatcher may still complete the call
	// after a waiter gives up (see waapierr.Timeout).
	CallTimeout time.Duration `env:"WAAPI_CALL_TIMEOUT" envDefault:"1s"`

	// How long Session.Disconnect waits for the dispatcher consumer to
	// drain in-flight work before forcing shutdown.
	DispatcherShutdownTimeout time.Duration `env:"WAAPI_DISPATCHER_SHUTDOWN_TIMEOUT" envDefault:"2s"`

	// Upper bound on how long the queue consumer sleeps between
	// stop-signal checks when the head request is not yet due.
	QueuePollInterval time.Duration `env:"WAAPI_QUEUE_POLL_INTERVAL" envDefault:"100ms"`

	// C1 bound: producers fail with QueueFull once this many requests are
	// queued and not yet dispatched.
	MaxQueueSize int `env:"WAAPI_MAX_QUEUE_SIZE" envDefault:"100000"`

	// C4 bound: per-subscription event buffer capacity. Drop-newest once full.
	MaxSubscriptionBuffer int `env:"WAAPI_MAX_SUBSCRIPTION_BUFFER" envDefault:"1024"`

	// Optional cap on outbound RPC calls/sec issued by the dispatcher
	// consumer. Zero disables the limiter.
	DispatchRateLimit int `env:"WAAPI_DISPATCH_RATE_LIMIT" envDefault:"0"`

	// Prometheus /metrics listener address. Empty disables it.
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// Load reads configuration from a .env file (if present) and the process
// environment. Environment variables always win over .env file values.
func Load(logger *zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if logger != nil {
			logger.Info().Msg("No .env file found (using environment variables only)")
		}
	} else if logger != nil {
		logger.Info().Msg("Loaded configuration from .env file")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration for internally inconsistent or out-of-range values.
func (c *Config) Validate() error {
	if c.WaapiURL == "" {
		return fmt.Errorf("WAAPI_URL is required")
	}
	if c.MaxQueueSize < 1 {
		return fmt.Errorf("WAAPI_MAX_QUEUE_SIZE must be > 0, got %d", c.MaxQueueSize)
	}
	if c.MaxSubscriptionBuffer < 1 {
		return fmt.Errorf("WAAPI_MAX_SUBSCRIPTION_BUFFER must be > 0, got %d", c.MaxSubscriptionBuffer)
	}
	if c.CallTimeout <= 0 {
		return fmt.Errorf("WAAPI_CALL_TIMEOUT must be > 0, got %s", c.CallTimeout)
	}
	if c.QueuePollInterval <= 0 {
		return fmt.Errorf("WAAPI_QUEUE_POLL_INTERVAL must be > 0, got %s", c.QueuePollInterval)
	}
	if c.DispatchRateLimit < 0 {
		return fmt.Errorf("WAAPI_DISPATCH_RATE_LIMIT must be >= 0, got %d", c.DispatchRateLimit)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error (got: %s)", c.LogLevel)
	}

	validLogFormats := map[string]bool{"json": true, "text": true, "pretty": true}
	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, text, pretty (got: %s)", c.LogFormat)
	}

	return nil
}

// LogConfig emits the resolved configuration as a single structured log line.
func (c *Config) LogConfig(logger zerolog.Logger) {
	logger.Info().
		Str("environment", c.Environment).
		Str("waapi_url", c.WaapiURL).
		Dur("call_timeout", c.CallTimeout).
		Dur("dispatcher_shutdown_timeout", c.DispatcherShutdownTimeout).
		Dur("queue_poll_interval", c.QueuePollInterval).
		Int("max_queue_size", c.MaxQueueSize).
		Int("max_subscription_buffer", c.MaxSubscriptionBuffer).
		Int("dispatch_rate_limit", c.DispatchRateLimit).
		Str("metrics_addr", c.MetricsAddr).
		Str("log_level", c.LogLevel).
		Str("log_format", c.LogFormat).
		Msg("configuration loaded")
}
