package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		WaapiURL:              "ws://127.0.0.1:8080/waapi",
		CallTimeout:           time.Second,
		QueuePollInterval:     100 * time.Millisecond,
		MaxQueueSize:          100,
		MaxSubscriptionBuffer: 100,
		LogLevel:              "info",
		LogFormat:             "json",
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected a valid config to pass, got %v", err)
	}
}

func TestValidateRejectsEmptyURL(t *testing.T) {
	cfg := validConfig()
	cfg.WaapiURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for empty WAAPI_URL")
	}
}

func TestValidateRejectsNonPositiveQueueSize(t *testing.T) {
	cfg := validConfig()
	cfg.MaxQueueSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for MaxQueueSize <= 0")
	}
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for an unrecognized log level")
	}
}

func TestValidateRejectsUnknownLogFormat(t *testing.T) {
	cfg := validConfig()
	cfg.LogFormat = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for an unrecognized log format")
	}
}

func TestValidateRejectsNegativeRateLimit(t *testing.T) {
	cfg := validConfig()
	cfg.DispatchRateLimit = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for a negative dispatch rate limit")
	}
}
