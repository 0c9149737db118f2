// Command toolserver runs the headless WAAPI tool-server: it speaks
// line-delimited JSON-RPC over stdin/stdout to an LLM client and relays
// verb calls and plans to an Authoring-API endpoint over WebSocket.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/zerolog"
	_ "go.uber.org/automaxprocs"

	"github.com/iexmatsu/waapi-toolserver/internal/config"
	"github.com/iexmatsu/waapi-toolserver/internal/logging"
	"github.com/iexmatsu/waapi-toolserver/internal/metrics"
	"github.com/iexmatsu/waapi-toolserver/internal/plan"
	"github.com/iexmatsu/waapi-toolserver/internal/rpcserver"
	"github.com/iexmatsu/waapi-toolserver/internal/session"
	"github.com/iexmatsu/waapi-toolserver/internal/verbs"
)

func main() {
	var debug = flag.Bool("debug", false, "enable debug logging (overrides LOG_LEVEL)")
	flag.Parse()

	// automaxprocs sets GOMAXPROCS from the container CPU limit before
	// anything else runs (the blank import above registers it).
	fmt.Fprintf(os.Stderr, "GOMAXPROCS: %d (via automaxprocs)\n", runtime.GOMAXPROCS(0))

	cfg, err := config.Load(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *debug {
		cfg.LogLevel = "debug"
	}

	logger := logging.New(logging.Options{
		Level:  logging.Level(cfg.LogLevel),
		Format: logging.Format(cfg.LogFormat),
	})
	cfg.LogConfig(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
		sampler := &metrics.HostSampler{Logger: logger}
		go sampler.Run(ctx)
	}

	sess := session.New(cfg, logger, nil)
	reg := verbs.NewRegistry()
	runner := plan.New(sess, reg, plan.Config{CallTimeout: cfg.CallTimeout}, logger)
	server := rpcserver.New(reg, runner, logger)

	logger.Info().Msg("waapi tool-server starting; reading requests from stdin")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(ctx, os.Stdin, os.Stdout)
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			logger.Error().Err(err).Msg("rpc server stopped with error")
		} else {
			logger.Info().Msg("stdin closed, shutting down")
		}
	}

	sess.Disconnect()
	logger.Info().Msg("waapi tool-server stopped")
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics listener stopped")
	}
}
