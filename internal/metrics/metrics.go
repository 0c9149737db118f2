// Package metrics exposes the tool-server's Prometheus metrics and a
// background host-resource sampler. Metric shape and the promhttp wiring
// are grounded on internal/single/core/monitoring_collectors.go; the host
// CPU sampler is grounded on internal/single/platform/cgroup_cpu.go, scaled
// down from full cgroup-quota accounting to a plain gopsutil sample since
// this process runs unsharded and has no per-container CPU budget to track
// against.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
)

var (
	// Queue (C1)
	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "waapi_queue_depth",
		Help: "Current number of requests waiting in the dispatch queue",
	})

	QueueCapacity = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "waapi_queue_capacity",
		Help: "Configured maximum size of the dispatch queue",
	})

	QueueRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "waapi_queue_rejected_total",
		Help: "Total requests rejected because the dispatch queue was full",
	})

	// Dispatcher (C3)
	DispatchedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "waapi_dispatched_total",
		Help: "Total requests the dispatcher has handed to the transport, by kind and outcome",
	}, []string{"kind", "outcome"})

	DispatchLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "waapi_dispatch_latency_seconds",
		Help:    "Time from dequeue to completion for dispatched requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	// Session (C2)
	ReconnectsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "waapi_reconnects_total",
		Help: "Total successful connects to the Authoring API",
	})

	ReconnectDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "waapi_reconnect_duration_seconds",
		Help:    "Time taken by a connect, from the start of the dial until the new dispatcher is in service",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})

	SessionState = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "waapi_session_state",
		Help: "Current session state (0=idle, 1=connecting, 2=connected, 3=reconnecting, 4=disconnected)",
	})

	// Subscriptions (C4)
	SubscriptionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "waapi_subscriptions_active",
		Help: "Current number of live subscriptions",
	})

	SubscriptionEventsDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "waapi_subscription_events_dropped_total",
		Help: "Total subscription events dropped because a subscription's buffer was full",
	}, []string{"topic"})

	// Plan runner (C6)
	PlanDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "waapi_plan_duration_seconds",
		Help:    "Wall time to execute a plan, by outcome",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	UndoGroupOutcomeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "waapi_undo_group_outcome_total",
		Help: "Total undo groups closed, by outcome (committed, commit_failed, cancelled)",
	}, []string{"outcome"})

	// Host resource sampling
	HostCPUPercent = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "waapi_host_cpu_percent",
		Help: "Host CPU utilization percent, sampled periodically",
	})
)

func init() {
	prometheus.MustRegister(
		QueueDepth, QueueCapacity, QueueRejectedTotal,
		DispatchedTotal, DispatchLatency,
		ReconnectsTotal, ReconnectDuration, SessionState,
		SubscriptionsActive, SubscriptionEventsDroppedTotal,
		PlanDuration, UndoGroupOutcomeTotal,
		HostCPUPercent,
	)
}

// Handler returns the promhttp handler for the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HostSampler periodically refreshes HostCPUPercent via gopsutil. A single
// failed sample is logged and skipped rather than stopping the loop.
type HostSampler struct {
	Interval time.Duration
	Logger   zerolog.Logger
}

// Run blocks, sampling until ctx is done.
func (s *HostSampler) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			percents, err := cpu.PercentWithContext(ctx, 0, false)
			if err != nil {
				s.Logger.Warn().Err(err).Msg("host cpu sample failed")
				continue
			}
			if len(percents) > 0 {
				HostCPUPercent.Set(percents[0])
			}
		}
	}
}
