// Package metrics defines the Prometheus instrumentation for the driver
// pipeline, grounded on the teacher's internal/apiserver/server/metrics.go
// (same promauto constructor idiom, same namespace-prefixed naming).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every gauge/counter/histogram the pipeline exposes. Updates
// happen at the builder, runner, monitor and CLI call sites, outside the
// Ledger's lock, so they are not synchronized with the Ledger's counters.
// RunnerOutcomesTotal is registered but no call site increments it.
type Metrics struct {
	ActionsBuilt        prometheus.Counter
	ActionsEnqueued     prometheus.Counter
	ReadyQueueDepth     prometheus.Gauge
	RunnerOutcomesTotal *prometheus.CounterVec // labeled by result
	KillTimerFires      prometheus.Counter
	MonitorConnections  *prometheus.CounterVec // labeled by outcome: accepted, timeout, dropped
	RunDuration         prometheus.Histogram
}

// New registers and returns a Metrics instance under namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		ActionsBuilt: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_built_total",
			Help:      "Total actions passed through mode.BuildAndInstall.",
		}),
		ActionsEnqueued: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_enqueued_total",
			Help:      "Total actions placed on the ready queue.",
		}),
		ReadyQueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ready_queue_depth",
			Help:      "Current number of actions waiting in the ready queue.",
		}),
		RunnerOutcomesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runner_outcomes_total",
			Help:      "Total outcomes recorded, labeled by result.",
		}, []string{"result"}),
		KillTimerFires: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kill_timer_fires_total",
			Help:      "Total times the kill-timer forcibly terminated a child.",
		}),
		MonitorConnections: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "monitor_connections_total",
			Help:      "Total monitor listener outcomes, labeled by outcome.",
		}, []string{"outcome"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of one buildAndRun invocation.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
