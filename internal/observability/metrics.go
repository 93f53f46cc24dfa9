// Package observability provides Prometheus metrics for instance
// acquisition and launch activity.
package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Acquire outcomes recorded on acquires_total.
const (
	OutcomeReused   = "reused"
	OutcomeLaunched = "launched"
	OutcomeError    = "error"
)

var (
	registerOnce sync.Once

	acquires = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rig",
			Subsystem: "instance",
			Name:      "acquires_total",
			Help:      "Instance acquisitions by outcome.",
		},
		[]string{"outcome"},
	)
	launchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "rig",
			Subsystem: "instance",
			Name:      "launch_duration_seconds",
			Help:      "Fresh-launch duration (maintenance through readiness) in seconds.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)
	maintenanceRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rig",
			Subsystem: "launch",
			Name:      "maintenance_runs_total",
			Help:      "Maintenance launches by result.",
		},
		[]string{"result"},
	)
	strayKills = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rig",
			Subsystem: "launch",
			Name:      "stray_kills_total",
			Help:      "Stray helper processes killed before spawn.",
		},
	)
	reuseFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rig",
			Subsystem: "instance",
			Name:      "reuse_failures_total",
			Help:      "Held instances found unusable during acquisition.",
		},
	)
	teardownFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rig",
			Subsystem: "instance",
			Name:      "teardown_failures_total",
			Help:      "Best-effort teardowns that reported an error.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(acquires, launchDuration, maintenanceRuns,
			strayKills, reuseFailures, teardownFailures)
	})
}

func RecordAcquire(outcome string) {
	RegisterMetrics()
	acquires.WithLabelValues(outcome).Inc()
}

func RecordLaunchDuration(d time.Duration) {
	RegisterMetrics()
	launchDuration.Observe(d.Seconds())
}

func RecordMaintenanceRun(err error) {
	RegisterMetrics()
	result := "ok"
	if err != nil {
		result = "error"
	}
	maintenanceRuns.WithLabelValues(result).Inc()
}

func RecordStrayKills(n int) {
	RegisterMetrics()
	strayKills.Add(float64(n))
}

func RecordReuseFailure() {
	RegisterMetrics()
	reuseFailures.Inc()
}

func RecordTeardownFailure() {
	RegisterMetrics()
	teardownFailures.Inc()
}
