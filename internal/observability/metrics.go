// Package observability holds the Prometheus collectors shared by the dashboard.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	backendRequestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "octofit_dashboard",
		Subsystem: "backend",
		Name:      "requests_total",
		Help:      "Requests issued to the OctoFit REST API, labeled by resource, method and outcome.",
	}, []string{"resource", "method", "outcome"})

	backendRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "octofit_dashboard",
		Subsystem: "backend",
		Name:      "request_duration_seconds",
		Help:      "Latency of requests to the OctoFit REST API.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"resource", "method"})

	viewLoadCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "octofit_dashboard",
		Subsystem: "view",
		Name:      "loads_total",
		Help:      "Completed view loads, labeled by view and resulting state.",
	}, []string{"view", "state"})

	userSaveCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "octofit_dashboard",
		Subsystem: "users",
		Name:      "saves_total",
		Help:      "User edit submissions, labeled by outcome.",
	}, []string{"outcome"})

	lastUserSaveGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "octofit_dashboard",
		Subsystem: "users",
		Name:      "last_save_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful user save.",
	})
)

func init() {
	prometheus.MustRegister(backendRequestCounter, backendRequestDuration, viewLoadCounter, userSaveCounter, lastUserSaveGauge)
}

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "transport_error"
)

// RecordBackendRequest tracks one REST API call.
func RecordBackendRequest(resource, method, outcome string, elapsed time.Duration) {
	backendRequestCounter.WithLabelValues(resource, method, outcome).Inc()
	backendRequestDuration.WithLabelValues(resource, method).Observe(elapsed.Seconds())
}

// RecordViewLoad counts a view leaving the loading state.
func RecordViewLoad(view, state string) {
	if view == "" {
		return
	}
	viewLoadCounter.WithLabelValues(view, state).Inc()
}

// RecordUserSave counts an edit submission and moves the watermark on success.
func RecordUserSave(outcome string, ts time.Time) {
	userSaveCounter.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess && !ts.IsZero() {
		lastUserSaveGauge.Set(float64(ts.Unix()))
	}
}
