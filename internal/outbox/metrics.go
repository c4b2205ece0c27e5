package outbox

import "github.com/prometheus/client_golang/prometheus"

var (
	recordedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "octofit_dashboard",
		Subsystem: "outbox",
		Name:      "events_recorded_total",
		Help:      "Number of events written to the outbox table, labeled by event type.",
	}, []string{"event_type"})

	deliveredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "octofit_dashboard",
		Subsystem: "outbox",
		Name:      "events_delivered_total",
		Help:      "Number of outbox events successfully published to Kafka.",
	})

	failedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "octofit_dashboard",
		Subsystem: "outbox",
		Name:      "events_failed_total",
		Help:      "Number of outbox events whose delivery attempt failed.",
	})

	batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "octofit_dashboard",
		Subsystem: "outbox",
		Name:      "batch_duration_seconds",
		Help:      "Time spent fetching, delivering, and marking outbox batches.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})
)

func init() {
	prometheus.MustRegister(recordedCounter, deliveredCounter, failedCounter, batchDuration)
}
