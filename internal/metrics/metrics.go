package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/domain"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	EventsProcessed     *prometheus.CounterVec
	EventsFailed        *prometheus.CounterVec
	EventLatency        *prometheus.HistogramVec
	NotificationsStored prometheus.Counter
	EmailsSent          prometheus.Counter
	EmailsFailed        prometheus.Counter
	SchedulerRuns       *prometheus.CounterVec
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "events_processed_total",
			Help: "Total number of acknowledged event messages per family.",
		}, []string{"family"}),

		EventsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "events_failed_total",
			Help: "Total number of event messages rejected to the dead-letter queue per family.",
		}, []string{"family"}),

		EventLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "event_processing_seconds",
			Help:    "Per-message processing latency from decode to ack.",
			Buckets: prometheus.DefBuckets,
		}, []string{"family"}),

		NotificationsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifications_stored_total",
			Help: "Total number of durable notification records created.",
		}),

		EmailsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Total number of successfully sent notification emails.",
		}),

		EmailsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emails_failed_total",
			Help: "Total number of failed notification email attempts (best-effort channel).",
		}),

		SchedulerRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_runs_total",
			Help: "Total number of due-date scheduler passes per job.",
		}, []string{"job"}),
	}

	reg.MustRegister(
		m.EventsProcessed,
		m.EventsFailed,
		m.EventLatency,
		m.NotificationsStored,
		m.EmailsSent,
		m.EmailsFailed,
		m.SchedulerRuns,
	)

	return m
}

// PipelineHooks returns the metric callbacks expected by pipeline.MetricHooks.
// Centralises the prometheus observation calls so the pipeline stays
// metrics-agnostic.
func (m *Metrics) PipelineHooks() (
	onProcessed func(family domain.Family, latency time.Duration),
	onFailed func(family domain.Family),
	onStored func(count int),
) {
	onProcessed = func(f domain.Family, latency time.Duration) {
		m.EventsProcessed.WithLabelValues(string(f)).Inc()
		m.EventLatency.WithLabelValues(string(f)).Observe(latency.Seconds())
	}
	onFailed = func(f domain.Family) {
		m.EventsFailed.WithLabelValues(string(f)).Inc()
	}
	onStored = func(count int) {
		m.NotificationsStored.Add(float64(count))
	}
	return
}

// DeliveryHooks returns the email outcome callbacks used by both the
// delivery fan-out and the due-date schedulers.
func (m *Metrics) DeliveryHooks() (onSent func(), onFailed func()) {
	onSent = func() { m.EmailsSent.Inc() }
	onFailed = func() { m.EmailsFailed.Inc() }
	return
}

// SchedulerRunHook returns the per-pass counter callback for a named job.
func (m *Metrics) SchedulerRunHook(job string) func() {
	return func() { m.SchedulerRuns.WithLabelValues(job).Inc() }
}
