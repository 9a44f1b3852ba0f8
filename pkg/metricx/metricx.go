// Package metricx exposes prometheus metrics for the job pipeline: traffic
// (submissions, outcomes), errors (failures, poison messages), latency
// (processing duration) and saturation (in-flight jobs).
package metricx

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline instruments. A nil *Metrics is valid and makes
// every recording method a no-op, so callers never need to branch.
type Metrics struct {
	registry *prometheus.Registry

	jobsSubmitted  prometheus.Counter
	jobsRetried    prometheus.Counter
	jobsCompleted  prometheus.Counter
	jobsFailed     prometheus.Counter
	poisonMessages prometheus.Counter
	jobsActive     prometheus.Gauge
	runDuration    prometheus.Histogram
}

// New creates and registers the pipeline metrics on a private registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.jobsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trainforge_jobs_submitted_total",
		Help: "Jobs accepted by the submission orchestrator.",
	})
	m.jobsRetried = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trainforge_jobs_retried_total",
		Help: "Derived jobs created by the retry orchestrator.",
	})
	m.jobsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trainforge_jobs_completed_total",
		Help: "Jobs that reached the completed state.",
	})
	m.jobsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trainforge_jobs_failed_total",
		Help: "Jobs that reached the failed state.",
	})
	m.poisonMessages = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trainforge_poison_messages_total",
		Help: "Queue messages dropped as unparseable.",
	})
	m.jobsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "trainforge_jobs_active",
		Help: "Jobs currently being processed by this worker.",
	})
	m.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "trainforge_job_run_duration_seconds",
		Help:    "Execution backend run duration in seconds.",
		Buckets: []float64{1, 5, 15, 60, 300, 900, 1800, 3600},
	})

	m.registry.MustRegister(
		m.jobsSubmitted, m.jobsRetried, m.jobsCompleted, m.jobsFailed,
		m.poisonMessages, m.jobsActive, m.runDuration,
	)
	return m
}

// Handler serves the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) JobSubmitted() {
	if m != nil {
		m.jobsSubmitted.Inc()
	}
}

func (m *Metrics) JobRetried() {
	if m != nil {
		m.jobsRetried.Inc()
	}
}

func (m *Metrics) JobCompleted(seconds float64) {
	if m != nil {
		m.jobsCompleted.Inc()
		m.runDuration.Observe(seconds)
	}
}

func (m *Metrics) JobFailed(seconds float64) {
	if m != nil {
		m.jobsFailed.Inc()
		m.runDuration.Observe(seconds)
	}
}

func (m *Metrics) PoisonMessage() {
	if m != nil {
		m.poisonMessages.Inc()
	}
}

func (m *Metrics) JobStarted() {
	if m != nil {
		m.jobsActive.Inc()
	}
}

func (m *Metrics) JobFinished() {
	if m != nil {
		m.jobsActive.Dec()
	}
}
