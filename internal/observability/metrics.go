package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes prometheus instruments for the SLA pipeline.
type Metrics struct {
	computations    *prometheus.CounterVec
	breaches        *prometheus.CounterVec
	computeFailures *prometheus.CounterVec
	batchDuration   prometheus.Histogram
	batchTickets    prometheus.Counter
	batchFailures   prometheus.Counter
	httpRequests    *prometheus.CounterVec
	httpErrors      *prometheus.CounterVec
}

// NewMetrics registers the instruments on the given registry. A nil registry
// falls back to the default one.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sla_computations_total",
			Help: "SLA stat computations by resulting instance status.",
		}, []string{"status"}),
		breaches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sla_breaches_total",
			Help: "Breached evaluations by breach reason.",
		}, []string{"reason"}),
		computeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sla_compute_failures_total",
			Help: "Per-ticket computation failures by error kind.",
		}, []string{"kind"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sla_recompute_batch_seconds",
			Help:    "Wall time of batch recomputation runs.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		batchTickets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sla_recompute_tickets_total",
			Help: "Tickets processed by batch recomputation.",
		}),
		batchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sla_recompute_failures_total",
			Help: "Tickets that failed during batch recomputation.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by path, method and status.",
		}, []string{"path", "method", "status"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "HTTP error responses by path, method and error code.",
		}, []string{"path", "method", "code"}),
	}

	registerer := prometheus.Registerer(prometheus.DefaultRegisterer)
	if registry != nil {
		registerer = registry
	}
	registerer.MustRegister(
		m.computations,
		m.breaches,
		m.computeFailures,
		m.batchDuration,
		m.batchTickets,
		m.batchFailures,
		m.httpRequests,
		m.httpErrors,
	)
	return m
}

// RecordComputation counts one finished computation.
func (m *Metrics) RecordComputation(instanceStatus string) {
	if m == nil {
		return
	}
	m.computations.WithLabelValues(instanceStatus).Inc()
}

// RecordBreach counts a breached evaluation.
func (m *Metrics) RecordBreach(reason string) {
	if m == nil {
		return
	}
	m.breaches.WithLabelValues(reason).Inc()
}

// RecordComputeFailure counts a per-ticket failure.
func (m *Metrics) RecordComputeFailure(kind string) {
	if m == nil {
		return
	}
	m.computeFailures.WithLabelValues(kind).Inc()
}

// RecordBatch records one batch recomputation run.
func (m *Metrics) RecordBatch(duration time.Duration, processed, failed int) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(duration.Seconds())
	m.batchTickets.Add(float64(processed))
	m.batchFailures.Add(float64(failed))
}

// RecordRequest counts an HTTP request.
func (m *Metrics) RecordRequest(path, method, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, method, status).Inc()
}

// RecordError counts an HTTP error response.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(path, method, code).Inc()
}
