// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "bagger_lab"

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Per-ticker metrics
	TickersProcessed prometheus.Counter
	TickersSucceeded prometheus.Counter
	TickersSkipped   *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram

	// Storage metrics
	StoreDuration *prometheus.HistogramVec
	StoreErrors   *prometheus.CounterVec

	// Batch metrics
	BatchRunsTotal *prometheus.CounterVec
	BatchDuration  prometheus.Histogram
	StateTickers   *prometheus.GaugeVec

	// Health metrics
	LastSuccessfulBatch prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg registers with the default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		TickersProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "tickers_processed_total",
			Help:      "Total number of tickers picked up by the batch driver",
		}),
		TickersSucceeded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "tickers_succeeded_total",
			Help:      "Total number of tickers analyzed and stored",
		}),
		TickersSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "tickers_skipped_total",
			Help:      "Total number of skipped tickers by reason",
		}, []string{"reason"}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Per-ticker engine duration in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}),

		StoreDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operation_duration_seconds",
			Help:      "Storage operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operation_errors_total",
			Help:      "Total number of storage operation errors",
		}, []string{"operation"}),

		BatchRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "runs_total",
			Help:      "Total number of batch runs by status",
		}, []string{"status"}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "duration_seconds",
			Help:      "Batch execution duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		}),
		StateTickers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "tickers_by_state",
			Help:      "Tickers per current bagger state in the last batch",
		}, []string{"state"}),

		LastSuccessfulBatch: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_batch_timestamp",
			Help:      "Unix timestamp of last completed batch run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor returns an HTTP handler exposing the metrics in g.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordTicker records the outcome of one ticker. An empty skipReason
// means the ticker succeeded.
func (m *Metrics) RecordTicker(skipReason string, analysis time.Duration) {
	if m == nil {
		return
	}
	m.TickersProcessed.Inc()
	if skipReason == "" {
		m.TickersSucceeded.Inc()
	} else {
		m.TickersSkipped.WithLabelValues(skipReason).Inc()
	}
	if analysis > 0 {
		m.AnalysisDuration.Observe(analysis.Seconds())
	}
}

// RecordStore records a storage operation such as "load" or "save".
func (m *Metrics) RecordStore(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.StoreDuration.WithLabelValues(operation).Observe(d.Seconds())
	if err != nil {
		m.StoreErrors.WithLabelValues(operation).Inc()
	}
}

// RecordBatch records a finished batch run and the resulting state distribution.
func (m *Metrics) RecordBatch(status string, d time.Duration, states map[string]int, finished time.Time) {
	if m == nil {
		return
	}
	m.BatchRunsTotal.WithLabelValues(status).Inc()
	m.BatchDuration.Observe(d.Seconds())
	m.StateTickers.Reset()
	for state, n := range states {
		m.StateTickers.WithLabelValues(state).Set(float64(n))
	}
	if status == "ok" {
		m.LastSuccessfulBatch.Set(float64(finished.Unix()))
	}
}
