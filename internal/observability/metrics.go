// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch and submission status labels.
const (
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusAbandoned = "abandoned"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Price feed metrics
	PriceFetchesTotal   *prometheus.CounterVec
	PriceFetchDuration  prometheus.Histogram
	PriceRowsDropped    prometheus.Counter
	CatalogTokens       prometheus.Gauge
	LastSuccessfulFetch prometheus.Gauge

	// Submission metrics
	SubmissionsTotal   *prometheus.CounterVec
	SubmissionDuration prometheus.Histogram
	SubmitRejected     *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
// on reg. A nil reg uses the default Prometheus registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "currency_swap"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		PriceFetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricefeed",
			Name:      "fetches_total",
			Help:      "Total number of price feed fetches by status",
		}, []string{"status"}),
		PriceFetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pricefeed",
			Name:      "fetch_duration_seconds",
			Help:      "Price feed fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		PriceRowsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricefeed",
			Name:      "rows_dropped_total",
			Help:      "Total number of feed rows discarded during normalization",
		}),
		CatalogTokens: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "tokens",
			Help:      "Number of tokens in the active catalog",
		}),
		LastSuccessfulFetch: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_fetch_timestamp",
			Help:      "Unix timestamp of last successful price fetch",
		}),

		SubmissionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "submission",
			Name:      "total",
			Help:      "Total number of swap submissions by status",
		}, []string{"status"}),
		SubmissionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "submission",
			Name:      "duration_seconds",
			Help:      "Swap submission latency in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 1.5, 2, 5, 10},
		}),
		SubmitRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "submission",
			Name:      "rejected_total",
			Help:      "Total number of refused submissions by reason",
		}, []string{"reason"}),

		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of API requests by route and status code",
		}, []string{"route", "code"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordPriceFetch records a price feed fetch.
func RecordPriceFetch(status string, seconds float64) {
	DefaultMetrics.PriceFetchesTotal.WithLabelValues(status).Inc()
	DefaultMetrics.PriceFetchDuration.Observe(seconds)
}

// RecordCatalogReplaced updates catalog metrics after a successful fetch.
func RecordCatalogReplaced(tokens, dropped int, at time.Time) {
	DefaultMetrics.CatalogTokens.Set(float64(tokens))
	DefaultMetrics.PriceRowsDropped.Add(float64(dropped))
	DefaultMetrics.LastSuccessfulFetch.Set(float64(at.Unix()))
}

// RecordSubmission records a completed submission.
func RecordSubmission(status string, seconds float64) {
	DefaultMetrics.SubmissionsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.SubmissionDuration.Observe(seconds)
}

// RecordSubmitRejected records a submission refused before it started.
func RecordSubmitRejected(reason string) {
	DefaultMetrics.SubmitRejected.WithLabelValues(reason).Inc()
}

// RecordHTTPRequest records a served API request.
func RecordHTTPRequest(route string, code int) {
	DefaultMetrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
