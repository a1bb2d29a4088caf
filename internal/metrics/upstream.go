package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Upstream Prometheus metrics: thesaurus provider and summarization engine.
var (
	ThesaurusRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wordser",
			Name:      "thesaurus_requests_total",
			Help:      "Total number of thesaurus provider requests",
		},
		[]string{"status"}, // "success" / "error"
	)

	ThesaurusRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wordser",
			Name:      "thesaurus_request_duration_seconds",
			Help:      "Thesaurus provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)

	ExtractionFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wordser",
			Name:      "thesaurus_extraction_failures_total",
			Help:      "Thesaurus documents rejected by the synonym extractor",
		},
		[]string{"kind"},
	)

	SummarizerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wordser",
			Name:      "summarizer_requests_total",
			Help:      "Total number of summarization engine invocations",
		},
		[]string{"model", "status"},
	)

	SummarizerRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wordser",
			Name:      "summarizer_request_duration_seconds",
			Help:      "Summarization engine invocation duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	SummarizerQueueWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "wordser",
			Name:      "summarizer_queue_wait_seconds",
			Help:      "Time spent waiting for a summarizer worker slot",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	HTTPInFlightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wordser",
			Name:      "http_in_flight_requests",
			Help:      "Requests currently being handled",
		},
	)
)

var registerUpstreamOnce sync.Once

// RegisterUpstreamMetrics registers upstream Prometheus metrics. Safe to call more than once.
func RegisterUpstreamMetrics() {
	registerUpstreamOnce.Do(func() {
		prometheus.MustRegister(ThesaurusRequestsTotal)
		prometheus.MustRegister(ThesaurusRequestDuration)
		prometheus.MustRegister(ExtractionFailuresTotal)
		prometheus.MustRegister(SummarizerRequestsTotal)
		prometheus.MustRegister(SummarizerRequestDuration)
		prometheus.MustRegister(SummarizerQueueWait)
		prometheus.MustRegister(HTTPInFlightRequests)
	})
}
