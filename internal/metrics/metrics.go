// Package metrics provides Prometheus metrics for spdxtv
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for spdxtv
type Metrics struct {
	// Parse metrics
	DocumentsParsed *prometheus.CounterVec
	ParseDuration   prometheus.Histogram
	RecordsScanned  prometheus.Counter
	WarningsTotal   prometheus.Counter
	ElementsWritten *prometheus.CounterVec
	JournalCommits  prometheus.Counter

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

// NewMetrics creates all metrics and registers them with reg. A nil reg
// uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	m := &Metrics{}

	m.DocumentsParsed = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spdxtv_documents_parsed_total",
			Help: "Total number of documents parsed, by outcome",
		},
		[]string{"status"},
	)

	m.ParseDuration = f.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "spdxtv_parse_duration_seconds",
			Help:    "Duration of document parses in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	m.RecordsScanned = f.NewCounter(
		prometheus.CounterOpts{
			Name: "spdxtv_records_scanned_total",
			Help: "Total number of tag-value records scanned",
		},
	)

	m.WarningsTotal = f.NewCounter(
		prometheus.CounterOpts{
			Name: "spdxtv_warnings_total",
			Help: "Total number of build warnings",
		},
	)

	m.ElementsWritten = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spdxtv_elements_written_total",
			Help: "Total number of graph nodes written, by store type",
		},
		[]string{"kind"},
	)

	m.JournalCommits = f.NewCounter(
		prometheus.CounterOpts{
			Name: "spdxtv_journal_commits_total",
			Help: "Total number of journal transactions committed",
		},
	)

	m.HTTPRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spdxtv_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "status"},
	)

	m.HTTPRequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spdxtv_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	m.HTTPRequestsInFlight = f.NewGauge(
		prometheus.GaugeOpts{
			Name: "spdxtv_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	return m
}

// RecordParse records one parse outcome
func (m *Metrics) RecordParse(status string, duration time.Duration, records, warnings int, counts map[string]int) {
	m.DocumentsParsed.WithLabelValues(status).Inc()
	m.ParseDuration.Observe(duration.Seconds())
	m.RecordsScanned.Add(float64(records))
	m.WarningsTotal.Add(float64(warnings))
	for kind, n := range counts {
		m.ElementsWritten.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordHTTPRequest records an HTTP request with its status code
func (m *Metrics) RecordHTTPRequest(route, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}
