package catalog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the extraction pipeline.
// All helpers are nil-safe so the extractor can run without a registry
// (tests, one-shot CLI runs).
type Metrics struct {
	Registry       *prometheus.Registry
	PagesTotal     *prometheus.CounterVec
	ItemsExtracted prometheus.Counter
	ItemsDropped   prometheus.Counter
	FieldMissTotal *prometheus.CounterVec
	FetchDuration  prometheus.Histogram
	RequestsTotal  *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_pages_total",
			Help: "Total search/detail pages processed.",
		},
		[]string{"kind"},
	)
	extracted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_items_extracted_total",
			Help: "Total product records extracted.",
		},
	)
	dropped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_items_dropped_total",
			Help: "Total item containers dropped for a missing ASIN.",
		},
	)
	fieldMiss := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_field_miss_total",
			Help: "Total field resolutions that ended absent, by field.",
		},
		[]string{"field"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_fetch_duration_seconds",
			Help:    "Rendered-content fetch latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Extraction requests by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	registry.MustRegister(pages, extracted, dropped, fieldMiss, fetchDuration, requests)

	return &Metrics{
		Registry:       registry,
		PagesTotal:     pages,
		ItemsExtracted: extracted,
		ItemsDropped:   dropped,
		FieldMissTotal: fieldMiss,
		FetchDuration:  fetchDuration,
		RequestsTotal:  requests,
	}
}

func (m *Metrics) IncPage(kind string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncExtracted() {
	if m == nil {
		return
	}
	m.ItemsExtracted.Inc()
}

func (m *Metrics) IncDropped() {
	if m == nil {
		return
	}
	m.ItemsDropped.Inc()
}

func (m *Metrics) IncFieldMiss(field string) {
	if m == nil {
		return
	}
	m.FieldMissTotal.WithLabelValues(field).Inc()
}

func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

func (m *Metrics) IncRequest(operation, outcome string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(operation, outcome).Inc()
}
