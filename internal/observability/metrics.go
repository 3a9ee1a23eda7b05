package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// lookup service.
type Metrics struct {
	LookupsTotal   *prometheus.CounterVec // labels: outcome={found,no_results,city_not_found,upstream_error,internal_error}
	LookupDuration prometheus.Histogram

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: method={forward,reverse}, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: method={forward,reverse}, result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: method={forward,reverse}

	// Catalog metrics.
	CatalogRequests    *prometheus.CounterVec // labels: outcome={success,error}
	CatalogAPIDuration prometheus.Histogram

	HistoryPersistFailures prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		LookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_lookup",
			Name:      "lookups_total",
			Help:      "Completed lookup requests by outcome.",
		}, []string{"outcome"}),
		LookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_lookup",
			Name:      "lookup_duration_seconds",
			Help:      "End-to-end duration of a proximity lookup.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_lookup",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_lookup",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quake_lookup",
			Name:      "geocode_api_duration_seconds",
			Help:      "Nominatim API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		CatalogRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_lookup",
			Name:      "catalog_requests_total",
			Help:      "USGS catalog requests by outcome.",
		}, []string{"outcome"}),
		CatalogAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_lookup",
			Name:      "catalog_api_duration_seconds",
			Help:      "USGS catalog request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		HistoryPersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_lookup",
			Name:      "history_persist_failures_total",
			Help:      "Search history writes that failed and were swallowed.",
		}),
	}

	prometheus.MustRegister(
		m.LookupsTotal,
		m.LookupDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.CatalogRequests,
		m.CatalogAPIDuration,
		m.HistoryPersistFailures,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		LookupsTotal:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "quake_lookup", Name: "lookups_total"}, []string{"outcome"}),
		LookupDuration:         prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "quake_lookup", Name: "lookup_duration_seconds"}),
		GeocodeRequests:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "quake_lookup", Name: "geocode_requests_total"}, []string{"method", "outcome"}),
		GeocodeCache:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "quake_lookup", Name: "geocode_cache_total"}, []string{"method", "result"}),
		GeocodeAPIDuration:     prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "quake_lookup", Name: "geocode_api_duration_seconds"}, []string{"method"}),
		CatalogRequests:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "quake_lookup", Name: "catalog_requests_total"}, []string{"outcome"}),
		CatalogAPIDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "quake_lookup", Name: "catalog_api_duration_seconds"}),
		HistoryPersistFailures: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_lookup", Name: "history_persist_failures_total"}),
	}
}
