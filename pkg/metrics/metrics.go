package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Package-level collectors registered through promauto, scraped via the
// server's /metrics endpoint.

var (
	// HTTP surface.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grafdb_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grafdb_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// Query engine.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grafdb_queries_total",
			Help: "Total number of evaluated queries by outcome",
		},
		[]string{"outcome"},
	)

	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "grafdb_query_duration_seconds",
			Help:    "Duration of query evaluation in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 5},
		},
	)

	// Store population.
	VerticesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "grafdb_vertices_total",
			Help: "Current number of vertices in the store",
		},
	)

	EdgesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "grafdb_edges_total",
			Help: "Current number of edges in the store",
		},
	)

	// Bulk ingest.
	BulkItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grafdb_bulk_items_total",
			Help: "Total number of bulk insert items by outcome",
		},
		[]string{"outcome"},
	)
)
