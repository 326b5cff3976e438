// Package metrics defines Prometheus metrics for the pathfinder.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pathfinder_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pathfinder_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pathfinder_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	// SearchesTotal counts searches by outcome: found, not_found or error.
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pathfinder_searches_total",
			Help: "Total path searches by algorithm and outcome",
		},
		[]string{"algorithm", "outcome"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pathfinder_search_duration_seconds",
			Help:    "Path search duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 16),
		},
		[]string{"algorithm"},
	)

	StoreQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pathfinder_store_queries_total",
			Help: "Store round trips issued by searches",
		},
		[]string{"algorithm"},
	)

	NodesVisited = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pathfinder_nodes_visited",
			Help:    "Records visited per search",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
		[]string{"algorithm"},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pathfinder_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		SearchesTotal, SearchDuration, StoreQueriesTotal, NodesVisited,
		WSConnections,
	)
}
