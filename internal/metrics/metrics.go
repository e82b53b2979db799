// Package metrics holds the prometheus collectors for search backend
// requests.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// BackendRequestDuration observes the duration of backend primitives.
	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "argilla",
			Name:      "search_backend_request_duration_seconds",
			Help:      "Search backend request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend", "operation"},
	)

	// BackendRequestsTotal counts backend primitives by outcome.
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "argilla",
			Name:      "search_backend_requests_total",
			Help:      "Total number of search backend requests",
		},
		[]string{"backend", "operation", "status"},
	)
)

// Register registers the search backend collectors. Call once at startup.
func Register() {
	prometheus.MustRegister(BackendRequestDuration)
	prometheus.MustRegister(BackendRequestsTotal)
}
