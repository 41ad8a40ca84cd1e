// Package metrics exposes the Prometheus registry shared by the client,
// cache, rate limit and store packages. Each metric is defined next to
// the code that updates it; this package only serves them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer every package's promauto metrics land in.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the matching gatherer for Handler.
var Gatherer = prometheus.DefaultGatherer

// Handler serves all registered metrics in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - sportmonks_requests_total{resource, status} (Counter)
//   - sportmonks_request_duration_seconds{resource} (Histogram)
//   - sportmonks_errors_total{class} (Counter): client, server, rate_limit, network, decode
//
// Retry Metrics (pkg/client):
//   - sportmonks_retries_total{error_class} (Counter)
//   - sportmonks_retry_backoff_seconds{error_class} (Histogram)
//   - sportmonks_retry_exhausted_total{error_class} (Counter)
//
// Cache Metrics (pkg/cache):
//   - sportmonks_cache_hits_total (Counter)
//   - sportmonks_cache_misses_total (Counter)
//   - sportmonks_cache_stored_bytes_total (Counter)
//   - sportmonks_cache_errors_total{operation} (Counter)
//
// Rate Limit Metrics (pkg/ratelimit):
//   - sportmonks_rate_limit_remaining{resource} (Gauge)
//   - sportmonks_rate_limit_blocks_total{resource} (Counter)
//   - sportmonks_rate_limit_throttles_total{resource} (Counter)
//
// Store Metrics (pkg/store):
//   - player_store_operations_total{backend, op, result} (Counter)
//
// Example Prometheus Queries:
//
//	# Failed store writes
//	sum(rate(player_store_operations_total{result="error"}[5m])) by (backend, op)
//
//	# P95 request latency
//	histogram_quantile(0.95, rate(sportmonks_request_duration_seconds_bucket[5m]))
//
//	# Budget nearly spent
//	sportmonks_rate_limit_remaining < 50
