package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts pages served from Redis.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sportmonks_cache_hits_total",
			Help: "Total number of SportMonks page cache hits",
		},
	)

	// CacheMisses counts lookups that went to the API.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sportmonks_cache_misses_total",
			Help: "Total number of SportMonks page cache misses",
		},
	)

	// CacheStoredBytes counts bytes written to Redis.
	CacheStoredBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sportmonks_cache_stored_bytes_total",
			Help: "Total bytes of page bodies written to the cache",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportmonks_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
