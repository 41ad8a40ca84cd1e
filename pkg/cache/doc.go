// Package cache stores successful SportMonks page bodies in Redis.
//
// Pages are keyed by resource, query parameters and page number. The
// api_token parameter never takes part in a key, so rotating the token
// keeps the cache warm and the token never lands in Redis.
//
// # Basic Usage
//
//	manager := cache.NewManager(redisClient)
//
//	key := cache.Key{
//		Resource: "teams",
//		Params:   url.Values{"include": {"country"}, "league_id": {"301"}},
//		Page:     2,
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the API, then
//		_ = manager.Set(ctx, key, cache.NewEntry(body, http.StatusOK, resp.Header, 5*time.Minute))
//	}
//
// # Expiry
//
// An entry lives for the configured TTL unless the response carries a
// Cache-Control max-age or an Expires header, which take precedence.
//
// # Metrics
//
//   - sportmonks_cache_hits_total
//   - sportmonks_cache_misses_total
//   - sportmonks_cache_stored_bytes_total
//   - sportmonks_cache_errors_total{operation}
package cache
