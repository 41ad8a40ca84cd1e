package cache

import "time"

// Entry is a cached response body.
type Entry struct {
	Body       []byte    `json:"body"`
	StatusCode int       `json:"status_code"`
	CachedAt   time.Time `json:"cached_at"`
	Expires    time.Time `json:"expires"`
}

// IsExpired returns true if the cache entry has expired.
func (e *Entry) IsExpired() bool {
	return !time.Now().Before(e.Expires)
}

// TTL returns the time until expiration, 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
