package cache

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultTTL is used when neither the caller nor the response sets one.
const DefaultTTL = 5 * time.Minute

// NewEntry builds an entry for a response body. Response caching headers
// win over ttl.
func NewEntry(body []byte, status int, header http.Header, ttl time.Duration) *Entry {
	now := time.Now()
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Entry{
		Body:       body,
		StatusCode: status,
		CachedAt:   now,
		Expires:    parseExpires(header, now, ttl),
	}
}

// parseExpires reads Cache-Control max-age, then Expires, falling back to
// now+ttl. no-store and no-cache expire immediately.
func parseExpires(header http.Header, now time.Time, ttl time.Duration) time.Time {
	for _, directive := range strings.Split(header.Get("Cache-Control"), ",") {
		directive = strings.ToLower(strings.TrimSpace(directive))
		switch {
		case directive == "no-store" || directive == "no-cache":
			return now
		case strings.HasPrefix(directive, "max-age="):
			if secs, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age=")); err == nil && secs >= 0 {
				return now.Add(time.Duration(secs) * time.Second)
			}
		}
	}

	if expiresStr := header.Get("Expires"); expiresStr != "" {
		if expires, err := http.ParseTime(expiresStr); err == nil {
			if expires.Before(now) {
				return now
			}
			return expires
		}
	}

	return now.Add(ttl)
}
