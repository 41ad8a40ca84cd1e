package cache

import (
	"net/http"
	"testing"
	"time"
)

func TestNewEntry_Expiry(t *testing.T) {
	future := time.Now().Add(2 * time.Hour).UTC().Format(http.TimeFormat)
	past := time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat)

	tests := []struct {
		name   string
		header http.Header
		ttl    time.Duration
		minTTL time.Duration
		maxTTL time.Duration
	}{
		{"configured ttl", http.Header{}, time.Minute, 55 * time.Second, time.Minute},
		{"default ttl", nil, 0, DefaultTTL - 5*time.Second, DefaultTTL},
		{"max-age wins", http.Header{"Cache-Control": {"public, max-age=30"}}, time.Hour, 25 * time.Second, 30 * time.Second},
		{"expires header", http.Header{"Expires": {future}}, time.Minute, 110 * time.Minute, 2 * time.Hour},
		{"expired header", http.Header{"Expires": {past}}, time.Minute, 0, 0},
		{"no-store", http.Header{"Cache-Control": {"no-store"}}, time.Minute, 0, 0},
		{"bad expires falls back", http.Header{"Expires": {"tomorrow"}}, time.Minute, 55 * time.Second, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := NewEntry([]byte(`{"data":[]}`), http.StatusOK, tt.header, tt.ttl)
			ttl := entry.TTL()
			if ttl < tt.minTTL || ttl > tt.maxTTL {
				t.Errorf("TTL = %v, want between %v and %v", ttl, tt.minTTL, tt.maxTTL)
			}
			if (ttl == 0) != entry.IsExpired() {
				t.Errorf("IsExpired() = %v with TTL %v", entry.IsExpired(), ttl)
			}
		})
	}
}

func TestNewEntry_KeepsBody(t *testing.T) {
	entry := NewEntry([]byte("body"), http.StatusOK, http.Header{}, time.Minute)

	if string(entry.Body) != "body" {
		t.Errorf("Body = %q", entry.Body)
	}
	if entry.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", entry.StatusCode)
	}
	if entry.CachedAt.IsZero() {
		t.Error("CachedAt not set")
	}
}
