// Package ratelimit tracks the SportMonks per-entity request budget and
// gates requests while it is exhausted.
//
// SportMonks reports the budget in every response body:
//
//	"rate_limit": {"resets_in_seconds": 3423, "remaining": 2987, "requested_entity": "Team"}
//
// The state is stored in Redis so several processes share one view.
package ratelimit

import (
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// RedisKeyPrefix prefixes the per-resource state hash.
const RedisKeyPrefix = "sportmonks:rate_limit:"

// Thresholds for rate limit decisions.
const (
	// ThresholdCritical blocks requests while remaining is below it.
	ThresholdCritical = 1

	// ThresholdWarning slows requests down while remaining is below it.
	ThresholdWarning = 50

	// ThresholdHealthy marks a comfortable budget.
	ThresholdHealthy = 500
)

// Info is the rate_limit block of a response body.
type Info struct {
	Remaining       int    `json:"remaining"`
	ResetsInSeconds int    `json:"resets_in_seconds"`
	RequestedEntity string `json:"requested_entity"`
}

// ParseInfo decodes a raw rate_limit block.
func ParseInfo(raw []byte) (*Info, error) {
	var info Info
	if err := sonic.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("parse rate_limit: %w", err)
	}
	if info.Remaining < 0 || info.ResetsInSeconds < 0 {
		return nil, fmt.Errorf("parse rate_limit: negative values in %s", raw)
	}
	return &info, nil
}

// RateLimitState is the last known budget for one resource.
type RateLimitState struct {
	Entity     string    `json:"entity"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	LastUpdate time.Time `json:"last_update"`
	IsHealthy  bool      `json:"is_healthy"`
}

// NeedsCriticalBlock returns true while the budget is spent and the window
// has not reset yet.
func (s *RateLimitState) NeedsCriticalBlock() bool {
	return s.Remaining < ThresholdCritical && s.TimeUntilReset() > 0
}

// NeedsThrottling returns true if requests should be slowed down.
func (s *RateLimitState) NeedsThrottling() bool {
	return s.Remaining < ThresholdWarning && !s.NeedsCriticalBlock() && s.TimeUntilReset() > 0
}

// TimeUntilReset returns the duration until the budget resets, 0 if it
// already has.
func (s *RateLimitState) TimeUntilReset() time.Duration {
	d := time.Until(s.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}

// UpdateHealth updates IsHealthy from Remaining.
func (s *RateLimitState) UpdateHealth() {
	s.IsHealthy = s.Remaining >= ThresholdHealthy
}

// ResourceKey reduces a request path to the resource it is billed under
// ("players/42" -> "players").
func ResourceKey(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}
