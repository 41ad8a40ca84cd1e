package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit tracking.
var (
	requestsRemaining = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sportmonks_rate_limit_remaining",
		Help: "Requests remaining in the current SportMonks window by resource",
	}, []string{"resource"})

	rateLimitBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportmonks_rate_limit_blocks_total",
		Help: "Total number of requests blocked because the budget was spent",
	}, []string{"resource"})

	rateLimitThrottlesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportmonks_rate_limit_throttles_total",
		Help: "Total number of requests delayed because the budget was low",
	}, []string{"resource"})
)

// DefaultThrottleDelay is slept before a request while the budget is low.
const DefaultThrottleDelay = time.Second

// Tracker records SportMonks budgets and gates requests.
type Tracker struct {
	redis         *redis.Client
	logger        zerolog.Logger
	throttleDelay time.Duration
}

// NewTracker creates a new rate limit tracker.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:         redisClient,
		logger:        logger,
		throttleDelay: DefaultThrottleDelay,
	}
}

// SetThrottleDelay overrides the warning-state delay (tests use 0).
func (t *Tracker) SetThrottleDelay(d time.Duration) {
	t.throttleDelay = d
}

func stateKey(resource string) string {
	return RedisKeyPrefix + ResourceKey(resource)
}

// GetState returns the stored state for resource, or a healthy default
// when nothing has been recorded.
func (t *Tracker) GetState(ctx context.Context, resource string) (*RateLimitState, error) {
	fields, err := t.redis.HGetAll(ctx, stateKey(resource)).Result()
	if err != nil {
		return nil, fmt.Errorf("get rate limit state: %w", err)
	}

	if len(fields) == 0 {
		t.logger.Debug().Str("resource", resource).Msg("No rate limit state in Redis, assuming healthy")
		return &RateLimitState{
			Remaining:  ThresholdHealthy,
			LastUpdate: time.Now(),
			IsHealthy:  true,
		}, nil
	}

	remaining, err := strconv.Atoi(fields["remaining"])
	if err != nil {
		return nil, fmt.Errorf("parse remaining: %w", err)
	}
	resetAt, err := strconv.ParseInt(fields["reset_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse reset_at: %w", err)
	}
	lastUpdate, err := strconv.ParseInt(fields["last_update"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse last_update: %w", err)
	}

	state := &RateLimitState{
		Entity:     fields["entity"],
		Remaining:  remaining,
		ResetAt:    time.Unix(resetAt, 0),
		LastUpdate: time.Unix(0, lastUpdate),
	}
	state.UpdateHealth()
	return state, nil
}

// Update stores the rate_limit block of a response for resource. An empty
// block is ignored.
func (t *Tracker) Update(ctx context.Context, resource string, raw []byte) error {
	if len(raw) == 0 {
		return nil
	}

	info, err := ParseInfo(raw)
	if err != nil {
		return err
	}

	now := time.Now()
	state := &RateLimitState{
		Entity:     info.RequestedEntity,
		Remaining:  info.Remaining,
		ResetAt:    now.Add(time.Duration(info.ResetsInSeconds) * time.Second),
		LastUpdate: now,
	}
	state.UpdateHealth()

	key := stateKey(resource)
	pipe := t.redis.TxPipeline()
	pipe.HSet(ctx, key,
		"entity", state.Entity,
		"remaining", state.Remaining,
		"reset_at", state.ResetAt.Unix(),
		"last_update", state.LastUpdate.UnixNano(),
	)
	pipe.Expire(ctx, key, time.Duration(info.ResetsInSeconds)*time.Second+time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store rate limit state in redis: %w", err)
	}

	requestsRemaining.WithLabelValues(ResourceKey(resource)).Set(float64(state.Remaining))

	event := t.logger.Debug()
	switch {
	case state.NeedsCriticalBlock():
		event = t.logger.Error()
	case state.NeedsThrottling():
		event = t.logger.Warn()
	}
	event.
		Str("resource", ResourceKey(resource)).
		Str("entity", state.Entity).
		Int("remaining", state.Remaining).
		Time("reset_at", state.ResetAt).
		Msg("Rate limit state updated")

	return nil
}

// ShouldAllowRequest reports whether a request for resource may be sent.
// In the warning state it first waits for the throttle delay.
func (t *Tracker) ShouldAllowRequest(ctx context.Context, resource string) (bool, error) {
	state, err := t.GetState(ctx, resource)
	if err != nil {
		return false, err
	}

	if state.NeedsCriticalBlock() {
		t.logger.Error().
			Str("resource", ResourceKey(resource)).
			Dur("wait_duration", state.TimeUntilReset()).
			Msg("Rate limit spent - blocking request")
		rateLimitBlocksTotal.WithLabelValues(ResourceKey(resource)).Inc()
		return false, nil
	}

	if state.NeedsThrottling() {
		t.logger.Warn().
			Str("resource", ResourceKey(resource)).
			Int("remaining", state.Remaining).
			Msg("Rate limit low - throttling request")
		rateLimitThrottlesTotal.WithLabelValues(ResourceKey(resource)).Inc()

		if t.throttleDelay > 0 {
			timer := time.NewTimer(t.throttleDelay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return true, nil
}

// Reset forgets the state of resource.
func (t *Tracker) Reset(ctx context.Context, resource string) error {
	if err := t.redis.Del(ctx, stateKey(resource)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("reset rate limit state: %w", err)
	}
	return nil
}
