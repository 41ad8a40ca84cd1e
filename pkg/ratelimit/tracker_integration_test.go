//go:build integration

package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a Redis container and returns a client
func setupRedis(t *testing.T) (*redis.Client, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func newTestTracker(t *testing.T) *Tracker {
	redisClient, cleanup := setupRedis(t)
	t.Cleanup(cleanup)

	tracker := NewTracker(redisClient, zerolog.New(os.Stderr).Level(zerolog.Disabled))
	tracker.SetThrottleDelay(0)
	return tracker
}

func TestTracker_Integration_DefaultState(t *testing.T) {
	tracker := newTestTracker(t)

	state, err := tracker.GetState(context.Background(), "teams")
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if !state.IsHealthy {
		t.Error("Default state should be healthy")
	}

	allowed, err := tracker.ShouldAllowRequest(context.Background(), "teams")
	if err != nil || !allowed {
		t.Errorf("ShouldAllowRequest() = %v, %v; want true, nil", allowed, err)
	}
}

func TestTracker_Integration_UpdateAndGet(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	raw := []byte(`{"resets_in_seconds":120,"remaining":2987,"requested_entity":"Player"}`)
	if err := tracker.Update(ctx, "players/42", raw); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	state, err := tracker.GetState(ctx, "players")
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if state.Remaining != 2987 {
		t.Errorf("Remaining = %d, want 2987", state.Remaining)
	}
	if state.Entity != "Player" {
		t.Errorf("Entity = %q, want Player", state.Entity)
	}
	if d := state.TimeUntilReset(); d <= 110*time.Second || d > 120*time.Second {
		t.Errorf("TimeUntilReset() = %v, want about 120s", d)
	}

	other, err := tracker.GetState(ctx, "teams")
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if other.Entity != "" {
		t.Error("Resources must not share state")
	}
}

func TestTracker_Integration_BlocksWhenSpent(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	if err := tracker.Update(ctx, "teams", []byte(`{"resets_in_seconds":60,"remaining":0,"requested_entity":"Team"}`)); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	allowed, err := tracker.ShouldAllowRequest(ctx, "teams")
	if err != nil {
		t.Fatalf("ShouldAllowRequest() error = %v", err)
	}
	if allowed {
		t.Error("Expected request to be blocked")
	}

	if err := tracker.Reset(ctx, "teams"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	allowed, _ = tracker.ShouldAllowRequest(ctx, "teams")
	if !allowed {
		t.Error("Expected request to be allowed after reset")
	}
}

func TestTracker_Integration_ThrottleHonoursContext(t *testing.T) {
	tracker := newTestTracker(t)
	tracker.SetThrottleDelay(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := tracker.Update(ctx, "teams", []byte(`{"resets_in_seconds":60,"remaining":3,"requested_entity":"Team"}`)); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	allowed, err := tracker.ShouldAllowRequest(ctx, "teams")
	if allowed || err == nil {
		t.Errorf("ShouldAllowRequest() = %v, %v; want false with context error", allowed, err)
	}
}

func TestTracker_Integration_IgnoresEmptyBlock(t *testing.T) {
	tracker := newTestTracker(t)
	if err := tracker.Update(context.Background(), "teams", nil); err != nil {
		t.Errorf("Update(nil) error = %v", err)
	}
}
