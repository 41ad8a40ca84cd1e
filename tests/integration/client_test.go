//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/foot-player/internal/testutil"
	"github.com/Sternrassler/foot-player/pkg/cache"
	"github.com/Sternrassler/foot-player/pkg/client"
	"github.com/Sternrassler/foot-player/pkg/pagination"
	"github.com/Sternrassler/foot-player/pkg/ratelimit"
	"github.com/Sternrassler/foot-player/pkg/sportmonks"
	"github.com/Sternrassler/foot-player/pkg/store/pgstore"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// setupPostgres creates a Postgres container and returns its URL.
func setupPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "foot",
			"POSTGRES_PASSWORD": "foot",
			"POSTGRES_DB":       "foot",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Postgres container: %v", err)
	}
	t.Cleanup(func() { container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	return fmt.Sprintf("postgres://foot:foot@%s:%s/foot?sslmode=disable", host, port.Port())
}

func newClient(t *testing.T, mock *testutil.MockAPI, redisClient *redis.Client) *client.Client {
	t.Helper()

	cfg := client.DefaultConfig("integration-token")
	cfg.BaseURL = mock.URL()
	cfg.Redis = redisClient
	cfg.RequestInterval = 0
	cfg.BackoffStep = 10 * time.Millisecond

	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func teams(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = map[string]any{"id": i + 1, "name": fmt.Sprintf("Team %d", i+1), "country_id": 462}
	}
	return out
}

// TestFullRequestFlow covers rate limit check, cache miss, API request,
// cache store and rate limit update, then a fully cached second pass.
func TestFullRequestFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetPages("/teams", teams(5), 2, testutil.NextPageURL)

	c := newClient(t, mock, redisClient)
	ctx := context.Background()

	records, err := pagination.Collect(ctx, c.Iterate(ctx, "teams", nil))
	if err != nil {
		t.Fatalf("First pass failed: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("Expected 5 records, got %d", len(records))
	}
	if got := mock.RequestCount("/teams"); got != 3 {
		t.Errorf("Expected 3 page requests, got %d", got)
	}

	state, err := ratelimit.NewTracker(redisClient, zerolog.Nop()).GetState(ctx, "teams")
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state.Remaining != 2999 || state.Entity != "Mock" {
		t.Errorf("Expected tracked rate limit from response, got %+v", state)
	}

	records, err = pagination.Collect(ctx, c.Iterate(ctx, "teams", nil))
	if err != nil {
		t.Fatalf("Second pass failed: %v", err)
	}
	if len(records) != 5 {
		t.Errorf("Expected 5 cached records, got %d", len(records))
	}
	if got := mock.RequestCount("/teams"); got != 3 {
		t.Errorf("Second pass should be served from cache, got %d requests", got)
	}
}

// TestRateLimitBlock tests that requests are blocked when the budget is spent.
func TestRateLimitBlock(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetPages("/players", teams(1), 10, testutil.NextPageNumber)

	ctx := context.Background()
	now := time.Now()
	err := redisClient.HSet(ctx, ratelimit.RedisKeyPrefix+"players",
		"entity", "Player",
		"remaining", 0,
		"reset_at", now.Add(10*time.Minute).Unix(),
		"last_update", now.UnixNano(),
	).Err()
	if err != nil {
		t.Fatalf("Failed to seed rate limit state: %v", err)
	}

	c := newClient(t, mock, redisClient)

	_, err = c.FetchPage(ctx, "players", nil, 1)
	if !errors.Is(err, client.ErrRateLimited) {
		t.Fatalf("Expected ErrRateLimited, got %v", err)
	}
	if got := mock.RequestCount("/players"); got != 0 {
		t.Errorf("Blocked request must not reach the API, got %d requests", got)
	}

	// other resources keep their own budget
	mock.SetPages("/teams", teams(1), 10, testutil.NextPageNumber)
	if _, err := c.FetchPage(ctx, "teams", nil, 1); err != nil {
		t.Errorf("Unrelated resource should not be blocked: %v", err)
	}
}

// TestCacheHitKeepsRateLimitState tests that a cached page neither replays
// its stored rate_limit block nor needs budget to be served.
func TestCacheHitKeepsRateLimitState(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()

	ctx := context.Background()
	body := []byte(`{"data":[{"id":1}],"rate_limit":{"resets_in_seconds":3600,"remaining":0,"requested_entity":"Player"}}`)
	entry := cache.NewEntry(body, http.StatusOK, http.Header{}, time.Minute)
	if err := cache.NewManager(redisClient).Set(ctx, cache.Key{Resource: "players", Page: 1}, entry); err != nil {
		t.Fatalf("Failed to seed cache: %v", err)
	}

	now := time.Now()
	seed := func(remaining int) {
		t.Helper()
		err := redisClient.HSet(ctx, ratelimit.RedisKeyPrefix+"players",
			"entity", "Player",
			"remaining", remaining,
			"reset_at", now.Add(10*time.Minute).Unix(),
			"last_update", now.UnixNano(),
		).Err()
		if err != nil {
			t.Fatalf("Failed to seed rate limit state: %v", err)
		}
	}

	c := newClient(t, mock, redisClient)
	tracker := ratelimit.NewTracker(redisClient, zerolog.Nop())

	seed(2000)
	env, err := c.FetchPage(ctx, "players", nil, 1)
	if err != nil {
		t.Fatalf("Cached fetch failed: %v", err)
	}
	if len(env.Data) != 1 {
		t.Errorf("Expected 1 cached record, got %d", len(env.Data))
	}

	state, err := tracker.GetState(ctx, "players")
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state.Remaining != 2000 || !state.LastUpdate.Equal(time.Unix(0, now.UnixNano())) {
		t.Errorf("Cache hit must not change rate limit state, got %+v", state)
	}

	// a spent budget still serves pages that cost no quota
	seed(0)
	if _, err := c.FetchPage(ctx, "players", nil, 1); err != nil {
		t.Errorf("Cached page should be served with a spent budget: %v", err)
	}
	if got := mock.RequestCount("/players"); got != 0 {
		t.Errorf("Cached pages must not reach the API, got %d requests", got)
	}
}

// TestRetryThenCache tests that a page recovered after server errors is
// cached like any other.
func TestRetryThenCache(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetSequence("/leagues",
		testutil.MockResponse{StatusCode: http.StatusInternalServerError, Body: `{"message":"boom"}`},
		testutil.MockResponse{StatusCode: http.StatusBadGateway, Body: `{"message":"boom"}`},
		testutil.MockResponse{Body: `{"data":[{"id":8,"name":"Premier League"}]}`},
	)

	c := newClient(t, mock, redisClient)
	ctx := context.Background()

	env, err := c.FetchPage(ctx, "leagues", nil, 1)
	if err != nil {
		t.Fatalf("Expected success on third attempt, got %v", err)
	}
	if len(env.Data) != 1 {
		t.Errorf("Expected 1 record, got %d", len(env.Data))
	}
	if got := mock.RequestCount("/leagues"); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}

	if _, err := c.FetchPage(ctx, "leagues", nil, 1); err != nil {
		t.Fatalf("Cached fetch failed: %v", err)
	}
	if got := mock.RequestCount("/leagues"); got != 3 {
		t.Errorf("Expected cached page, got %d requests", got)
	}
}

// TestCacheExpiration tests that expired cache entries are not used.
func TestCacheExpiration(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/seasons", testutil.MockResponse{
		Body:    `{"data":[{"id":21646}]}`,
		Headers: map[string]string{"Cache-Control": "max-age=1"},
	})

	c := newClient(t, mock, redisClient)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := c.FetchPage(ctx, "seasons", nil, 1); err != nil {
			t.Fatalf("Fetch %d failed: %v", i, err)
		}
	}
	if got := mock.RequestCount("/seasons"); got != 1 {
		t.Errorf("Expected 1 request before expiry, got %d", got)
	}

	time.Sleep(1500 * time.Millisecond)

	if _, err := c.FetchPage(ctx, "seasons", nil, 1); err != nil {
		t.Fatalf("Fetch after expiry failed: %v", err)
	}
	if got := mock.RequestCount("/seasons"); got != 2 {
		t.Errorf("Expected a fresh request after expiry, got %d", got)
	}
}

// TestTeamsIntoPostgres fetches a league's teams and stores them.
func TestTeamsIntoPostgres(t *testing.T) {
	pgURL := setupPostgres(t)

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetPages("/teams", teams(7), 3, testutil.NextPageString)

	ctx := context.Background()
	svc := sportmonks.NewService(newClient(t, mock, nil), zerolog.Nop())

	fetched, err := svc.FetchTeams(ctx, 8, 21646)
	if err != nil {
		t.Fatalf("FetchTeams failed: %v", err)
	}

	db, err := pgstore.Open(ctx, pgURL)
	if err != nil {
		t.Fatalf("Failed to open Postgres: %v", err)
	}
	defer db.Close()

	rows := make([]pgstore.Team, len(fetched))
	for i, team := range fetched {
		rows[i] = pgstore.Team{ID: team.ID, Name: team.Name, CountryID: team.CountryID}
	}

	repo := pgstore.NewTeamRepository(db.DB())
	// twice: the upsert must not duplicate rows
	for i := 0; i < 2; i++ {
		if err := repo.UpsertTeams(ctx, rows); err != nil {
			t.Fatalf("UpsertTeams failed: %v", err)
		}
	}

	stored, err := repo.ListTeams(ctx)
	if err != nil {
		t.Fatalf("ListTeams failed: %v", err)
	}
	if len(stored) != 7 {
		t.Fatalf("Expected 7 teams, got %d", len(stored))
	}
	if stored[0].Name != "Team 1" || stored[0].CountryID == nil || *stored[0].CountryID != 462 {
		t.Errorf("Unexpected first team: %+v", stored[0])
	}
}
