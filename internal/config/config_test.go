package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/foot-player/pkg/logging"
	"github.com/Sternrassler/foot-player/pkg/store/backends"
)

var keys = []string{
	"STORE_BACKEND", "PLAYERS_FILE", "DATABASE_URL", "BADGER_DIR",
	"SPORTMONKS_API_TOKEN", "SPORTMONKS_BASE_URL", "SPORTMONKS_TIMEOUT",
	"SPORTMONKS_MAX_ATTEMPTS", "SPORTMONKS_BACKOFF_STEP", "SPORTMONKS_REQUEST_INTERVAL",
	"REDIS_URL", "CACHE_TTL", "HTTP_ADDR", "LOG_LEVEL", "LOG_PRETTY",
}

// clearEnv blanks every variable Load reads; t.Setenv restores them.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func noDotenv(t *testing.T) string {
	return filepath.Join(t.TempDir(), ".env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFile(noDotenv(t))
	require.NoError(t, err)

	assert.Equal(t, backends.File, cfg.Store.Backend)
	assert.Equal(t, "players.json", cfg.Store.FilePath)
	assert.Equal(t, "data/badger", cfg.Store.BadgerDir)
	assert.Equal(t, "https://api.sportmonks.com/v3/football", cfg.SportMonks.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.SportMonks.Timeout)
	assert.Equal(t, 3, cfg.SportMonks.MaxAttempts)
	assert.Equal(t, 700*time.Millisecond, cfg.SportMonks.BackoffStep)
	assert.Equal(t, 250*time.Millisecond, cfg.SportMonks.RequestInterval)
	assert.Equal(t, 5*time.Minute, cfg.SportMonks.CacheTTL)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, logging.LevelInfo, cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "badger")
	t.Setenv("BADGER_DIR", "/tmp/players")
	t.Setenv("SPORTMONKS_API_TOKEN", "secret")
	t.Setenv("SPORTMONKS_MAX_ATTEMPTS", "5")
	t.Setenv("SPORTMONKS_BACKOFF_STEP", "1s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := LoadFile(noDotenv(t))
	require.NoError(t, err)

	assert.Equal(t, backends.Badger, cfg.Store.Backend)
	assert.Equal(t, "/tmp/players", cfg.Store.BadgerDir)
	assert.Equal(t, "secret", cfg.SportMonks.Token)
	assert.Equal(t, 5, cfg.SportMonks.MaxAttempts)
	assert.Equal(t, time.Second, cfg.SportMonks.BackoffStep)
	assert.Equal(t, logging.LevelDebug, cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)

	cc := cfg.ClientConfig(nil)
	assert.Equal(t, "secret", cc.Token)
	assert.Equal(t, 5, cc.MaxAttempts)
	assert.Nil(t, cc.Redis)
}

func TestLoad_MalformedValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPORTMONKS_TIMEOUT", "soon")
	t.Setenv("SPORTMONKS_MAX_ATTEMPTS", "three")
	t.Setenv("LOG_PRETTY", "maybe")

	_, err := LoadFile(noDotenv(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SPORTMONKS_TIMEOUT")
	assert.Contains(t, err.Error(), "SPORTMONKS_MAX_ATTEMPTS")
	assert.Contains(t, err.Error(), "LOG_PRETTY")
}

func TestLoad_DotenvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("HTTP_ADDR")
	os.Unsetenv("SPORTMONKS_API_TOKEN")
	t.Setenv("PLAYERS_FILE", "from-env.json")

	path := filepath.Join(t.TempDir(), ".env")
	content := "HTTP_ADDR=:9090\nSPORTMONKS_API_TOKEN=dotenv-token\nPLAYERS_FILE=from-file.json\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("HTTP_ADDR")
		os.Unsetenv("SPORTMONKS_API_TOKEN")
	})

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "dotenv-token", cfg.SportMonks.Token)
	assert.Equal(t, "from-env.json", cfg.Store.FilePath)
}

func TestRedis(t *testing.T) {
	rc, err := Config{}.Redis()
	require.NoError(t, err)
	assert.Nil(t, rc)

	rc, err = Config{RedisURL: "redis://localhost:6379/2"}.Redis()
	require.NoError(t, err)
	require.NotNil(t, rc)
	assert.Equal(t, 2, rc.Options().DB)
	rc.Close()

	_, err = Config{RedisURL: "://bad"}.Redis()
	require.Error(t, err)
}
