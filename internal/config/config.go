// Package config loads runtime configuration for the foot-player binaries
// from an optional .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/foot-player/pkg/client"
	"github.com/Sternrassler/foot-player/pkg/logging"
	"github.com/Sternrassler/foot-player/pkg/store/backends"
	"github.com/Sternrassler/foot-player/pkg/store/filestore"
)

// Config is the complete runtime configuration.
type Config struct {
	Store      backends.Config
	SportMonks SportMonks
	RedisURL   string
	HTTPAddr   string
	Log        logging.Config
}

// SportMonks configures the remote API client.
type SportMonks struct {
	Token           string
	BaseURL         string
	Timeout         time.Duration
	MaxAttempts     int
	BackoffStep     time.Duration
	RequestInterval time.Duration
	CacheTTL        time.Duration
}

// Load reads .env (when present) and then the environment. Variables that
// are set but malformed are reported instead of falling back to defaults.
func Load() (Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. Existing environment
// variables are never overridden by the file.
func LoadFile(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}

	var (
		cfg  Config
		errs []error
	)
	parseDuration := func(key string, def time.Duration) time.Duration {
		d, err := envDuration(key, def)
		errs = append(errs, err)
		return d
	}

	cfg.Store = backends.Config{
		Backend:     getEnv("STORE_BACKEND", backends.File),
		FilePath:    getEnv("PLAYERS_FILE", filestore.DefaultPath),
		PostgresURL: os.Getenv("DATABASE_URL"),
		BadgerDir:   getEnv("BADGER_DIR", "data/badger"),
	}

	defaults := client.DefaultConfig("")
	attempts, err := envInt("SPORTMONKS_MAX_ATTEMPTS", defaults.MaxAttempts)
	errs = append(errs, err)

	cfg.SportMonks = SportMonks{
		Token:           os.Getenv("SPORTMONKS_API_TOKEN"),
		BaseURL:         getEnv("SPORTMONKS_BASE_URL", client.DefaultBaseURL),
		Timeout:         parseDuration("SPORTMONKS_TIMEOUT", defaults.Timeout),
		MaxAttempts:     attempts,
		BackoffStep:     parseDuration("SPORTMONKS_BACKOFF_STEP", defaults.BackoffStep),
		RequestInterval: parseDuration("SPORTMONKS_REQUEST_INTERVAL", defaults.RequestInterval),
		CacheTTL:        parseDuration("CACHE_TTL", defaults.CacheTTL),
	}

	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	pretty, err := envBool("LOG_PRETTY", false)
	errs = append(errs, err)
	cfg.Log = logging.DefaultConfig()
	cfg.Log.Level = logging.LogLevel(getEnv("LOG_LEVEL", string(logging.LevelInfo)))
	cfg.Log.Pretty = pretty

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ClientConfig builds the fetch client configuration. redisClient may be
// nil to run without cache and shared rate-limit state.
func (c Config) ClientConfig(redisClient *redis.Client) client.Config {
	cfg := client.DefaultConfig(c.SportMonks.Token)
	cfg.BaseURL = c.SportMonks.BaseURL
	cfg.Timeout = c.SportMonks.Timeout
	cfg.MaxAttempts = c.SportMonks.MaxAttempts
	cfg.BackoffStep = c.SportMonks.BackoffStep
	cfg.RequestInterval = c.SportMonks.RequestInterval
	cfg.CacheTTL = c.SportMonks.CacheTTL
	cfg.Redis = redisClient
	return cfg
}

// Redis connects to RedisURL. It returns nil when no URL is configured.
func (c Config) Redis() (*redis.Client, error) {
	if c.RedisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(c.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
