// Package backends opens the configured store.Store implementation.
package backends

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sternrassler/foot-player/pkg/store"
	"github.com/Sternrassler/foot-player/pkg/store/badgerstore"
	"github.com/Sternrassler/foot-player/pkg/store/filestore"
	"github.com/Sternrassler/foot-player/pkg/store/pgstore"
	"github.com/rs/zerolog"
)

// Backend names accepted by Open.
const (
	File     = "file"
	Postgres = "postgres"
	Badger   = "badger"
)

// Config selects and configures a backend.
type Config struct {
	Backend     string
	FilePath    string
	PostgresURL string
	BadgerDir   string

	// InMemory keeps badger data off disk (tests).
	InMemory bool
}

// Open returns the selected backend wrapped with metrics and logging.
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (*store.Instrumented, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = File
	}

	var (
		s   store.Store
		err error
	)
	switch backend {
	case File:
		path := cfg.FilePath
		if path == "" {
			path = filestore.DefaultPath
		}
		s = filestore.New(path)
	case Postgres:
		s, err = pgstore.Open(ctx, cfg.PostgresURL)
	case Badger:
		s, err = badgerstore.Open(badgerstore.Config{Dir: cfg.BadgerDir, InMemory: cfg.InMemory})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", backend, err)
	}

	logger.Debug().Str("backend", backend).Msg("store opened")
	return store.Instrument(s, backend, logger), nil
}
