package store

import (
	"context"
	"errors"

	"github.com/Sternrassler/foot-player/pkg/player"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var storeOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "player_store_operations_total",
	Help: "Player store operations by backend, operation and result",
}, []string{"backend", "op", "result"})

// Instrumented wraps a Store with metrics and structured logging.
type Instrumented struct {
	next    Store
	backend string
	logger  zerolog.Logger
}

// Instrument wraps s. The backend name labels metrics and log lines.
func Instrument(s Store, backend string, logger zerolog.Logger) *Instrumented {
	return &Instrumented{
		next:    s,
		backend: backend,
		logger:  logger.With().Str("backend", backend).Logger(),
	}
}

// Unwrap returns the wrapped backend.
func (s *Instrumented) Unwrap() Store {
	return s.next
}

func (s *Instrumented) observe(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case errors.Is(err, ErrInvalid):
		result = "invalid"
	default:
		result = "error"
		s.logger.Error().Err(err).Str("op", op).Msg("Store operation failed")
	}
	storeOperationsTotal.WithLabelValues(s.backend, op, result).Inc()
}

func (s *Instrumented) Create(ctx context.Context, p player.Player) (player.Player, error) {
	created, err := s.next.Create(ctx, p)
	s.observe("create", err)
	if err == nil {
		s.logger.Info().Str("player_id", created.ID).Msg("Player created")
	}
	return created, err
}

func (s *Instrumented) List(ctx context.Context) ([]player.Player, error) {
	players, err := s.next.List(ctx)
	s.observe("list", err)
	if err == nil {
		s.logger.Debug().Int("records", len(players)).Msg("Players listed")
	}
	return players, err
}

func (s *Instrumented) Get(ctx context.Context, id string) (player.Player, error) {
	p, err := s.next.Get(ctx, id)
	s.observe("get", err)
	return p, err
}

func (s *Instrumented) Update(ctx context.Context, id string, patch player.Patch) (player.Player, error) {
	updated, err := s.next.Update(ctx, id, patch)
	s.observe("update", err)
	if err == nil {
		s.logger.Info().Str("player_id", id).Msg("Player updated")
	}
	return updated, err
}

func (s *Instrumented) Delete(ctx context.Context, id string) error {
	err := s.next.Delete(ctx, id)
	s.observe("delete", err)
	if err == nil {
		s.logger.Info().Str("player_id", id).Msg("Player deleted")
	}
	return err
}

func (s *Instrumented) Close() error {
	return s.next.Close()
}
