// Command player-manager runs the interactive player menu over the
// configured store backend.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/foot-player/internal/cli"
	"github.com/Sternrassler/foot-player/internal/config"
	"github.com/Sternrassler/foot-player/pkg/logging"
	"github.com/Sternrassler/foot-player/pkg/store/backends"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup(logging.DefaultConfig())
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Setup(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := backends.Open(ctx, cfg.Store, logging.NewLogger("store"))
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("Failed to open store")
	}
	defer s.Close()

	menu := cli.New(s, os.Stdin, os.Stdout, cli.WithLogger(logging.NewLogger("menu")))
	if err := menu.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Menu stopped")
	}
}
