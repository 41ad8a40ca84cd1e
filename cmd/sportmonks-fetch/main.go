// Command sportmonks-fetch pulls the squads of a league season from the
// SportMonks API, writes them to CSV and renders summary charts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/foot-player/internal/config"
	"github.com/Sternrassler/foot-player/pkg/analysis"
	"github.com/Sternrassler/foot-player/pkg/client"
	"github.com/Sternrassler/foot-player/pkg/logging"
	"github.com/Sternrassler/foot-player/pkg/sportmonks"
	"github.com/Sternrassler/foot-player/pkg/store/pgstore"
)

type options struct {
	sportmonks.Options

	OutCSV   string
	PlotsDir string
	TopN     int

	// TeamsDB is a Postgres URL receiving the fetched teams; empty skips it.
	TeamsDB string
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("sportmonks-fetch", flag.ContinueOnError)
	fs.Int64Var(&opts.LeagueID, "league", 8, "league id")
	fs.Int64Var(&opts.SeasonID, "season", 21646, "season id")
	fs.IntVar(&opts.LimitTeams, "limit-teams", 0, "max teams to fetch (0 = all)")
	fs.IntVar(&opts.LimitPlayersPerTeam, "limit-players", 0, "max players per team (0 = all)")
	fs.BoolVar(&opts.WithStats, "stats", true, "fetch season statistics per player")
	fs.IntVar(&opts.Concurrency, "concurrency", 4, "squads fetched in parallel")
	fs.StringVar(&opts.OutCSV, "out", "players_api.csv", "CSV output path")
	fs.StringVar(&opts.PlotsDir, "plots", "plots_api", "chart output directory")
	fs.IntVar(&opts.TopN, "top", 15, "players in the top scorers chart")
	fs.StringVar(&opts.TeamsDB, "teams-db", "", "Postgres URL to upsert fetched teams into")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.LeagueID <= 0 || opts.SeasonID <= 0 {
		return options{}, errors.New("league and season must be positive")
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Setup(logging.DefaultConfig())
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Setup(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := cfg.Redis()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid Redis configuration")
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	api, err := client.New(cfg.ClientConfig(redisClient))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create SportMonks client")
	}
	defer api.Close()

	svc := sportmonks.NewService(api, logging.NewLogger("sportmonks"))
	if err := run(ctx, svc, opts, os.Stdout, logging.NewLogger("sportmonks-fetch")); err != nil {
		log.Fatal().Err(err).Msg("Fetch failed")
	}
}

func run(ctx context.Context, svc *sportmonks.Service, opts options, out io.Writer, logger zerolog.Logger) error {
	teams, err := svc.FetchTeams(ctx, opts.LeagueID, opts.SeasonID)
	if err != nil {
		return err
	}
	if opts.TeamsDB != "" {
		if err := syncTeams(ctx, teams, opts.TeamsDB, out); err != nil {
			return err
		}
	}

	rows, err := svc.BuildRowsForTeams(ctx, teams, opts.Options)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Rows: %d\n", len(rows))

	if err := writeCSV(opts.OutCSV, rows); err != nil {
		return err
	}
	fmt.Fprintf(out, "CSV saved: %s\n", opts.OutCSV)

	if len(rows) == 0 {
		fmt.Fprintln(out, "No rows, no charts")
		return nil
	}

	frame := sportmonks.Frame(rows)
	charts := []struct {
		name string
		draw func(path string) error
	}{
		{"top_scorers.png", func(path string) error { return topScorersChart(frame, opts.TopN, path) }},
		{"minutes_by_position.png", func(path string) error { return minutesByPositionChart(frame, path) }},
	}
	for _, c := range charts {
		path := filepath.Join(opts.PlotsDir, c.name)
		if err := c.draw(path); err != nil {
			logger.Warn().Err(err).Str("chart", c.name).Msg("Chart skipped")
			continue
		}
		fmt.Fprintf(out, "Chart saved: %s\n", path)
	}
	return nil
}

func syncTeams(ctx context.Context, teams []sportmonks.Team, dsn string, out io.Writer) error {
	db, err := pgstore.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	rows := make([]pgstore.Team, 0, len(teams))
	for _, t := range teams {
		if t.ID == 0 {
			continue
		}
		rows = append(rows, pgstore.Team{ID: t.ID, Name: t.Name, CountryID: t.CountryID})
	}
	if err := pgstore.NewTeamRepository(db.DB()).UpsertTeams(ctx, rows); err != nil {
		return err
	}
	fmt.Fprintf(out, "Teams stored: %d\n", len(rows))
	return nil
}

func writeCSV(path string, rows []sportmonks.PlayerRow) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := sportmonks.WriteRowsCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func topScorersChart(frame *analysis.Frame, n int, path string) error {
	top, err := analysis.TopN(frame, "goals", n, "player_name", "goals")
	if err != nil {
		return err
	}
	names, err := top.Column("player_name")
	if err != nil {
		return err
	}
	goals, err := top.Floats("goals")
	if err != nil {
		return err
	}
	return analysis.BarChart(names, goals, fmt.Sprintf("Top %d scorers", n), "player", "goals", path)
}

func minutesByPositionChart(frame *analysis.Frame, path string) error {
	sums, err := analysis.SumByGroup(frame, "position", "minutes")
	if err != nil {
		return err
	}
	labels := make([]string, len(sums))
	values := make([]float64, len(sums))
	for i, s := range sums {
		labels[i], values[i] = s.Group, s.Value
	}
	return analysis.BarChart(labels, values, "Minutes played by position", "position", "minutes", path)
}
