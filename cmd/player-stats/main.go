// Command player-stats cleans a player CSV export, prints summary
// statistics and renders charts.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/foot-player/internal/config"
	"github.com/Sternrassler/foot-player/pkg/analysis"
	"github.com/Sternrassler/foot-player/pkg/logging"
)

type options struct {
	In       string
	OutCSV   string
	PlotsDir string

	// Role keeps only rows whose role_type matches when that column exists.
	Role string

	Top int
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("player-stats", flag.ContinueOnError)
	fs.StringVar(&opts.In, "in", "players_final.csv", "input CSV")
	fs.StringVar(&opts.OutCSV, "out", "players_clean.csv", "cleaned CSV output")
	fs.StringVar(&opts.PlotsDir, "plots", "plots", "chart output directory")
	fs.StringVar(&opts.Role, "role", "football", "role_type to keep")
	fs.IntVar(&opts.Top, "top", 10, "bars in the team and position charts")
	if err := fs.Parse(args); err != nil {
		return options{}, err
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

	if err := run(opts, os.Stdout, logging.NewLogger("player-stats")); err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}
}

// run fails only when the input cannot be read or the cleaned CSV cannot
// be written. Steps that need a missing column are skipped with a warning.
func run(opts options, out io.Writer, logger zerolog.Logger) error {
	fmt.Fprintf(out, "Reading %s\n", opts.In)
	raw, err := analysis.LoadCSV(opts.In)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Total rows: %d\n", raw.Len())

	frame := analysis.Clean(raw)
	if frame.HasColumn("role_type") && opts.Role != "" {
		frame, err = analysis.FilterEquals(frame, "role_type", opts.Role)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Players with role %s: %d\n", opts.Role, frame.Len())
	}

	skip := func(step string, err error) {
		logger.Warn().Err(err).Str("step", step).Msg("Step skipped")
		fmt.Fprintf(out, "Skipping %s: %v\n", step, err)
	}

	fmt.Fprintf(out, "\nDataset: %d rows, %d columns\n", frame.Len(), len(frame.Columns()))
	fmt.Fprintf(out, "Columns: %s\n", strings.Join(frame.Columns(), ", "))

	if s, err := analysis.Describe(frame, "age"); err != nil {
		skip("age summary", err)
	} else {
		printSummary(out, "age", s)
	}

	if means, err := analysis.MeanByGroup(frame, "position", "age"); err != nil {
		skip("mean age by position", err)
	} else {
		fmt.Fprintln(out, "\nMean age by position:")
		for _, m := range means {
			fmt.Fprintf(out, "  %-20s %.2f\n", m.Group, m.Value)
		}
	}

	if counts, err := analysis.ValueCounts(frame, "position"); err != nil {
		skip("players per position", err)
	} else {
		fmt.Fprintln(out, "\nPlayers per position:")
		for _, c := range counts {
			fmt.Fprintf(out, "  %-20s %d\n", c.Value, c.N)
		}
	}

	if oldest, err := analysis.TopN(frame, "age", 5, "name", "age", "position", "club", "team"); err != nil {
		skip("oldest players", err)
	} else {
		fmt.Fprintln(out, "\nOldest players:")
		printRows(out, oldest)
	}

	if frame.HasColumn("goals") {
		if s, err := analysis.ScorerSummary(frame); err != nil {
			skip("scorer summary", err)
		} else {
			printScorers(out, s)
		}
	}

	if err := analysis.WriteCSV(frame, opts.OutCSV); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nCleaned CSV saved: %s\n", opts.OutCSV)

	if frame.Len() == 0 {
		fmt.Fprintln(out, "No rows, no charts")
		return nil
	}

	charts := []struct {
		name string
		draw func(path string) error
	}{
		{"players_by_team.png", func(path string) error {
			return countChart(frame, "team", opts.Top, "Top teams by number of players", path)
		}},
		{"age_histogram.png", func(path string) error {
			ages, err := frame.Floats("age")
			if err != nil {
				return err
			}
			return analysis.HistogramChart(ages, ageBins(ages), "Number of players per age", "age", path)
		}},
		{"players_by_position.png", func(path string) error {
			return countChart(frame, "position", opts.Top, "Top positions", path)
		}},
	}
	for _, c := range charts {
		path := filepath.Join(opts.PlotsDir, c.name)
		if err := c.draw(path); err != nil {
			skip(c.name, err)
			continue
		}
		fmt.Fprintf(out, "Chart saved: %s\n", path)
	}
	return nil
}

func printSummary(out io.Writer, column string, s analysis.Summary) {
	fmt.Fprintf(out, "\nSummary of %s:\n", column)
	for _, line := range []struct {
		label string
		value float64
	}{
		{"count", s.Count}, {"mean", s.Mean}, {"std", s.Std}, {"min", s.Min},
		{"25%", s.Q25}, {"50%", s.Q50}, {"75%", s.Q75}, {"max", s.Max},
	} {
		fmt.Fprintf(out, "  %-6s %s\n", line.label, strconv.FormatFloat(line.value, 'f', 2, 64))
	}
}

func printRows(out io.Writer, f *analysis.Frame) {
	fmt.Fprintf(out, "  %s\n", strings.Join(f.Columns(), " | "))
	for i := 0; i < f.Len(); i++ {
		fmt.Fprintf(out, "  %s\n", strings.Join(f.Row(i), " | "))
	}
}

func printScorers(out io.Writer, s analysis.ScorerStats) {
	fmt.Fprintln(out, "\nScorers:")
	fmt.Fprintf(out, "  total goals    %.0f\n", s.TotalGoals)
	fmt.Fprintf(out, "  average goals  %.2f\n", s.MeanGoals)
	fmt.Fprintf(out, "  max goals      %.0f\n", s.MaxGoals)
	fmt.Fprintf(out, "  total assists  %.0f\n", s.TotalAssists)
	fmt.Fprintf(out, "  average assists %.2f\n", s.MeanAssists)
	fmt.Fprintf(out, "  max assists    %.0f\n", s.MaxAssists)
	if s.BestScorer != "" {
		fmt.Fprintf(out, "  best scorer    %s\n", s.BestScorer)
	}
}

func countChart(frame *analysis.Frame, column string, top int, title, path string) error {
	counts, err := analysis.ValueCounts(frame, column)
	if err != nil {
		return err
	}
	if top > 0 && len(counts) > top {
		counts = counts[:top]
	}
	labels := make([]string, len(counts))
	values := make([]float64, len(counts))
	for i, c := range counts {
		labels[i], values[i] = c.Value, float64(c.N)
	}
	return analysis.BarChart(labels, values, title, column, "players", path)
}

// ageBins gives one bin per year of age.
func ageBins(ages []float64) int {
	if len(ages) == 0 {
		return 1
	}
	lo, hi := ages[0], ages[0]
	for _, a := range ages {
		lo, hi = min(lo, a), max(hi, a)
	}
	return max(int(hi-lo)+1, 1)
}
