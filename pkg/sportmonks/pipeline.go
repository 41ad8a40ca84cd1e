package sportmonks

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Sternrassler/foot-player/pkg/pagination"
)

// Options controls BuildPlayerRows.
type Options struct {
	LeagueID int64
	SeasonID int64

	// LimitTeams and LimitPlayersPerTeam cap the work; 0 means no limit.
	LimitTeams          int
	LimitPlayersPerTeam int

	// WithStats fetches season statistics for every player.
	WithStats bool

	// Concurrency bounds how many team squads are fetched at once.
	Concurrency int
}

// PlayerRow is one flattened player line.
type PlayerRow struct {
	LeagueID    int64
	SeasonID    int64
	TeamID      int64
	TeamName    string
	PlayerID    int64
	PlayerName  string
	Position    string
	Appearances int64
	Minutes     int64
	Goals       int64
	Assists     int64
}

// BuildPlayerRows fetches the teams of a league season, their squads and
// optionally each player's statistics. A failed statistics lookup leaves
// the player with zero stats. Rows are sorted by team name, then position,
// then minutes descending.
func (s *Service) BuildPlayerRows(ctx context.Context, opts Options) ([]PlayerRow, error) {
	teams, err := s.FetchTeams(ctx, opts.LeagueID, opts.SeasonID)
	if err != nil {
		return nil, err
	}
	return s.BuildRowsForTeams(ctx, teams, opts)
}

// BuildRowsForTeams is BuildPlayerRows over already fetched teams.
func (s *Service) BuildRowsForTeams(ctx context.Context, teams []Team, opts Options) ([]PlayerRow, error) {
	start := time.Now()

	if opts.LimitTeams > 0 && len(teams) > opts.LimitTeams {
		teams = teams[:opts.LimitTeams]
	}

	kept := teams[:0:0]
	requests := make([]pagination.Request, 0, len(teams))
	for _, team := range teams {
		if team.ID == 0 {
			continue
		}
		kept = append(kept, team)
		requests = append(requests, PlayersRequest(team.ID, opts.SeasonID))
	}

	squads, err := pagination.CollectAll(ctx, s.api.Open, requests, opts.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("fetch squads: %w", err)
	}

	var rows []PlayerRow
	for i, squad := range squads {
		team := kept[i]

		players, err := decodeRecords(squad.Records)
		if err != nil {
			return nil, fmt.Errorf("decode squad of team %d: %w", team.ID, err)
		}
		if opts.LimitPlayersPerTeam > 0 && len(players) > opts.LimitPlayersPerTeam {
			players = players[:opts.LimitPlayersPerTeam]
		}

		for _, p := range players {
			row := PlayerRow{
				LeagueID:   opts.LeagueID,
				SeasonID:   opts.SeasonID,
				TeamID:     team.ID,
				TeamName:   team.Name,
				PlayerID:   p.Int("id"),
				PlayerName: SafeName(p),
				Position:   NormalizePosition(p),
			}

			if opts.WithStats && row.PlayerID != 0 {
				stats, err := s.playerStats(ctx, row.PlayerID, opts.SeasonID)
				if err != nil {
					return nil, err
				}
				row.Appearances = stats.Appearances
				row.Minutes = stats.Minutes
				row.Goals = stats.Goals
				row.Assists = stats.Assists
			}

			rows = append(rows, row)
		}
	}

	SortRows(rows)

	s.logger.Info().
		Int("teams", len(kept)).
		Int("records", len(rows)).
		Dur("duration", time.Since(start)).
		Msg("Player rows built")

	return rows, nil
}

// playerStats only fails when ctx is done; other errors yield zero stats.
func (s *Service) playerStats(ctx context.Context, playerID, seasonID int64) (Stats, error) {
	full, err := s.FetchPlayerStats(ctx, playerID, seasonID)
	if err != nil {
		if ctx.Err() != nil {
			return Stats{}, ctx.Err()
		}
		s.logger.Warn().
			Err(err).
			Int64("player_id", playerID).
			Msg("Player statistics unavailable, keeping zero stats")
		return Stats{}, nil
	}
	return ExtractBasicStats(full), nil
}

// SortRows orders rows by team name and position ascending, then minutes
// descending.
func SortRows(rows []PlayerRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.TeamName != b.TeamName {
			return a.TeamName < b.TeamName
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.Minutes > b.Minutes
	})
}
