package sportmonks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Sternrassler/foot-player/pkg/pagination"
	"github.com/rs/zerolog"
)

// PerPage is requested for every paginated listing.
const PerPage = 50

// API is the part of *client.Client the service needs.
type API interface {
	Iterate(ctx context.Context, resource string, params url.Values) *pagination.Iterator
	Open(ctx context.Context, req pagination.Request) *pagination.Iterator
	GetJSON(ctx context.Context, resource string, params url.Values, target any) error
}

// Service fetches and assembles SportMonks data.
type Service struct {
	api    API
	logger zerolog.Logger
}

// NewService returns a service on api.
func NewService(api API, logger zerolog.Logger) *Service {
	return &Service{api: api, logger: logger}
}

// Team is a team as listed for a league season.
type Team struct {
	ID        int64
	Name      string
	CountryID *int64
	Raw       Record
}

// TeamsRequest describes the /teams listing for a league season.
func TeamsRequest(leagueID, seasonID int64) pagination.Request {
	return pagination.Request{
		Path: "teams",
		Params: url.Values{
			"league_id": {strconv.FormatInt(leagueID, 10)},
			"season_id": {strconv.FormatInt(seasonID, 10)},
			"include":   {"country"},
			"per_page":  {strconv.Itoa(PerPage)},
		},
	}
}

// PlayersRequest describes the /players listing for a team season.
func PlayersRequest(teamID, seasonID int64) pagination.Request {
	return pagination.Request{
		Path: "players",
		Params: url.Values{
			"team_id":   {strconv.FormatInt(teamID, 10)},
			"season_id": {strconv.FormatInt(seasonID, 10)},
			"include":   {"position,team"},
			"per_page":  {strconv.Itoa(PerPage)},
		},
	}
}

// FetchTeams lists every team of a league season.
func (s *Service) FetchTeams(ctx context.Context, leagueID, seasonID int64) ([]Team, error) {
	req := TeamsRequest(leagueID, seasonID)
	raw, err := pagination.Collect(ctx, s.api.Iterate(ctx, req.Path, req.Params))
	if err != nil {
		return nil, fmt.Errorf("fetch teams: %w", err)
	}

	teams := make([]Team, 0, len(raw))
	for _, r := range raw {
		rec, err := DecodeRecord(r)
		if err != nil {
			return nil, fmt.Errorf("fetch teams: %w", err)
		}
		teams = append(teams, teamFromRecord(rec))
	}

	s.logger.Info().
		Int64("league_id", leagueID).
		Int64("season_id", seasonID).
		Int("records", len(teams)).
		Msg("Teams fetched")

	return teams, nil
}

func teamFromRecord(rec Record) Team {
	team := Team{ID: rec.Int("id"), Name: SafeName(rec), Raw: rec}
	if id := rec.Int("country_id"); id != 0 {
		team.CountryID = &id
	} else if country, ok := rec.Object("country"); ok {
		if id := country.Int("id"); id != 0 {
			team.CountryID = &id
		}
	}
	return team
}

// FetchPlayers lists the squad of a team for a season.
func (s *Service) FetchPlayers(ctx context.Context, teamID, seasonID int64) ([]Record, error) {
	req := PlayersRequest(teamID, seasonID)
	raw, err := pagination.Collect(ctx, s.api.Iterate(ctx, req.Path, req.Params))
	if err != nil {
		return nil, fmt.Errorf("fetch players of team %d: %w", teamID, err)
	}
	return decodeRecords(raw)
}

// FetchPlayerStats returns the data object of /players/{id} with its
// statistics for seasonID.
func (s *Service) FetchPlayerStats(ctx context.Context, playerID, seasonID int64) (Record, error) {
	params := url.Values{
		"include": {"statistics"},
		"filters": {fmt.Sprintf("season_id:%d", seasonID)},
	}

	var doc struct {
		Data Record `json:"data"`
	}
	if err := s.api.GetJSON(ctx, fmt.Sprintf("players/%d", playerID), params, &doc); err != nil {
		return nil, fmt.Errorf("fetch stats of player %d: %w", playerID, err)
	}
	if doc.Data == nil {
		return Record{}, nil
	}
	return doc.Data, nil
}

func decodeRecords(raw []json.RawMessage) ([]Record, error) {
	out := make([]Record, 0, len(raw))
	for _, r := range raw {
		rec, err := DecodeRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
