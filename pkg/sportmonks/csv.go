package sportmonks

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Sternrassler/foot-player/pkg/analysis"
)

// Header is the CSV column order of a PlayerRow.
var Header = []string{
	"league_id", "season_id", "team_id", "team_name",
	"player_id", "player_name", "position",
	"appearances", "minutes", "goals", "assists",
}

// Strings renders r in Header order.
func (r PlayerRow) Strings() []string {
	itoa := func(n int64) string { return strconv.FormatInt(n, 10) }
	return []string{
		itoa(r.LeagueID), itoa(r.SeasonID), itoa(r.TeamID), r.TeamName,
		itoa(r.PlayerID), r.PlayerName, r.Position,
		itoa(r.Appearances), itoa(r.Minutes), itoa(r.Goals), itoa(r.Assists),
	}
}

// WriteRowsCSV writes a header line and one line per row.
func WriteRowsCSV(w io.Writer, rows []PlayerRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.Strings()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Frame converts rows into an analysis frame with Header columns.
func Frame(rows []PlayerRow) *analysis.Frame {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = r.Strings()
	}
	return analysis.NewFrame(Header, records)
}
