package sportmonks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(t *testing.T, s string) Record {
	t.Helper()
	r, err := DecodeRecord(json.RawMessage(s))
	require.NoError(t, err)
	return r
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		json string
		want string
	}{
		{`{"name":" Olympique Lyonnais "}`, "Olympique Lyonnais"},
		{`{"name":null,"display_name":"A. Lacazette"}`, "A. Lacazette"},
		{`{"fullname":"Alexandre Lacazette"}`, "Alexandre Lacazette"},
		{`{"common_name":"Laca"}`, "Laca"},
		{`{"id":1}`, "Unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeName(rec(t, tt.json)), tt.json)
	}
}

func TestNormalizePosition(t *testing.T) {
	tests := []struct {
		json string
		want string
	}{
		{`{"position":{"id":27,"name":"Attacker"}}`, "Attacker"},
		{`{"position_name":"Midfielder"}`, "Midfielder"},
		{`{"position":"Defender "}`, "Defender"},
		{`{"role":"Goalkeeper"}`, "Goalkeeper"},
		{`{"position":{"id":27},"detailed_position":{"name":"Centre Forward"}}`, "Centre Forward"},
		{`{"position":{"name":""}}`, "Unknown"},
		{`{}`, "Unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePosition(rec(t, tt.json)), tt.json)
	}
}

func TestExtractBasicStats(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Stats
	}{
		{
			name: "list takes first entry",
			json: `{"statistics":[{"appearances":30,"minutes":2450,"goals":14,"assists":5},{"goals":99}]}`,
			want: Stats{Appearances: 30, Minutes: 2450, Goals: 14, Assists: 5},
		},
		{
			name: "alternative keys",
			json: `{"statistics":[{"matches_played":"12","minutes_played":900.0,"goals_scored":3}]}`,
			want: Stats{Appearances: 12, Minutes: 900, Goals: 3},
		},
		{
			name: "object",
			json: `{"statistics":{"minutes":90,"goals":1,"assists":2,"appearances":1}}`,
			want: Stats{Appearances: 1, Minutes: 90, Goals: 1, Assists: 2},
		},
		{
			name: "wrapped data list",
			json: `{"statistics":{"data":[{"minutes":450,"goals":2}]}}`,
			want: Stats{Minutes: 450, Goals: 2},
		},
		{name: "empty list", json: `{"statistics":[]}`},
		{name: "missing", json: `{"id":7}`},
		{name: "garbage values", json: `{"statistics":[{"goals":"n/a","minutes":null}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractBasicStats(rec(t, tt.json)))
		})
	}
}

func TestTeamFromRecord(t *testing.T) {
	team := teamFromRecord(rec(t, `{"id":79,"name":"Lyon","country":{"id":17,"name":"France"}}`))
	assert.Equal(t, int64(79), team.ID)
	assert.Equal(t, "Lyon", team.Name)
	require.NotNil(t, team.CountryID)
	assert.Equal(t, int64(17), *team.CountryID)

	team = teamFromRecord(rec(t, `{"id":80,"name":"Nantes","country_id":17}`))
	require.NotNil(t, team.CountryID)
	assert.Equal(t, int64(17), *team.CountryID)

	team = teamFromRecord(rec(t, `{"id":81,"name":"Unknown FC"}`))
	assert.Nil(t, team.CountryID)
}
