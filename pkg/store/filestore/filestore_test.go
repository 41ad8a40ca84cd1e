package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Sternrassler/foot-player/pkg/player"
	"github.com/Sternrassler/foot-player/pkg/store"
	"github.com/Sternrassler/foot-player/pkg/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "players.json"))
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return newTestStore(t)
	})
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	club := "PSG"
	rating := 91.0
	team := "France"

	tests := []struct {
		name    string
		players []player.Player
	}{
		{name: "empty", players: []player.Player{}},
		{name: "single", players: []player.Player{{ID: "a", Name: "Mbappe", Position: "FWD", Age: 25, Club: &club}}},
		{name: "many", players: []player.Player{
			{ID: "a", Name: "Mbappe", Position: "FWD", Age: 25, Club: &club, Rating: &rating, Team: &team},
			{ID: "b", Name: "Maignan", Position: "GK", Age: 28},
			{ID: "c", Name: "Saliba", Position: "DEF", Age: 23, Nationality: &team},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			ctx := context.Background()

			require.NoError(t, s.Save(ctx, tt.players))

			got, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.players, got)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope", "players.json"))

	players, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, players)
}

func TestLoad_EmptyFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("  \n"), 0o644))

	players, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, players)
}

func TestLoad_CorruptFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte(`[{"name": `), 0o644))

	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode players file")
}

func TestSave_WritesIndentedJSON(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(context.Background(), []player.Player{{ID: "a", Name: "Éric", Position: "FWD", Age: 30}}))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n        \"name\": \"Éric\"")
}

func TestSave_CreatesParentDirectory(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "data", "players.json"))
	require.NoError(t, s.Save(context.Background(), nil))

	_, err := os.Stat(s.Path())
	assert.NoError(t, err)
}

func TestDelete_ReducesSizeByOne(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, []player.Player{
		{ID: "a", Name: "A", Position: "GK", Age: 20},
		{ID: "b", Name: "B", Position: "DEF", Age: 21},
	}))

	require.NoError(t, s.Delete(ctx, "a"))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	err = s.Delete(ctx, "zzz")
	assert.ErrorIs(t, err, store.ErrNotFound)
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
