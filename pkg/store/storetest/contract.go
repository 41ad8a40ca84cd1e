// Package storetest holds the behaviour every store.Store backend must share.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/Sternrassler/foot-player/pkg/player"
	"github.com/Sternrassler/foot-player/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store. Cleanup is registered on t by the factory.
type Factory func(t *testing.T) store.Store

func ptr[T any](v T) *T { return &v }

// Sample returns a valid player without ID.
func Sample(name string) player.Player {
	return player.Player{
		Name:     name,
		Position: "MID",
		Age:      27,
		Club:     ptr("Olympique Lyonnais"),
	}
}

// Run executes the shared contract against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("empty store lists nothing", func(t *testing.T) {
		s := newStore(t)
		players, err := s.List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, players)
	})

	t.Run("create assigns id and persists", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.Create(ctx, Sample("Zidane"))
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)

		got, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("create keeps explicit id and rejects duplicates", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		p := Sample("Henry")
		p.ID = "fixed-id"
		created, err := s.Create(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, "fixed-id", created.ID)

		_, err = s.Create(ctx, p)
		assert.ErrorIs(t, err, store.ErrDuplicateID)
	})

	t.Run("create rejects invalid record", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Create(ctx, player.Player{Name: "", Position: "GK", Age: 30})
		assert.ErrorIs(t, err, store.ErrInvalid)

		players, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, players)
	})

	t.Run("list keeps creation order", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		names := []string{"Platini", "Kopa", "Papin", "Cantona"}
		for _, n := range names {
			_, err := s.Create(ctx, Sample(n))
			require.NoError(t, err)
		}

		players, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, players, len(names))
		for i, p := range players {
			assert.Equal(t, names[i], p.Name)
		}
	})

	t.Run("update applies patch", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.Create(ctx, Sample("Griezmann"))
		require.NoError(t, err)

		updated, err := s.Update(ctx, created.ID, player.Patch{Age: ptr(33), Club: ptr("Atletico Madrid"), Rating: ptr(86.5)})
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, 33, updated.Age)
		assert.Equal(t, "Atletico Madrid", *updated.Club)
		assert.Equal(t, 86.5, *updated.Rating)

		got, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, got)
	})

	t.Run("update rejects empty and invalid patch", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.Create(ctx, Sample("Kante"))
		require.NoError(t, err)

		_, err = s.Update(ctx, created.ID, player.Patch{})
		assert.ErrorIs(t, err, store.ErrInvalid)

		_, err = s.Update(ctx, created.ID, player.Patch{Age: ptr(-4)})
		assert.ErrorIs(t, err, store.ErrInvalid)

		got, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("unknown id is a lookup failure", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Create(ctx, Sample("Thuram"))
		require.NoError(t, err)

		_, err = s.Get(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)

		_, err = s.Update(ctx, "missing", player.Patch{Age: ptr(30)})
		assert.ErrorIs(t, err, store.ErrNotFound)

		err = s.Delete(ctx, "missing")
		assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)

		players, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, players, 1, "store must be unchanged")
	})

	t.Run("delete removes exactly one record", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a, err := s.Create(ctx, Sample("Lloris"))
		require.NoError(t, err)
		b, err := s.Create(ctx, Sample("Varane"))
		require.NoError(t, err)
		c, err := s.Create(ctx, Sample("Pogba"))
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, b.ID))

		players, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, players, 2)
		assert.Equal(t, a.ID, players[0].ID)
		assert.Equal(t, c.ID, players[1].ID)

		_, err = s.Get(ctx, b.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
