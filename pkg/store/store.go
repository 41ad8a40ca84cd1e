// Package store defines the player record store shared by the file, Postgres
// and Badger backends.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sternrassler/foot-player/pkg/player"
)

var (
	// ErrNotFound is returned when no player carries the requested identity.
	ErrNotFound = errors.New("player not found")

	// ErrInvalid wraps validation failures of incoming records.
	ErrInvalid = errors.New("invalid player")

	// ErrDuplicateID is returned when creating a player whose ID already exists.
	ErrDuplicateID = errors.New("player id already exists")
)

// Store persists Player records behind a swappable backend.
type Store interface {
	// Create validates p, assigns an ID when empty and persists it.
	Create(ctx context.Context, p player.Player) (player.Player, error)

	// List returns every stored player in backend order.
	List(ctx context.Context) ([]player.Player, error)

	// Get returns the player with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (player.Player, error)

	// Update applies patch to the player with the given ID.
	Update(ctx context.Context, id string, patch player.Patch) (player.Player, error)

	// Delete removes the player with the given ID or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// PrepareCreate normalizes and validates a record for insertion and assigns
// a new ID when none is set.
func PrepareCreate(p player.Player) (player.Player, error) {
	p = p.Normalize()
	if p.ID == "" {
		p.ID = player.NewID()
	}
	if err := p.Validate(); err != nil {
		return player.Player{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return p, nil
}

// PrepareUpdate applies patch to current and validates the result.
func PrepareUpdate(current player.Player, patch player.Patch) (player.Player, error) {
	if patch.IsEmpty() {
		return player.Player{}, fmt.Errorf("%w: %v", ErrInvalid, player.ErrEmptyPatch)
	}
	updated := patch.Apply(current)
	if err := updated.Validate(); err != nil {
		return player.Player{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return updated, nil
}
