// Package badgerstore keeps players in an embedded Badger key-value store.
// Keys are "player/<id>"; since IDs are time-ordered, key order is creation
// order.
package badgerstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sternrassler/foot-player/pkg/player"
	"github.com/Sternrassler/foot-player/pkg/store"
	"github.com/bytedance/sonic"
	"github.com/dgraph-io/badger/v3"
)

var keyPrefix = []byte("player/")

// Config selects where the database lives.
type Config struct {
	// Dir is the on-disk directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps everything in RAM (tests, throwaway runs).
	InMemory bool
}

// Store is a store.Store backed by Badger.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the Badger database described by cfg.
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Dir == "" {
			return nil, fmt.Errorf("badger dir is required")
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db}, nil
}

func playerKey(id string) []byte {
	return append(append([]byte{}, keyPrefix...), id...)
}

func getPlayer(txn *badger.Txn, id string) (player.Player, error) {
	item, err := txn.Get(playerKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return player.Player{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if err != nil {
		return player.Player{}, fmt.Errorf("badger get: %w", err)
	}

	var p player.Player
	err = item.Value(func(val []byte) error {
		return sonic.Unmarshal(val, &p)
	})
	if err != nil {
		return player.Player{}, fmt.Errorf("decode player %s: %w", id, err)
	}
	return p, nil
}

func putPlayer(txn *badger.Txn, p player.Player) error {
	data, err := sonic.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode player: %w", err)
	}
	if err := txn.Set(playerKey(p.ID), data); err != nil {
		return fmt.Errorf("badger set: %w", err)
	}
	return nil
}

// Create implements store.Store.
func (s *Store) Create(ctx context.Context, p player.Player) (player.Player, error) {
	if err := ctx.Err(); err != nil {
		return player.Player{}, err
	}
	p, err := store.PrepareCreate(p)
	if err != nil {
		return player.Player{}, err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(playerKey(p.ID))
		if err == nil {
			return fmt.Errorf("%w: %s", store.ErrDuplicateID, p.ID)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("badger get: %w", err)
		}
		return putPlayer(txn, p)
	})
	if err != nil {
		return player.Player{}, err
	}
	return p, nil
}

// List implements store.Store.
func (s *Store) List(ctx context.Context) ([]player.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	players := []player.Player{}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(keyPrefix); it.ValidForPrefix(keyPrefix); it.Next() {
			var p player.Player
			if err := it.Item().Value(func(val []byte) error {
				return sonic.Unmarshal(val, &p)
			}); err != nil {
				return fmt.Errorf("decode player %s: %w", it.Item().Key(), err)
			}
			players = append(players, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return players, nil
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, id string) (player.Player, error) {
	if err := ctx.Err(); err != nil {
		return player.Player{}, err
	}

	var p player.Player
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		p, err = getPlayer(txn, id)
		return err
	})
	return p, err
}

// Update implements store.Store.
func (s *Store) Update(ctx context.Context, id string, patch player.Patch) (player.Player, error) {
	if err := ctx.Err(); err != nil {
		return player.Player{}, err
	}

	var updated player.Player
	err := s.db.Update(func(txn *badger.Txn) error {
		current, err := getPlayer(txn, id)
		if err != nil {
			return err
		}
		updated, err = store.PrepareUpdate(current, patch)
		if err != nil {
			return err
		}
		return putPlayer(txn, updated)
	})
	if err != nil {
		return player.Player{}, err
	}
	return updated, nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := getPlayer(txn, id); err != nil {
			return err
		}
		if err := txn.Delete(playerKey(id)); err != nil {
			return fmt.Errorf("badger delete: %w", err)
		}
		return nil
	})
}

// Close implements store.Store.
func (s *Store) Close() error {
	return s.db.Close()
}
