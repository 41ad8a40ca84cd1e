// Package filestore keeps players as a JSON array in a single file. The file
// is read on every call and rewritten atomically on every mutation, so
// several processes may share it between calls.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Sternrassler/foot-player/pkg/player"
	"github.com/Sternrassler/foot-player/pkg/store"
)

// DefaultPath is the players file used when none is configured.
const DefaultPath = "players.json"

// Store is a store.Store backed by a JSON file.
type Store struct {
	path string
	mu   sync.Mutex
}

// New returns a file store for path. The file is created on first write.
func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads every player from disk. A missing file is an empty list.
func (s *Store) Load(ctx context.Context) ([]player.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save replaces the file content with players.
func (s *Store) Save(ctx context.Context, players []player.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, players)
}

func (s *Store) load(ctx context.Context) ([]player.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []player.Player{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read players file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []player.Player{}, nil
	}

	var players []player.Player
	if err := json.Unmarshal(data, &players); err != nil {
		return nil, fmt.Errorf("decode players file %s: %w", s.path, err)
	}
	if players == nil {
		players = []player.Player{}
	}
	return players, nil
}

func (s *Store) save(ctx context.Context, players []player.Player) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if players == nil {
		players = []player.Player{}
	}

	data, err := json.MarshalIndent(players, "", "    ")
	if err != nil {
		return fmt.Errorf("encode players: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create players dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".players-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace players file: %w", err)
	}
	return nil
}

// Create implements store.Store.
func (s *Store) Create(ctx context.Context, p player.Player) (player.Player, error) {
	p, err := store.PrepareCreate(p)
	if err != nil {
		return player.Player{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	players, err := s.load(ctx)
	if err != nil {
		return player.Player{}, err
	}
	if indexOf(players, p.ID) >= 0 {
		return player.Player{}, fmt.Errorf("%w: %s", store.ErrDuplicateID, p.ID)
	}

	players = append(players, p)
	if err := s.save(ctx, players); err != nil {
		return player.Player{}, err
	}
	return p, nil
}

// List implements store.Store.
func (s *Store) List(ctx context.Context) ([]player.Player, error) {
	return s.Load(ctx)
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, id string) (player.Player, error) {
	players, err := s.Load(ctx)
	if err != nil {
		return player.Player{}, err
	}
	i := indexOf(players, id)
	if i < 0 {
		return player.Player{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return players[i], nil
}

// Update implements store.Store.
func (s *Store) Update(ctx context.Context, id string, patch player.Patch) (player.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	players, err := s.load(ctx)
	if err != nil {
		return player.Player{}, err
	}
	i := indexOf(players, id)
	if i < 0 {
		return player.Player{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}

	updated, err := store.PrepareUpdate(players[i], patch)
	if err != nil {
		return player.Player{}, err
	}
	players[i] = updated
	if err := s.save(ctx, players); err != nil {
		return player.Player{}, err
	}
	return updated, nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	players, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(players, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}

	players = append(players[:i], players[i+1:]...)
	return s.save(ctx, players)
}

// Close implements store.Store. The file store holds no open handles.
func (s *Store) Close() error {
	return nil
}

func indexOf(players []player.Player, id string) int {
	for i, p := range players {
		if p.ID == id {
			return i
		}
	}
	return -1
}
