// Package pgstore keeps players (and synced teams) in Postgres using sqlx
// and the lib/pq driver. Schema changes are applied with golang-migrate.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Sternrassler/foot-player/pkg/player"
	"github.com/Sternrassler/foot-player/pkg/store"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const playerColumns = "id, name, position, age, club, nationality, rating, team"

// uniqueViolation is the Postgres SQLSTATE for duplicate keys.
const uniqueViolation = "23505"

// Store is a store.Store backed by the players table.
type Store struct {
	db *sqlx.DB
}

// Open connects to url, applies migrations and returns the store.
func Open(ctx context.Context, url string) (*Store, error) {
	if url == "" {
		return nil, fmt.Errorf("database url is required")
	}
	if err := Migrate(url); err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return New(db), nil
}

// New wraps an existing connection. The schema must already exist.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying pool (team sync shares it).
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Create implements store.Store.
func (s *Store) Create(ctx context.Context, p player.Player) (player.Player, error) {
	p, err := store.PrepareCreate(p)
	if err != nil {
		return player.Player{}, err
	}

	_, err = s.db.NamedExecContext(ctx, `INSERT INTO players (`+playerColumns+`)
		VALUES (:id, :name, :position, :age, :club, :nationality, :rating, :team)`, p)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return player.Player{}, fmt.Errorf("%w: %s", store.ErrDuplicateID, p.ID)
		}
		return player.Player{}, fmt.Errorf("insert player: %w", err)
	}
	return p, nil
}

// List implements store.Store.
func (s *Store) List(ctx context.Context) ([]player.Player, error) {
	players := []player.Player{}
	if err := s.db.SelectContext(ctx, &players, `SELECT `+playerColumns+` FROM players ORDER BY id`); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}
	return players, nil
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, id string) (player.Player, error) {
	return getPlayer(ctx, s.db, id, false)
}

func getPlayer(ctx context.Context, q sqlx.QueryerContext, id string, forUpdate bool) (player.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var p player.Player
	err := sqlx.GetContext(ctx, q, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return player.Player{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if err != nil {
		return player.Player{}, fmt.Errorf("select player: %w", err)
	}
	return p, nil
}

// Update implements store.Store. The read-modify-write runs in one
// transaction holding a row lock.
func (s *Store) Update(ctx context.Context, id string, patch player.Patch) (player.Player, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return player.Player{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	current, err := getPlayer(ctx, tx, id, true)
	if err != nil {
		return player.Player{}, err
	}
	updated, err := store.PrepareUpdate(current, patch)
	if err != nil {
		return player.Player{}, err
	}

	_, err = tx.NamedExecContext(ctx, `UPDATE players SET
		name = :name, position = :position, age = :age, club = :club,
		nationality = :nationality, rating = :rating, team = :team
		WHERE id = :id`, updated)
	if err != nil {
		return player.Player{}, fmt.Errorf("update player: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return player.Player{}, fmt.Errorf("commit tx: %w", err)
	}
	return updated, nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete player rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	return s.db.Close()
}
