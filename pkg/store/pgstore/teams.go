package pgstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Team is a row of the teams table, filled from the sports API.
type Team struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	CountryID *int64 `db:"country_id"`
}

// TeamRepository reads and writes the teams table.
type TeamRepository struct {
	db *sqlx.DB
}

// NewTeamRepository returns a repository on db.
func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// UpsertTeams inserts teams, replacing rows that share an ID.
func (r *TeamRepository) UpsertTeams(ctx context.Context, teams []Team) error {
	if len(teams) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, team := range teams {
		_, err := tx.NamedExecContext(ctx, `INSERT INTO teams (id, name, country_id)
			VALUES (:id, :name, :country_id)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, country_id = EXCLUDED.country_id`, team)
		if err != nil {
			return fmt.Errorf("upsert team %d: %w", team.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ListTeams returns all teams ordered by ID.
func (r *TeamRepository) ListTeams(ctx context.Context) ([]Team, error) {
	teams := []Team{}
	if err := r.db.SelectContext(ctx, &teams, `SELECT id, name, country_id FROM teams ORDER BY id`); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}
	return teams, nil
}
