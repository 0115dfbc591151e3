package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	qb "github.com/paddlelab/leaguesync/internal/platform/querybuilder"
)

type ClubRepository struct {
	db *sqlx.DB
}

func NewClubRepository(db *sqlx.DB) *ClubRepository {
	return &ClubRepository{db: db}
}

// UpsertByName creates the club when absent and returns its id either way.
// The no-op DO UPDATE makes RETURNING yield the existing row, so concurrent
// callers racing on the same name all get the same id.
func (r *ClubRepository) UpsertByName(ctx context.Context, name string) (int64, error) {
	query, args, err := qb.InsertInto("clubs").
		Columns("name").
		Values(name).
		Suffix("ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build upsert club query: %w", err)
	}

	var id int64
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert club %q: %w", name, err)
	}

	return id, nil
}
