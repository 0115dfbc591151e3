package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/paddlelab/leaguesync/internal/domain/team"
	qb "github.com/paddlelab/leaguesync/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

var teamSelectColumns = []string{"id", "league_id", "series_id", "club_id", "name"}

func (r *TeamRepository) ListByLeague(ctx context.Context, leagueID int64) ([]team.Team, error) {
	query, args, err := qb.Select(teamSelectColumns...).From("teams").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list teams by league: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, team.Team{
			ID:       row.ID,
			LeagueID: row.LeagueID,
			SeriesID: row.SeriesID,
			ClubID:   row.ClubID,
			Name:     row.Name,
		})
	}

	return out, nil
}

func (r *TeamRepository) Create(ctx context.Context, t team.Team) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	insert := teamInsertModel{
		LeagueID: t.LeagueID,
		SeriesID: t.SeriesID,
		ClubID:   t.ClubID,
		Name:     t.Name,
	}

	query, args, err := qb.InsertModel("teams", insert, "RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build insert team query: %w", err)
	}

	var id int64
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert team %q: %w", t.Name, err)
	}

	return id, nil
}
