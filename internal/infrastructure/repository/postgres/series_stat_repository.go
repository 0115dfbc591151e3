package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/paddlelab/leaguesync/internal/domain/run"
	"github.com/paddlelab/leaguesync/internal/domain/seriesstat"
	qb "github.com/paddlelab/leaguesync/internal/platform/querybuilder"
)

type SeriesStatRepository struct {
	db *sqlx.DB
}

func NewSeriesStatRepository(db *sqlx.DB) *SeriesStatRepository {
	return &SeriesStatRepository{db: db}
}

const seriesStatUpsertSuffix = `ON CONFLICT (team_id, league_id) DO UPDATE SET
	series_id = EXCLUDED.series_id,
	points = EXCLUDED.points,
	wins = EXCLUDED.wins,
	losses = EXCLUDED.losses
	RETURNING (xmax = 0)`

func (r *SeriesStatRepository) UpsertBatch(ctx context.Context, stats []seriesstat.Stat) (run.BatchOutcome, error) {
	rows := make([]upsertRow, 0, len(stats))
	for i, s := range stats {
		insert := seriesStatInsertModel{
			LeagueID: s.LeagueID,
			SeriesID: s.SeriesID,
			TeamID:   s.TeamID,
			Points:   s.Points,
			Wins:     s.Wins,
			Losses:   s.Losses,
		}

		query, args, err := qb.InsertModel("series_stats", insert, seriesStatUpsertSuffix)
		if err != nil {
			return run.BatchOutcome{}, fmt.Errorf("build upsert series stat query: %w", err)
		}
		rows = append(rows, upsertRow{index: i, key: s.NaturalKey(), query: query, args: args})
	}

	return execUpsertBatch(ctx, r.db, rows)
}

const seriesStatDuplicateQuery = `SELECT COALESCE(SUM(cnt - 1), 0) FROM (
	SELECT COUNT(*) AS cnt FROM series_stats
	WHERE league_id = $1
	GROUP BY team_id
	HAVING COUNT(*) > 1
) dup`

func (r *SeriesStatRepository) DuplicateKeyCount(ctx context.Context, leagueID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, seriesStatDuplicateQuery, leagueID); err != nil {
		return 0, fmt.Errorf("count duplicate series stat keys: %w", err)
	}
	return count, nil
}
