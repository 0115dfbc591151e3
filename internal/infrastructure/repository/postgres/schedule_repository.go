package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/paddlelab/leaguesync/internal/domain/run"
	"github.com/paddlelab/leaguesync/internal/domain/schedule"
	qb "github.com/paddlelab/leaguesync/internal/platform/querybuilder"
)

type ScheduleRepository struct {
	db *sqlx.DB
}

func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleUpsertSuffix = `ON CONFLICT (match_date, home_team_name, away_team_name, league_id) DO UPDATE SET
	match_time = EXCLUDED.match_time,
	home_team_id = EXCLUDED.home_team_id,
	away_team_id = EXCLUDED.away_team_id,
	location = EXCLUDED.location
	RETURNING (xmax = 0)`

func (r *ScheduleRepository) UpsertBatch(ctx context.Context, entries []schedule.Entry) (run.BatchOutcome, error) {
	rows := make([]upsertRow, 0, len(entries))
	for i, e := range entries {
		insert := scheduleInsertModel{
			LeagueID:     e.LeagueID,
			MatchDate:    e.MatchDate,
			MatchTime:    e.MatchTime,
			HomeTeamName: e.HomeTeamName,
			AwayTeamName: e.AwayTeamName,
			HomeTeamID:   int64PtrToNull(e.HomeTeamID),
			AwayTeamID:   int64PtrToNull(e.AwayTeamID),
			Location:     e.Location,
		}

		query, args, err := qb.InsertModel("schedule", insert, scheduleUpsertSuffix)
		if err != nil {
			return run.BatchOutcome{}, fmt.Errorf("build upsert schedule query: %w", err)
		}
		rows = append(rows, upsertRow{index: i, key: e.NaturalKey(), query: query, args: args})
	}

	return execUpsertBatch(ctx, r.db, rows)
}

const scheduleDuplicateQuery = `SELECT COALESCE(SUM(cnt - 1), 0) FROM (
	SELECT COUNT(*) AS cnt FROM schedule
	WHERE league_id = $1
	GROUP BY match_date, home_team_name, away_team_name
	HAVING COUNT(*) > 1
) dup`

func (r *ScheduleRepository) DuplicateKeyCount(ctx context.Context, leagueID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, scheduleDuplicateQuery, leagueID); err != nil {
		return 0, fmt.Errorf("count duplicate schedule keys: %w", err)
	}
	return count, nil
}
