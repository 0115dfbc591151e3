package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/paddlelab/leaguesync/internal/domain/match"
	"github.com/paddlelab/leaguesync/internal/domain/run"
	qb "github.com/paddlelab/leaguesync/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

const matchUpsertSuffix = `ON CONFLICT (match_date, home_team_name, away_team_name, league_id) DO UPDATE SET
	home_team_id = EXCLUDED.home_team_id,
	away_team_id = EXCLUDED.away_team_id,
	home_player_id = EXCLUDED.home_player_id,
	away_player_id = EXCLUDED.away_player_id,
	raw_score = EXCLUDED.raw_score,
	winner = EXCLUDED.winner
	RETURNING (xmax = 0)`

func (r *MatchRepository) UpsertBatch(ctx context.Context, results []match.Result) (run.BatchOutcome, error) {
	rows := make([]upsertRow, 0, len(results))
	for i, m := range results {
		insert := matchInsertModel{
			LeagueID:     m.LeagueID,
			MatchDate:    m.MatchDate,
			HomeTeamName: m.HomeTeamName,
			AwayTeamName: m.AwayTeamName,
			HomeTeamID:   int64PtrToNull(m.HomeTeamID),
			AwayTeamID:   int64PtrToNull(m.AwayTeamID),
			HomePlayerID: int64PtrToNull(m.HomePlayerID),
			AwayPlayerID: int64PtrToNull(m.AwayPlayerID),
			RawScore:     m.RawScore,
			Winner:       string(m.Winner),
		}

		query, args, err := qb.InsertModel("match_scores", insert, matchUpsertSuffix)
		if err != nil {
			return run.BatchOutcome{}, fmt.Errorf("build upsert match query: %w", err)
		}
		rows = append(rows, upsertRow{index: i, key: m.NaturalKey(), query: query, args: args})
	}

	return execUpsertBatch(ctx, r.db, rows)
}

// TeamAppearanceCounts tallies, per team, how often the player shows up in
// match history on either side.
const teamAppearanceQuery = `SELECT team_id, COUNT(*) AS cnt FROM (
	SELECT home_team_id AS team_id FROM match_scores WHERE home_player_id = $1 AND home_team_id IS NOT NULL
	UNION ALL
	SELECT away_team_id AS team_id FROM match_scores WHERE away_player_id = $1 AND away_team_id IS NOT NULL
) sides
GROUP BY team_id`

func (r *MatchRepository) TeamAppearanceCounts(ctx context.Context, playerID int64) (map[int64]int, error) {
	var rows []teamAppearanceRow
	if err := r.db.SelectContext(ctx, &rows, teamAppearanceQuery, playerID); err != nil {
		return nil, fmt.Errorf("count team appearances for player %d: %w", playerID, err)
	}

	out := make(map[int64]int, len(rows))
	for _, row := range rows {
		out[row.TeamID] = row.Count
	}

	return out, nil
}

const matchDuplicateQuery = `SELECT COALESCE(SUM(cnt - 1), 0) FROM (
	SELECT COUNT(*) AS cnt FROM match_scores
	WHERE league_id = $1
	GROUP BY match_date, home_team_name, away_team_name
	HAVING COUNT(*) > 1
) dup`

func (r *MatchRepository) DuplicateKeyCount(ctx context.Context, leagueID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, matchDuplicateQuery, leagueID); err != nil {
		return 0, fmt.Errorf("count duplicate match keys: %w", err)
	}
	return count, nil
}
