package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/paddlelab/leaguesync/internal/domain/player"
	"github.com/paddlelab/leaguesync/internal/domain/run"
	qb "github.com/paddlelab/leaguesync/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

var playerSelectColumns = []string{
	"id",
	"external_id",
	"league_id",
	"club_id",
	"series_id",
	"team_id",
	"name",
	"rating",
	"active",
}

const playerUpsertSuffix = `ON CONFLICT (league_id, external_id) DO UPDATE SET
	club_id = EXCLUDED.club_id,
	series_id = EXCLUDED.series_id,
	team_id = EXCLUDED.team_id,
	name = EXCLUDED.name,
	rating = EXCLUDED.rating,
	active = EXCLUDED.active
	RETURNING (xmax = 0)`

func (r *PlayerRepository) UpsertBatch(ctx context.Context, players []player.Player) (run.BatchOutcome, error) {
	rows := make([]upsertRow, 0, len(players))
	for i, p := range players {
		insert := playerInsertModel{
			ExternalID: p.ExternalID,
			LeagueID:   p.LeagueID,
			ClubID:     p.ClubID,
			SeriesID:   p.SeriesID,
			TeamID:     int64PtrToNull(p.TeamID),
			Name:       p.Name,
			Rating:     p.Rating,
			Active:     p.Active,
		}

		query, args, err := qb.InsertModel("players", insert, playerUpsertSuffix)
		if err != nil {
			return run.BatchOutcome{}, fmt.Errorf("build upsert player query: %w", err)
		}
		rows = append(rows, upsertRow{index: i, key: p.ExternalID, query: query, args: args})
	}

	return execUpsertBatch(ctx, r.db, rows)
}

func (r *PlayerRepository) ListByLeague(ctx context.Context, leagueID int64) ([]player.Player, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list players by league: %w", err)
	}

	return playersFromRows(rows), nil
}

func (r *PlayerRepository) ListTeamlessWithMatches(ctx context.Context, leagueID int64) ([]player.Player, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("active", true),
			qb.IsNull("team_id"),
			qb.Expr("EXISTS (SELECT 1 FROM match_scores m WHERE m.home_player_id = players.id OR m.away_player_id = players.id)"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list teamless players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list teamless players with matches: %w", err)
	}

	return playersFromRows(rows), nil
}

func playersFromRows(rows []playerTableModel) []player.Player {
	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, player.Player{
			ID:         row.ID,
			ExternalID: row.ExternalID,
			LeagueID:   row.LeagueID,
			ClubID:     row.ClubID,
			SeriesID:   row.SeriesID,
			TeamID:     nullToInt64Ptr(row.TeamID),
			Name:       row.Name,
			Rating:     row.Rating,
			Active:     row.Active,
		})
	}
	return out
}

func (r *PlayerRepository) AssignTeam(ctx context.Context, playerID, teamID int64) error {
	query, args, err := qb.Update("players").
		Set("team_id", teamID).
		Where(qb.Eq("id", playerID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build assign player team query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("assign team %d to player %d: %w", teamID, playerID, err)
	}

	return nil
}
