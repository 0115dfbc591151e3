package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/paddlelab/leaguesync/internal/domain/series"
	qb "github.com/paddlelab/leaguesync/internal/platform/querybuilder"
)

type SeriesRepository struct {
	db *sqlx.DB
}

func NewSeriesRepository(db *sqlx.DB) *SeriesRepository {
	return &SeriesRepository{db: db}
}

var seriesSelectColumns = []string{"id", "league_id", "name", "display_name"}

func (r *SeriesRepository) ListByLeague(ctx context.Context, leagueID int64) ([]series.Series, error) {
	query, args, err := qb.Select(seriesSelectColumns...).From("series").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list series query: %w", err)
	}

	var rows []seriesTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list series by league: %w", err)
	}

	out := make([]series.Series, 0, len(rows))
	for _, row := range rows {
		out = append(out, series.Series{
			ID:          row.ID,
			LeagueID:    row.LeagueID,
			Name:        row.Name,
			DisplayName: row.DisplayName.String,
		})
	}

	return out, nil
}

// Create inserts the series row and its series_leagues link in one
// transaction.
func (r *SeriesRepository) Create(ctx context.Context, s series.Series) (int64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx create series: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insert := seriesInsertModel{
		LeagueID: s.LeagueID,
		Name:     s.Name,
	}
	if s.DisplayName != "" {
		insert.DisplayName = sql.NullString{String: s.DisplayName, Valid: true}
	}

	query, args, err := qb.InsertModel("series", insert, "RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build insert series query: %w", err)
	}

	var id int64
	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert series %q: %w", s.Name, err)
	}

	linkQuery, linkArgs, err := qb.InsertInto("series_leagues").
		Columns("series_id", "league_id").
		Values(id, s.LeagueID).
		Suffix("ON CONFLICT DO NOTHING").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert series league link query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, linkQuery, linkArgs...); err != nil {
		return 0, fmt.Errorf("insert series league link: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create series: %w", err)
	}

	return id, nil
}

func (r *SeriesRepository) Rename(ctx context.Context, seriesID int64, name string) error {
	query, args, err := qb.Update("series").
		Set("name", name).
		Where(qb.Eq("id", seriesID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build rename series query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("rename series %d: %w", seriesID, err)
	}

	return nil
}

// UsageCounts returns per-series player and team counts for one league.
func (r *SeriesRepository) UsageCounts(ctx context.Context, leagueID int64) (map[int64]series.Usage, error) {
	out := map[int64]series.Usage{}

	for _, table := range []string{"players", "teams"} {
		query, args, err := qb.Select("series_id", "COUNT(*) AS cnt").From(table).
			Where(qb.Eq("league_id", leagueID)).
			GroupBy("series_id").
			ToSQL()
		if err != nil {
			return nil, fmt.Errorf("build series usage query for %s: %w", table, err)
		}

		var rows []seriesUsageRow
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, fmt.Errorf("count series usage in %s: %w", table, err)
		}

		for _, row := range rows {
			usage := out[row.SeriesID]
			if table == "players" {
				usage.Players = row.Count
			} else {
				usage.Teams = row.Count
			}
			out[row.SeriesID] = usage
		}
	}

	return out, nil
}

// Merge repoints every row referencing duplicateID to survivorID, then
// removes the duplicate's league links and the duplicate series row, all in
// one transaction. Link rows are copied with DO NOTHING first so the survivor
// keeps every league membership the duplicate had.
func (r *SeriesRepository) Merge(ctx context.Context, leagueID, survivorID, duplicateID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx merge series: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, table := range []string{"players", "teams", "series_stats"} {
		query, args, err := qb.Update(table).
			Set("series_id", survivorID).
			Where(
				qb.Eq("series_id", duplicateID),
				qb.Eq("league_id", leagueID),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build repoint %s query: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("repoint %s from series %d to %d: %w", table, duplicateID, survivorID, err)
		}
	}

	copyLinks := `INSERT INTO series_leagues (series_id, league_id)
		SELECT $1, league_id FROM series_leagues WHERE series_id = $2
		ON CONFLICT DO NOTHING`
	if _, err := tx.ExecContext(ctx, copyLinks, survivorID, duplicateID); err != nil {
		return fmt.Errorf("copy series league links: %w", err)
	}

	deleteLinks, deleteLinkArgs, err := qb.DeleteFrom("series_leagues").
		Where(qb.Eq("series_id", duplicateID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete series league links query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteLinks, deleteLinkArgs...); err != nil {
		return fmt.Errorf("delete duplicate series league links: %w", err)
	}

	deleteSeries, deleteSeriesArgs, err := qb.DeleteFrom("series").
		Where(qb.Eq("id", duplicateID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete series query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteSeries, deleteSeriesArgs...); err != nil {
		return fmt.Errorf("delete duplicate series %d: %w", duplicateID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit merge series: %w", err)
	}

	return nil
}
