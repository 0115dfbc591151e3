package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/paddlelab/leaguesync/internal/domain/orphanmap"
	qb "github.com/paddlelab/leaguesync/internal/platform/querybuilder"
)

type OrphanMappingRepository struct {
	db *sqlx.DB
}

func NewOrphanMappingRepository(db *sqlx.DB) *OrphanMappingRepository {
	return &OrphanMappingRepository{db: db}
}

// leagueDependentTables is the fixed set of tables carrying a league_id
// column. Scan and remap queries are built only from this list; caller input
// never reaches query text.
var leagueDependentTables = []string{
	"series",
	"series_leagues",
	"teams",
	"players",
	"schedule",
	"match_scores",
	"series_stats",
}

var orphanMappingSelectColumns = []string{
	"id",
	"orphan_league_id",
	"current_league_id",
	"version",
	"note",
}

func (r *OrphanMappingRepository) List(ctx context.Context) ([]orphanmap.Mapping, error) {
	query, args, err := qb.Select(orphanMappingSelectColumns...).From("orphan_mapping").
		OrderBy("orphan_league_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list orphan mappings query: %w", err)
	}

	var rows []orphanMappingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list orphan mappings: %w", err)
	}

	out := make([]orphanmap.Mapping, 0, len(rows))
	for _, row := range rows {
		out = append(out, orphanmap.Mapping{
			ID:              row.ID,
			OrphanLeagueID:  row.OrphanLeagueID,
			CurrentLeagueID: row.CurrentLeagueID,
			Version:         row.Version,
			Note:            row.Note.String,
		})
	}

	return out, nil
}

const orphanMappingUpsertSuffix = `ON CONFLICT (orphan_league_id) DO UPDATE SET
	current_league_id = EXCLUDED.current_league_id,
	version = EXCLUDED.version,
	note = EXCLUDED.note`

func (r *OrphanMappingRepository) Upsert(ctx context.Context, m orphanmap.Mapping) error {
	if err := m.Validate(); err != nil {
		return err
	}

	insert := orphanMappingInsertModel{
		OrphanLeagueID:  m.OrphanLeagueID,
		CurrentLeagueID: m.CurrentLeagueID,
		Version:         m.Version,
	}
	if m.Note != "" {
		insert.Note = sql.NullString{String: m.Note, Valid: true}
	}

	query, args, err := qb.InsertModel("orphan_mapping", insert, orphanMappingUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert orphan mapping query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert orphan mapping %d: %w", m.OrphanLeagueID, err)
	}

	return nil
}

func (r *OrphanMappingRepository) ScanOrphans(ctx context.Context) ([]orphanmap.OrphanRef, error) {
	var out []orphanmap.OrphanRef
	for _, table := range leagueDependentTables {
		query := fmt.Sprintf(`SELECT league_id, COUNT(*) AS cnt FROM %s
			WHERE league_id NOT IN (SELECT id FROM leagues)
			GROUP BY league_id`, table)

		var rows []struct {
			LeagueID int64 `db:"league_id"`
			Count    int   `db:"cnt"`
		}
		if err := r.db.SelectContext(ctx, &rows, query); err != nil {
			return nil, fmt.Errorf("scan orphans in %s: %w", table, err)
		}

		for _, row := range rows {
			out = append(out, orphanmap.OrphanRef{
				Table:    table,
				LeagueID: row.LeagueID,
				Rows:     row.Count,
			})
		}
	}

	return out, nil
}

func (r *OrphanMappingRepository) RemapLeague(ctx context.Context, table string, fromLeagueID, toLeagueID int64) (int, error) {
	if !isLeagueDependentTable(table) {
		return 0, fmt.Errorf("table %q is not remappable", table)
	}

	query, args, err := qb.Update(table).
		Set("league_id", toLeagueID).
		Where(qb.Eq("league_id", fromLeagueID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build remap league query for %s: %w", table, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("remap league %d to %d in %s: %w", fromLeagueID, toLeagueID, table, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("remap league rows affected: %w", err)
	}

	return int(affected), nil
}

func isLeagueDependentTable(table string) bool {
	for _, known := range leagueDependentTables {
		if known == table {
			return true
		}
	}
	return false
}
