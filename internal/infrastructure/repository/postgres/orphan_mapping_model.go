package postgres

import "database/sql"

type orphanMappingTableModel struct {
	ID              int64          `db:"id"`
	OrphanLeagueID  int64          `db:"orphan_league_id"`
	CurrentLeagueID int64          `db:"current_league_id"`
	Version         int            `db:"version"`
	Note            sql.NullString `db:"note"`
}

type orphanMappingInsertModel struct {
	OrphanLeagueID  int64          `db:"orphan_league_id"`
	CurrentLeagueID int64          `db:"current_league_id"`
	Version         int            `db:"version"`
	Note            sql.NullString `db:"note"`
}
