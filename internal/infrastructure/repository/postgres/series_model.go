package postgres

import "database/sql"

type seriesTableModel struct {
	ID          int64          `db:"id"`
	LeagueID    int64          `db:"league_id"`
	Name        string         `db:"name"`
	DisplayName sql.NullString `db:"display_name"`
}

type seriesInsertModel struct {
	LeagueID    int64          `db:"league_id"`
	Name        string         `db:"name"`
	DisplayName sql.NullString `db:"display_name"`
}

type seriesUsageRow struct {
	SeriesID int64 `db:"series_id"`
	Count    int   `db:"cnt"`
}
