package postgres

import "database/sql"

type playerTableModel struct {
	ID         int64         `db:"id"`
	ExternalID string        `db:"external_id"`
	LeagueID   int64         `db:"league_id"`
	ClubID     int64         `db:"club_id"`
	SeriesID   int64         `db:"series_id"`
	TeamID     sql.NullInt64 `db:"team_id"`
	Name       string        `db:"name"`
	Rating     float64       `db:"rating"`
	Active     bool          `db:"active"`
}

type playerInsertModel struct {
	ExternalID string        `db:"external_id"`
	LeagueID   int64         `db:"league_id"`
	ClubID     int64         `db:"club_id"`
	SeriesID   int64         `db:"series_id"`
	TeamID     sql.NullInt64 `db:"team_id"`
	Name       string        `db:"name"`
	Rating     float64       `db:"rating"`
	Active     bool          `db:"active"`
}
