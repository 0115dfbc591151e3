package postgres

type seriesStatInsertModel struct {
	LeagueID int64 `db:"league_id"`
	SeriesID int64 `db:"series_id"`
	TeamID   int64 `db:"team_id"`
	Points   int   `db:"points"`
	Wins     int   `db:"wins"`
	Losses   int   `db:"losses"`
}
