package postgres

type teamTableModel struct {
	ID       int64  `db:"id"`
	LeagueID int64  `db:"league_id"`
	SeriesID int64  `db:"series_id"`
	ClubID   int64  `db:"club_id"`
	Name     string `db:"name"`
}

type teamInsertModel struct {
	LeagueID int64  `db:"league_id"`
	SeriesID int64  `db:"series_id"`
	ClubID   int64  `db:"club_id"`
	Name     string `db:"name"`
}
