package postgres

import (
	"database/sql"
	"time"
)

type matchInsertModel struct {
	LeagueID     int64         `db:"league_id"`
	MatchDate    time.Time     `db:"match_date"`
	HomeTeamName string        `db:"home_team_name"`
	AwayTeamName string        `db:"away_team_name"`
	HomeTeamID   sql.NullInt64 `db:"home_team_id"`
	AwayTeamID   sql.NullInt64 `db:"away_team_id"`
	HomePlayerID sql.NullInt64 `db:"home_player_id"`
	AwayPlayerID sql.NullInt64 `db:"away_player_id"`
	RawScore     string        `db:"raw_score"`
	Winner       string        `db:"winner"`
}

type teamAppearanceRow struct {
	TeamID int64 `db:"team_id"`
	Count  int   `db:"cnt"`
}
