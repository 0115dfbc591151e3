package postgres

import (
	"database/sql"
	"time"
)

type scheduleInsertModel struct {
	LeagueID     int64         `db:"league_id"`
	MatchDate    time.Time     `db:"match_date"`
	MatchTime    string        `db:"match_time"`
	HomeTeamName string        `db:"home_team_name"`
	AwayTeamName string        `db:"away_team_name"`
	HomeTeamID   sql.NullInt64 `db:"home_team_id"`
	AwayTeamID   sql.NullInt64 `db:"away_team_id"`
	Location     string        `db:"location"`
}
