package schedule

import (
	"fmt"
	"time"
)

// Entry is a planned match. Team references are nullable: an unresolved team
// name still produces a schedule row, flagged for the integrity validator.
// `(MatchDate, HomeTeamName, AwayTeamName, LeagueID)` is the natural dedup key.
type Entry struct {
	ID           int64
	LeagueID     int64
	MatchDate    time.Time
	MatchTime    string
	HomeTeamName string
	AwayTeamName string
	HomeTeamID   *int64
	AwayTeamID   *int64
	Location     string
}

func (e Entry) Validate() error {
	if e.LeagueID <= 0 {
		return fmt.Errorf("schedule entry league id is required")
	}
	if e.MatchDate.IsZero() {
		return fmt.Errorf("schedule entry match date is required")
	}
	if e.HomeTeamName == "" || e.AwayTeamName == "" {
		return fmt.Errorf("schedule entry team names are required")
	}

	return nil
}

// NaturalKey renders the dedup key for row-error reporting.
func (e Entry) NaturalKey() string {
	return fmt.Sprintf("%s|%s|%s|%d", e.MatchDate.Format("2006-01-02"), e.HomeTeamName, e.AwayTeamName, e.LeagueID)
}
