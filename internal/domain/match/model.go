package match

import (
	"fmt"
	"time"
)

// Side identifies the winner of a played match. Undetermined is a legitimate
// outcome for malformed or in-progress score strings, never a guess.
type Side string

const (
	SideHome         Side = "home"
	SideAway         Side = "away"
	SideUndetermined Side = "undetermined"
)

// Result is a played match. Winner is derived from RawScore whenever the
// string parses; the scraped fallback winner is used only when it does not.
// `(MatchDate, HomeTeamName, AwayTeamName, LeagueID)` is the natural dedup key.
type Result struct {
	ID           int64
	LeagueID     int64
	MatchDate    time.Time
	HomeTeamName string
	AwayTeamName string
	HomeTeamID   *int64
	AwayTeamID   *int64
	HomePlayerID *int64
	AwayPlayerID *int64
	RawScore     string
	Winner       Side
}

func (r Result) Validate() error {
	if r.LeagueID <= 0 {
		return fmt.Errorf("match league id is required")
	}
	if r.MatchDate.IsZero() {
		return fmt.Errorf("match date is required")
	}
	if r.HomeTeamName == "" || r.AwayTeamName == "" {
		return fmt.Errorf("match team names are required")
	}

	return nil
}

func (r Result) NaturalKey() string {
	return fmt.Sprintf("%s|%s|%s|%d", r.MatchDate.Format("2006-01-02"), r.HomeTeamName, r.AwayTeamName, r.LeagueID)
}
