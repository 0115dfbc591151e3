package seriesstat

import "fmt"

// Stat is one aggregated standings row per team per series, upserted keyed by
// `(TeamID, LeagueID)`.
type Stat struct {
	ID       int64
	LeagueID int64
	SeriesID int64
	TeamID   int64
	Points   int
	Wins     int
	Losses   int
}

func (s Stat) Validate() error {
	if s.LeagueID <= 0 {
		return fmt.Errorf("series stat league id is required")
	}
	if s.SeriesID <= 0 {
		return fmt.Errorf("series stat series id is required")
	}
	if s.TeamID <= 0 {
		return fmt.Errorf("series stat team id is required")
	}

	return nil
}

func (s Stat) NaturalKey() string {
	return fmt.Sprintf("%d|%d", s.TeamID, s.LeagueID)
}
