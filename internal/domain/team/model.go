package team

import "fmt"

// Team belongs to exactly one league, series and club. Team names are unique
// per league.
type Team struct {
	ID       int64
	LeagueID int64
	SeriesID int64
	ClubID   int64
	Name     string
}

func (t Team) Validate() error {
	if t.LeagueID <= 0 {
		return fmt.Errorf("team league id is required")
	}
	if t.SeriesID <= 0 {
		return fmt.Errorf("team series id is required")
	}
	if t.ClubID <= 0 {
		return fmt.Errorf("team club id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}

// Strategy names the resolution step that matched a scrape-source team name.
type Strategy string

const (
	StrategyExact    Strategy = "exact"
	StrategySuffix   Strategy = "suffix"
	StrategyTrailing Strategy = "trailing_number"
	StrategyPrefix   Strategy = "prefix"
	StrategyAlias    Strategy = "alias"
	StrategyNone     Strategy = "none"
)

// Resolution is the explicit outcome of resolving a source team name. An
// unmatched name is a value, not an error: callers decide whether to skip the
// record or write it with a null team reference.
type Resolution struct {
	TeamID   int64
	Strategy Strategy
	Matched  bool
}

func Unresolved() Resolution {
	return Resolution{Strategy: StrategyNone}
}
