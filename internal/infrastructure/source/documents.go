package source

import "time"

// Records mirror the flat documents the collection layer writes per league.
// Required fields are enforced structurally; everything else is optional and
// tolerated when missing.

type RosterRecord struct {
	ExternalID string  `json:"external_id" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	TeamName   string  `json:"team,omitempty"`
	SeriesName string  `json:"series" validate:"required"`
	Rating     float64 `json:"rating,omitempty"`
	Active     bool    `json:"active"`
}

type ScheduleRecord struct {
	Date     string `json:"date" validate:"required"`
	Time     string `json:"time,omitempty"`
	HomeTeam string `json:"home_team" validate:"required"`
	AwayTeam string `json:"away_team" validate:"required"`
	Location string `json:"location,omitempty"`

	// MatchDate is filled by the loader from Date.
	MatchDate time.Time `json:"-"`
}

type ResultRecord struct {
	Date       string `json:"date" validate:"required"`
	HomeTeam   string `json:"home_team" validate:"required"`
	AwayTeam   string `json:"away_team" validate:"required"`
	HomePlayer string `json:"home_player,omitempty"`
	AwayPlayer string `json:"away_player,omitempty"`
	Score      string `json:"score,omitempty"`

	MatchDate time.Time `json:"-"`
}

type StatsRecord struct {
	TeamName   string `json:"team" validate:"required"`
	SeriesName string `json:"series,omitempty"`
	Points     int    `json:"points"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
}

// Documents is one league's full scrape output after structural filtering.
type Documents struct {
	LeagueCode string

	Roster   []RosterRecord
	Schedule []ScheduleRecord
	Results  []ResultRecord
	Stats    []StatsRecord

	// Skipped counts records dropped for missing required fields or
	// unparseable dates. Skips are reported, never fatal.
	Skipped int
}

func (d Documents) Loaded() int {
	return len(d.Roster) + len(d.Schedule) + len(d.Results) + len(d.Stats)
}
