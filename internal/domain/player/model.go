package player

import "fmt"

// Player is keyed by the stable identifier assigned by the scrape source.
// TeamID stays nil when resolution failed; the integrity validator may later
// assign the team the player actually appears under in match history.
type Player struct {
	ID         int64
	ExternalID string
	LeagueID   int64
	ClubID     int64
	SeriesID   int64
	TeamID     *int64
	Name       string
	Rating     float64
	Active     bool
}

func (p Player) Validate() error {
	if p.ExternalID == "" {
		return fmt.Errorf("player external id is required")
	}
	if p.LeagueID <= 0 {
		return fmt.Errorf("player league id is required")
	}
	if p.ClubID <= 0 {
		return fmt.Errorf("player club id is required")
	}
	if p.SeriesID <= 0 {
		return fmt.Errorf("player series id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}

	return nil
}
