package orphanmap

import "fmt"

// Mapping translates a historical league id that no longer exists to the
// current row. The table is small and versioned; it lives alongside league
// configuration rather than in code.
type Mapping struct {
	ID              int64
	OrphanLeagueID  int64
	CurrentLeagueID int64
	Version         int
	Note            string
}

func (m Mapping) Validate() error {
	if m.OrphanLeagueID <= 0 {
		return fmt.Errorf("orphan league id is required")
	}
	if m.CurrentLeagueID <= 0 {
		return fmt.Errorf("current league id is required")
	}

	return nil
}

// OrphanRef reports dangling league references found in one dependent table.
type OrphanRef struct {
	Table    string
	LeagueID int64
	Rows     int
}
