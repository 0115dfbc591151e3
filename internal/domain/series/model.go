package series

import "fmt"

// Series is a named competitive division within one league. `(Name, LeagueID)`
// is unique; duplicates created by naming drift are merged, never split.
type Series struct {
	ID          int64
	LeagueID    int64
	Name        string
	DisplayName string
}

func (s Series) Validate() error {
	if s.LeagueID <= 0 {
		return fmt.Errorf("series league id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("series name is required")
	}

	return nil
}

// Usage counts the rows that reference a series; the consolidator uses it to
// pick a merge survivor.
type Usage struct {
	Players int
	Teams   int
}

func (u Usage) Total() int {
	return u.Players + u.Teams
}
