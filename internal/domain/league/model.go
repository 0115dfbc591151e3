package league

import "fmt"

// League is one independent scraped competition. Leagues are pre-seeded and
// never created or merged by an import run.
type League struct {
	ID   int64
	Code string
	Name string
}

func (l League) Validate() error {
	if l.Code == "" {
		return fmt.Errorf("league code is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}

	return nil
}
