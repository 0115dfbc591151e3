package club

import "fmt"

// Club is a physical venue/organization. Clubs are shared across leagues and
// created lazily by name; concurrent creation is safe via upsert-on-name.
type Club struct {
	ID   int64
	Name string
}

func (c Club) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("club name is required")
	}

	return nil
}
