package club

import "context"

// Repository describes club persistence needs from use cases.
type Repository interface {
	// UpsertByName returns the id of the club with the given name, creating
	// it when absent. Safe under concurrent callers.
	UpsertByName(ctx context.Context, name string) (int64, error)
}
