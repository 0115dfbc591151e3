package seriesstat

import (
	"context"

	"github.com/paddlelab/leaguesync/internal/domain/run"
)

// Repository describes standings persistence needs from use cases.
type Repository interface {
	UpsertBatch(ctx context.Context, stats []Stat) (run.BatchOutcome, error)
	DuplicateKeyCount(ctx context.Context, leagueID int64) (int, error)
}
