package schedule

import (
	"context"

	"github.com/paddlelab/leaguesync/internal/domain/run"
)

// Repository describes schedule persistence needs from use cases.
type Repository interface {
	UpsertBatch(ctx context.Context, entries []Entry) (run.BatchOutcome, error)

	// DuplicateKeyCount reports rows sharing the natural dedup key, which an
	// idempotent import should never produce.
	DuplicateKeyCount(ctx context.Context, leagueID int64) (int, error)
}
