package match

import (
	"context"

	"github.com/paddlelab/leaguesync/internal/domain/run"
)

// Repository describes match persistence needs from use cases.
type Repository interface {
	UpsertBatch(ctx context.Context, results []Result) (run.BatchOutcome, error)

	// TeamAppearanceCounts returns, for one player, how many match rows carry
	// each team id. The integrity validator uses the distribution to assign a
	// team when one side dominates.
	TeamAppearanceCounts(ctx context.Context, playerID int64) (map[int64]int, error)

	DuplicateKeyCount(ctx context.Context, leagueID int64) (int, error)
}
