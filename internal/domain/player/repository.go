package player

import (
	"context"

	"github.com/paddlelab/leaguesync/internal/domain/run"
)

// Repository describes player persistence needs from use cases.
type Repository interface {
	// UpsertBatch writes one batch in a single transaction, isolating row
	// failures so one bad record does not poison the batch.
	UpsertBatch(ctx context.Context, players []Player) (run.BatchOutcome, error)

	ListByLeague(ctx context.Context, leagueID int64) ([]Player, error)

	// ListTeamlessWithMatches returns active players in the league with a
	// null team reference that nonetheless appear in match history.
	ListTeamlessWithMatches(ctx context.Context, leagueID int64) ([]Player, error)

	AssignTeam(ctx context.Context, playerID, teamID int64) error
}
