package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	ListByLeague(ctx context.Context, leagueID int64) ([]Team, error)
	Create(ctx context.Context, t Team) (int64, error)
}
