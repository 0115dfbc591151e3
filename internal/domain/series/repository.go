package series

import "context"

// Repository describes series persistence needs from use cases.
//
// Merge transactionally repoints every row referencing duplicateID (players,
// teams, series stats, series-league links) to survivorID, removes the
// duplicate's league links and finally deletes the duplicate series row.
type Repository interface {
	ListByLeague(ctx context.Context, leagueID int64) ([]Series, error)
	Create(ctx context.Context, s Series) (int64, error)
	Rename(ctx context.Context, seriesID int64, name string) error
	UsageCounts(ctx context.Context, leagueID int64) (map[int64]Usage, error)
	Merge(ctx context.Context, leagueID, survivorID, duplicateID int64) error
}
