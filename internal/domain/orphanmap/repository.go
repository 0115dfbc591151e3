package orphanmap

import "context"

// Repository describes orphan-mapping persistence needs from use cases.
//
// ScanOrphans and RemapLeague operate over a fixed, enumerated set of
// dependent tables; implementations never interpolate caller-supplied table
// names into SQL.
type Repository interface {
	List(ctx context.Context) ([]Mapping, error)
	Upsert(ctx context.Context, m Mapping) error

	ScanOrphans(ctx context.Context) ([]OrphanRef, error)
	RemapLeague(ctx context.Context, table string, fromLeagueID, toLeagueID int64) (int, error)
}
