package usecase

import (
	"context"
	"fmt"

	"github.com/paddlelab/leaguesync/internal/domain/club"
	"github.com/paddlelab/leaguesync/internal/domain/league"
	"github.com/paddlelab/leaguesync/internal/domain/match"
	"github.com/paddlelab/leaguesync/internal/domain/orphanmap"
	"github.com/paddlelab/leaguesync/internal/domain/player"
	"github.com/paddlelab/leaguesync/internal/domain/run"
	"github.com/paddlelab/leaguesync/internal/domain/schedule"
	"github.com/paddlelab/leaguesync/internal/domain/series"
	"github.com/paddlelab/leaguesync/internal/domain/seriesstat"
	"github.com/paddlelab/leaguesync/internal/domain/team"
	"github.com/paddlelab/leaguesync/internal/infrastructure/source"
)

type stubLeagueRepository struct {
	byCode map[string]league.League
}

func (s *stubLeagueRepository) List(_ context.Context) ([]league.League, error) {
	out := make([]league.League, 0, len(s.byCode))
	for _, l := range s.byCode {
		out = append(out, l)
	}
	return out, nil
}

func (s *stubLeagueRepository) GetByCode(_ context.Context, code string) (league.League, bool, error) {
	l, ok := s.byCode[code]
	return l, ok, nil
}

type stubTeamRepository struct {
	teams   []team.Team
	created []team.Team
	nextID  int64
}

func (s *stubTeamRepository) ListByLeague(_ context.Context, leagueID int64) ([]team.Team, error) {
	out := []team.Team{}
	for _, t := range s.teams {
		if t.LeagueID == leagueID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubTeamRepository) Create(_ context.Context, t team.Team) (int64, error) {
	s.nextID++
	t.ID = s.nextID + 1000
	s.teams = append(s.teams, t)
	s.created = append(s.created, t)
	return t.ID, nil
}

type stubSeriesRepository struct {
	series  []series.Series
	usage   map[int64]series.Usage
	merges  [][2]int64 // survivor, duplicate
	renames map[int64]string
	nextID  int64
}

func (s *stubSeriesRepository) ListByLeague(_ context.Context, leagueID int64) ([]series.Series, error) {
	out := []series.Series{}
	for _, sr := range s.series {
		if sr.LeagueID == leagueID {
			out = append(out, sr)
		}
	}
	return out, nil
}

func (s *stubSeriesRepository) Create(_ context.Context, sr series.Series) (int64, error) {
	s.nextID++
	sr.ID = s.nextID + 2000
	s.series = append(s.series, sr)
	return sr.ID, nil
}

func (s *stubSeriesRepository) Rename(_ context.Context, seriesID int64, name string) error {
	if s.renames == nil {
		s.renames = map[int64]string{}
	}
	s.renames[seriesID] = name
	for i := range s.series {
		if s.series[i].ID == seriesID {
			s.series[i].Name = name
		}
	}
	return nil
}

func (s *stubSeriesRepository) UsageCounts(_ context.Context, _ int64) (map[int64]series.Usage, error) {
	out := make(map[int64]series.Usage, len(s.usage))
	for id, usage := range s.usage {
		out[id] = usage
	}
	return out, nil
}

func (s *stubSeriesRepository) Merge(_ context.Context, _ int64, survivorID, duplicateID int64) error {
	s.merges = append(s.merges, [2]int64{survivorID, duplicateID})

	if s.usage != nil {
		survivor := s.usage[survivorID]
		duplicate := s.usage[duplicateID]
		survivor.Players += duplicate.Players
		survivor.Teams += duplicate.Teams
		s.usage[survivorID] = survivor
		delete(s.usage, duplicateID)
	}

	kept := s.series[:0]
	for _, sr := range s.series {
		if sr.ID != duplicateID {
			kept = append(kept, sr)
		}
	}
	s.series = kept
	return nil
}

type stubClubRepository struct {
	ids    map[string]int64
	nextID int64
}

func (s *stubClubRepository) UpsertByName(_ context.Context, name string) (int64, error) {
	if s.ids == nil {
		s.ids = map[string]int64{}
	}
	if id, ok := s.ids[name]; ok {
		return id, nil
	}
	s.nextID++
	id := s.nextID + 3000
	s.ids[name] = id
	return id, nil
}

type stubPlayerRepository struct {
	upserted []player.Player
	seen     map[string]bool
	failRows bool

	players  []player.Player
	teamless []player.Player
	assigned map[int64]int64
}

func (s *stubPlayerRepository) UpsertBatch(_ context.Context, players []player.Player) (run.BatchOutcome, error) {
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	out := run.BatchOutcome{}
	for i, p := range players {
		if s.failRows {
			out.Errors = append(out.Errors, run.RowError{Index: i, Key: p.ExternalID, Err: "injected"})
			continue
		}
		if s.seen[p.ExternalID] {
			out.Updated++
		} else {
			out.Inserted++
			s.seen[p.ExternalID] = true
		}
		s.upserted = append(s.upserted, p)
	}
	return out, nil
}

func (s *stubPlayerRepository) ListByLeague(_ context.Context, leagueID int64) ([]player.Player, error) {
	out := []player.Player{}
	for _, p := range s.players {
		if p.LeagueID == leagueID {
			out = append(out, p)
		}
	}
	for _, p := range s.upserted {
		if p.LeagueID == leagueID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubPlayerRepository) ListTeamlessWithMatches(_ context.Context, _ int64) ([]player.Player, error) {
	return s.teamless, nil
}

func (s *stubPlayerRepository) AssignTeam(_ context.Context, playerID, teamID int64) error {
	if s.assigned == nil {
		s.assigned = map[int64]int64{}
	}
	s.assigned[playerID] = teamID
	return nil
}

type stubScheduleRepository struct {
	upserted   []schedule.Entry
	seen       map[string]bool
	failRows   bool
	duplicates int
	batches    int
}

func (s *stubScheduleRepository) UpsertBatch(_ context.Context, entries []schedule.Entry) (run.BatchOutcome, error) {
	s.batches++
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	out := run.BatchOutcome{}
	for i, e := range entries {
		if s.failRows {
			out.Errors = append(out.Errors, run.RowError{Index: i, Key: e.NaturalKey(), Err: "injected"})
			continue
		}
		if s.seen[e.NaturalKey()] {
			out.Updated++
		} else {
			out.Inserted++
			s.seen[e.NaturalKey()] = true
		}
		s.upserted = append(s.upserted, e)
	}
	return out, nil
}

func (s *stubScheduleRepository) DuplicateKeyCount(_ context.Context, _ int64) (int, error) {
	return s.duplicates, nil
}

type stubMatchRepository struct {
	upserted    []match.Result
	seen        map[string]bool
	failRows    bool
	duplicates  int
	appearances map[int64]map[int64]int
	batches     int
}

func (s *stubMatchRepository) UpsertBatch(_ context.Context, results []match.Result) (run.BatchOutcome, error) {
	s.batches++
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	out := run.BatchOutcome{}
	for i, m := range results {
		if s.failRows {
			out.Errors = append(out.Errors, run.RowError{Index: i, Key: m.NaturalKey(), Err: "injected"})
			continue
		}
		if s.seen[m.NaturalKey()] {
			out.Updated++
		} else {
			out.Inserted++
			s.seen[m.NaturalKey()] = true
		}
		s.upserted = append(s.upserted, m)
	}
	return out, nil
}

func (s *stubMatchRepository) TeamAppearanceCounts(_ context.Context, playerID int64) (map[int64]int, error) {
	counts, ok := s.appearances[playerID]
	if !ok {
		return map[int64]int{}, nil
	}
	return counts, nil
}

func (s *stubMatchRepository) DuplicateKeyCount(_ context.Context, _ int64) (int, error) {
	return s.duplicates, nil
}

type stubSeriesStatRepository struct {
	upserted   []seriesstat.Stat
	seen       map[string]bool
	duplicates int
}

func (s *stubSeriesStatRepository) UpsertBatch(_ context.Context, stats []seriesstat.Stat) (run.BatchOutcome, error) {
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	out := run.BatchOutcome{}
	for _, stat := range stats {
		if s.seen[stat.NaturalKey()] {
			out.Updated++
		} else {
			out.Inserted++
			s.seen[stat.NaturalKey()] = true
		}
		s.upserted = append(s.upserted, stat)
	}
	return out, nil
}

func (s *stubSeriesStatRepository) DuplicateKeyCount(_ context.Context, _ int64) (int, error) {
	return s.duplicates, nil
}

type stubOrphanMappingRepository struct {
	mappings []orphanmap.Mapping
	refs     []orphanmap.OrphanRef
	remapped map[string]int // "table|from|to" -> rows reported remapped
}

func (s *stubOrphanMappingRepository) List(_ context.Context) ([]orphanmap.Mapping, error) {
	return s.mappings, nil
}

func (s *stubOrphanMappingRepository) Upsert(_ context.Context, m orphanmap.Mapping) error {
	s.mappings = append(s.mappings, m)
	return nil
}

func (s *stubOrphanMappingRepository) ScanOrphans(_ context.Context) ([]orphanmap.OrphanRef, error) {
	return s.refs, nil
}

func (s *stubOrphanMappingRepository) RemapLeague(_ context.Context, table string, fromLeagueID, toLeagueID int64) (int, error) {
	if s.remapped == nil {
		s.remapped = map[string]int{}
	}
	rows := 0
	for _, ref := range s.refs {
		if ref.Table == table && ref.LeagueID == fromLeagueID {
			rows = ref.Rows
		}
	}
	s.remapped[fmt.Sprintf("%s|%d|%d", table, fromLeagueID, toLeagueID)] = rows
	return rows, nil
}

type stubLoader struct {
	docs source.Documents
	err  error
}

func (s *stubLoader) Load(_ context.Context, leagueCode string) (source.Documents, error) {
	if s.err != nil {
		return source.Documents{}, s.err
	}
	docs := s.docs
	docs.LeagueCode = leagueCode
	return docs, nil
}

var _ club.Repository = (*stubClubRepository)(nil)
var _ league.Repository = (*stubLeagueRepository)(nil)
var _ team.Repository = (*stubTeamRepository)(nil)
var _ series.Repository = (*stubSeriesRepository)(nil)
var _ player.Repository = (*stubPlayerRepository)(nil)
var _ schedule.Repository = (*stubScheduleRepository)(nil)
var _ match.Repository = (*stubMatchRepository)(nil)
var _ seriesstat.Repository = (*stubSeriesStatRepository)(nil)
var _ orphanmap.Repository = (*stubOrphanMappingRepository)(nil)
var _ DocumentLoader = (*stubLoader)(nil)
