package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/paddlelab/leaguesync/internal/config"
	"github.com/paddlelab/leaguesync/internal/domain/league"
	"github.com/paddlelab/leaguesync/internal/domain/run"
	"github.com/paddlelab/leaguesync/internal/infrastructure/source"
	"github.com/paddlelab/leaguesync/internal/platform/logging"
)

// DocumentLoader yields one league's scrape documents.
type DocumentLoader interface {
	Load(ctx context.Context, leagueCode string) (source.Documents, error)
}

// Scope selects which pipeline phases a run executes. The CLI exposes one
// run type per table plus a standalone validation pass; the zero value runs
// nothing.
type Scope struct {
	Roster   bool
	Schedule bool
	Results  bool
	Stats    bool
	Validate bool
}

// FullScope is the standard run: every table plus validation.
func FullScope() Scope {
	return Scope{Roster: true, Schedule: true, Results: true, Stats: true, Validate: true}
}

func (sc Scope) writes() bool {
	return sc.Roster || sc.Schedule || sc.Results || sc.Stats
}

// RunService drives one league through load, resolve, consolidate, write and
// validate. Runs for the same league are serialized here; independent leagues
// may run in parallel through RunMany.
type RunService struct {
	loader       DocumentLoader
	leagues      league.Repository
	resolver     *ResolverService
	consolidator *ConsolidationService
	importer     *ImportService
	integrity    *IntegrityService
	rules        config.RuleSet
	maxWorkers   int
	logger       *logging.Logger

	mu          sync.Mutex
	leagueLocks map[string]*sync.Mutex
}

func NewRunService(
	loader DocumentLoader,
	leagues league.Repository,
	resolver *ResolverService,
	consolidator *ConsolidationService,
	importer *ImportService,
	integrity *IntegrityService,
	rules config.RuleSet,
	maxWorkers int,
	logger *logging.Logger,
) *RunService {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RunService{
		loader:       loader,
		leagues:      leagues,
		resolver:     resolver,
		consolidator: consolidator,
		importer:     importer,
		integrity:    integrity,
		rules:        rules,
		maxWorkers:   maxWorkers,
		logger:       logger,
		leagueLocks:  map[string]*sync.Mutex{},
	}
}

// Run executes one full league run. A report comes back even when the run
// fails; the error carries the fatal cause for the caller's exit code.
func (s *RunService) Run(ctx context.Context, leagueCode string) (run.Report, error) {
	return s.RunScoped(ctx, leagueCode, FullScope())
}

// RunScoped executes the selected phases of a league run. Writing scopes
// still pass through resolution and consolidation so every import works
// against consolidated reference data.
func (s *RunService) RunScoped(ctx context.Context, leagueCode string, scope Scope) (run.Report, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RunService.Run")
	defer span.End()

	lock := s.lockFor(leagueCode)
	lock.Lock()
	defer lock.Unlock()

	report := run.Report{
		LeagueCode: leagueCode,
		StartedAt:  time.Now().UTC(),
	}

	lg, found, err := s.leagues.GetByCode(ctx, leagueCode)
	if err != nil {
		return s.fail(ctx, report, fmt.Errorf("look up league %q: %w", leagueCode, err))
	}
	if !found {
		return s.fail(ctx, report, fmt.Errorf("%w: league %q is not seeded", ErrNotFound, leagueCode))
	}
	rule := s.rules.ForLeague(leagueCode)

	if scope.writes() {
		docs, err := s.loader.Load(ctx, leagueCode)
		if err != nil {
			return s.fail(ctx, report, fmt.Errorf("load documents for %q: %w", leagueCode, err))
		}
		report.LoadedRecords = docs.Loaded()
		report.SkippedRecords = docs.Skipped
		report.State = run.StateLoaded

		res, err := s.resolver.ForLeague(ctx, lg.ID, rule)
		if err != nil {
			return s.fail(ctx, report, err)
		}
		// Resolve the run's series up front so consolidation sees every
		// series this import will touch, including freshly created ones.
		if scope.Roster {
			for _, rec := range docs.Roster {
				_, created, err := res.ResolveSeries(ctx, rec.SeriesName)
				if err != nil {
					return s.fail(ctx, report, err)
				}
				if created {
					report.CreatedSeries++
				}
			}
		}
		report.State = run.StateResolved

		consolidated, err := s.consolidator.ConsolidateLeague(ctx, lg.ID, rule)
		if err != nil {
			return s.fail(ctx, report, err)
		}
		report.MergedSeries = consolidated.Merged
		if consolidated.Merged > 0 {
			if err := res.Reload(ctx); err != nil {
				return s.fail(ctx, report, err)
			}
		}
		report.State = run.StateConsolidated

		if err := s.write(ctx, res, docs, rule, scope, &report); err != nil {
			if isCancellation(err) {
				return s.cancelled(ctx, report, err)
			}
			return s.fail(ctx, report, err)
		}
		report.State = run.StateWritten
	}

	if scope.Validate {
		summary, err := s.integrity.ValidateAndRepair(ctx, lg.ID)
		if err != nil {
			if isCancellation(err) {
				return s.cancelled(ctx, report, err)
			}
			return s.fail(ctx, report, err)
		}
		report.Integrity = summary
		report.State = run.StateValidated

		if summary.Clean() {
			report.State = run.StateClean
		} else {
			report.State = run.StateNeedsRepair
		}
	}
	report.FinishedAt = time.Now().UTC()

	s.logger.InfoContext(ctx, "league run finished",
		"league", leagueCode,
		"state", string(report.State),
		"loaded", report.LoadedRecords,
		"unresolved_teams", report.UnresolvedTeams,
		"merged_series", report.MergedSeries,
		"errored", report.TotalErrored())

	return report, nil
}

func (s *RunService) write(ctx context.Context, res *LeagueResolver, docs source.Documents, rule config.LeagueRule, scope Scope, report *run.Report) error {
	if scope.Roster {
		if err := s.importer.ImportRoster(ctx, res, docs.Roster, report); err != nil {
			return err
		}
	}
	if scope.Schedule {
		if err := s.importer.ImportSchedule(ctx, res, docs.Schedule, report); err != nil {
			return err
		}
	}
	if scope.Results {
		if err := s.importer.ImportResults(ctx, res, docs.Results, rule.ScorePolicy(), report); err != nil {
			return err
		}
	}
	if !scope.Stats {
		return nil
	}
	return s.importer.ImportStats(ctx, res, docs.Stats, report)
}

// RunMany executes independent leagues on a bounded worker pool. Per-league
// serialization still holds through the run locks, so duplicate codes in one
// call queue up rather than race.
func (s *RunService) RunMany(ctx context.Context, leagueCodes []string) ([]run.Report, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RunService.RunMany")
	defer span.End()

	if len(leagueCodes) == 0 {
		return nil, fmt.Errorf("%w: at least one league code is required", ErrInvalidInput)
	}

	workerCount := min(s.maxWorkers, len(leagueCodes))
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan run.Report, len(leagueCodes))
	var workers sync.WaitGroup
	for _, code := range leagueCodes {
		code := code
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			report, err := s.Run(ctx, code)
			if err != nil {
				s.logger.ErrorContext(ctx, "league run failed", "league", code, "error", err)
			}
			results <- report
		}); err != nil {
			workers.Done()
			return nil, fmt.Errorf("submit league run to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	reports := make([]run.Report, 0, len(leagueCodes))
	for report := range results {
		reports = append(reports, report)
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].LeagueCode < reports[j].LeagueCode
	})

	return reports, nil
}

func (s *RunService) fail(ctx context.Context, report run.Report, err error) (run.Report, error) {
	report.State = run.StateFailed
	report.Failure = err.Error()
	report.FinishedAt = time.Now().UTC()
	s.logger.ErrorContext(ctx, "league run failed",
		"league", report.LeagueCode, "error", err)
	return report, err
}

// cancelled marks the report partial. Batches committed before the
// cancellation stay committed; a re-run converges over them.
func (s *RunService) cancelled(ctx context.Context, report run.Report, err error) (run.Report, error) {
	report.Partial = true
	report.Failure = "run cancelled"
	report.FinishedAt = time.Now().UTC()
	s.logger.WarnContext(ctx, "league run cancelled",
		"league", report.LeagueCode, "state", string(report.State))
	return report, err
}

func (s *RunService) lockFor(leagueCode string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.leagueLocks[leagueCode]
	if !ok {
		lock = &sync.Mutex{}
		s.leagueLocks[leagueCode] = lock
	}
	return lock
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
