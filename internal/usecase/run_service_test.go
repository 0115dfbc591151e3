package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/paddlelab/leaguesync/internal/config"
	"github.com/paddlelab/leaguesync/internal/domain/league"
	"github.com/paddlelab/leaguesync/internal/domain/run"
	"github.com/paddlelab/leaguesync/internal/domain/series"
	"github.com/paddlelab/leaguesync/internal/infrastructure/source"
	"github.com/paddlelab/leaguesync/internal/platform/logging"
)

type runFixture struct {
	service  *RunService
	loader   *stubLoader
	players  *stubPlayerRepository
	schedule *stubScheduleRepository
	matches  *stubMatchRepository
	series   *stubSeriesRepository
}

func newRunFixture(t *testing.T, docs source.Documents, rules config.RuleSet, batchSize, ceiling int) runFixture {
	t.Helper()

	leagueRepo := &stubLeagueRepository{
		byCode: map[string]league.League{
			"chicago": {ID: 1, Code: "chicago", Name: "Chicago Platform Tennis"},
		},
	}
	teamRepo := &stubTeamRepository{}
	seriesRepo := &stubSeriesRepository{usage: map[int64]series.Usage{}}
	clubRepo := &stubClubRepository{}
	playerRepo := &stubPlayerRepository{}
	scheduleRepo := &stubScheduleRepository{}
	matchRepo := &stubMatchRepository{}
	statRepo := &stubSeriesStatRepository{}
	orphanRepo := &stubOrphanMappingRepository{}
	loader := &stubLoader{docs: docs}

	resolver := NewResolverService(teamRepo, seriesRepo, clubRepo, playerRepo, logging.NewNop())
	consolidator := NewConsolidationService(seriesRepo, logging.NewNop())
	importer := NewImportService(playerRepo, scheduleRepo, matchRepo, statRepo, batchSize, ceiling, logging.NewNop())
	integrity := NewIntegrityService(playerRepo, matchRepo, scheduleRepo, statRepo, orphanRepo, 0.8, logging.NewNop())

	service := NewRunService(loader, leagueRepo, resolver, consolidator, importer, integrity, rules, 2, logging.NewNop())
	return runFixture{
		service:  service,
		loader:   loader,
		players:  playerRepo,
		schedule: scheduleRepo,
		matches:  matchRepo,
		series:   seriesRepo,
	}
}

func fullRunDocs() source.Documents {
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	return source.Documents{
		Roster: []source.RosterRecord{
			{ExternalID: "p-1", Name: "Ann Ruiz", TeamName: "Hinsdale PC 1", SeriesName: "Series 1", Rating: 4.1, Active: true},
			{ExternalID: "p-2", Name: "Beth Cole", TeamName: "Glen Ellyn 2", SeriesName: "Series 1", Active: true},
		},
		Schedule: []source.ScheduleRecord{
			{HomeTeam: "Hinsdale PC 1", AwayTeam: "Glen Ellyn 2", MatchDate: date, Time: "6:30 PM"},
		},
		Results: []source.ResultRecord{
			{HomeTeam: "Hinsdale PC 1", AwayTeam: "Glen Ellyn 2", MatchDate: date, Score: "6-4,6-4"},
		},
		Stats: []source.StatsRecord{
			{TeamName: "Hinsdale PC 1", Points: 12, Wins: 4, Losses: 1},
		},
	}
}

func TestRun_CleanPipeline(t *testing.T) {
	t.Parallel()

	fx := newRunFixture(t, fullRunDocs(), config.DefaultRuleSet(), 0, 0)

	report, err := fx.service.Run(context.Background(), "chicago")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if report.State != run.StateClean {
		t.Fatalf("expected clean terminal state, got %s (failure: %s)", report.State, report.Failure)
	}
	if report.Partial {
		t.Fatalf("complete run must not be partial")
	}
	if report.LoadedRecords != 5 {
		t.Fatalf("expected 5 loaded records, got %d", report.LoadedRecords)
	}
	if report.CreatedSeries != 1 {
		t.Fatalf("expected 1 created series, got %d", report.CreatedSeries)
	}
	if report.Players.Inserted != 2 || report.Schedule.Inserted != 1 || report.Matches.Inserted != 1 || report.SeriesStats.Inserted != 1 {
		t.Fatalf("unexpected write stats: %+v %+v %+v %+v", report.Players, report.Schedule, report.Matches, report.SeriesStats)
	}
	if report.FinishedAt.IsZero() {
		t.Fatalf("report must carry a finish time")
	}
}

func TestRun_SecondImportIsIdempotent(t *testing.T) {
	t.Parallel()

	fx := newRunFixture(t, fullRunDocs(), config.DefaultRuleSet(), 0, 0)
	ctx := context.Background()

	if _, err := fx.service.Run(ctx, "chicago"); err != nil {
		t.Fatalf("first run error: %v", err)
	}
	report, err := fx.service.Run(ctx, "chicago")
	if err != nil {
		t.Fatalf("second run error: %v", err)
	}

	if report.Players.Inserted != 0 || report.Players.Updated != 2 {
		t.Fatalf("re-run must update players, not insert: %+v", report.Players)
	}
	if report.Schedule.Inserted != 0 || report.Schedule.Updated != 1 {
		t.Fatalf("re-run must update schedule, not insert: %+v", report.Schedule)
	}
	if report.CreatedSeries != 0 {
		t.Fatalf("re-run must not create series again, got %d", report.CreatedSeries)
	}
}

func TestRun_UnknownLeagueFails(t *testing.T) {
	t.Parallel()

	fx := newRunFixture(t, fullRunDocs(), config.DefaultRuleSet(), 0, 0)

	report, err := fx.service.Run(context.Background(), "atlantis")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if report.State != run.StateFailed {
		t.Fatalf("expected failed state, got %s", report.State)
	}
}

func TestRun_StructuralLoadErrorFailsWithoutWrites(t *testing.T) {
	t.Parallel()

	fx := newRunFixture(t, source.Documents{}, config.DefaultRuleSet(), 0, 0)
	fx.loader.err = errors.New("results.json missing")

	report, err := fx.service.Run(context.Background(), "chicago")
	if err == nil {
		t.Fatalf("expected structural error")
	}
	if report.State != run.StateFailed {
		t.Fatalf("expected failed state, got %s", report.State)
	}
	if len(fx.players.upserted) != 0 || len(fx.schedule.upserted) != 0 {
		t.Fatalf("no write may happen on a structural load failure")
	}
}

func TestRun_AmbiguousConsolidationHaltsBeforeWrites(t *testing.T) {
	t.Parallel()

	rules := config.NewRuleSet(1, []config.LeagueRule{
		{Code: "chicago", SeriesCanonicalStrips: []string{"Division"}},
	}, nil)

	fx := newRunFixture(t, fullRunDocs(), rules, 0, 0)
	fx.series.series = []series.Series{
		{ID: 1, LeagueID: 1, Name: "Division Series 9"},
		{ID: 2, LeagueID: 1, Name: "division Series 9"},
	}
	fx.series.usage = map[int64]series.Usage{
		1: {Players: 2},
		2: {Teams: 2},
	}

	report, err := fx.service.Run(context.Background(), "chicago")
	if !errors.Is(err, ErrAmbiguousMerge) {
		t.Fatalf("expected ErrAmbiguousMerge, got %v", err)
	}
	if report.State != run.StateFailed {
		t.Fatalf("expected failed state, got %s", report.State)
	}
	if len(fx.players.upserted) != 0 {
		t.Fatalf("no writer batch may run after an ambiguous merge")
	}
}

func TestRun_RowErrorCeilingEndsFailed(t *testing.T) {
	t.Parallel()

	docs := fullRunDocs()
	docs.Schedule = nil
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 501; i++ {
		docs.Schedule = append(docs.Schedule, source.ScheduleRecord{
			HomeTeam:  "Hinsdale PC 1",
			AwayTeam:  "Glen Ellyn 2",
			MatchDate: base.AddDate(0, 0, i),
		})
	}

	fx := newRunFixture(t, docs, config.DefaultRuleSet(), 100, 500)
	fx.schedule.failRows = true

	report, err := fx.service.Run(context.Background(), "chicago")
	if !errors.Is(err, ErrTooManyRowErrors) {
		t.Fatalf("expected ErrTooManyRowErrors, got %v", err)
	}
	if report.State != run.StateFailed {
		t.Fatalf("expected failed terminal state, got %s", report.State)
	}
	if fx.matches.batches != 0 {
		t.Fatalf("match batches must not run after the ceiling trips, got %d", fx.matches.batches)
	}
}

func TestRunScoped_RosterOnlyWritesPlayersOnly(t *testing.T) {
	t.Parallel()

	fx := newRunFixture(t, fullRunDocs(), config.DefaultRuleSet(), 0, 0)

	scope := Scope{Roster: true}
	report, err := fx.service.RunScoped(context.Background(), "chicago", scope)
	if err != nil {
		t.Fatalf("RunScoped error: %v", err)
	}

	if report.State != run.StateWritten {
		t.Fatalf("an unvalidated run must end written, got %s", report.State)
	}
	if report.Players.Inserted != 2 {
		t.Fatalf("expected 2 player inserts, got %+v", report.Players)
	}
	if len(fx.schedule.upserted) != 0 || fx.matches.batches != 0 {
		t.Fatalf("roster scope must not touch schedule or matches")
	}
}

func TestRunScoped_ValidateOnlySkipsLoading(t *testing.T) {
	t.Parallel()

	fx := newRunFixture(t, source.Documents{}, config.DefaultRuleSet(), 0, 0)
	fx.loader.err = errors.New("source dir missing")

	report, err := fx.service.RunScoped(context.Background(), "chicago", Scope{Validate: true})
	if err != nil {
		t.Fatalf("validate-only run must not read source documents: %v", err)
	}
	if report.State != run.StateClean {
		t.Fatalf("expected clean state, got %s", report.State)
	}
	if len(fx.players.upserted) != 0 {
		t.Fatalf("validate-only run must not write")
	}
}

func TestRunMany_ReportsPerLeague(t *testing.T) {
	t.Parallel()

	fx := newRunFixture(t, fullRunDocs(), config.DefaultRuleSet(), 0, 0)

	reports, err := fx.service.RunMany(context.Background(), []string{"chicago", "atlantis"})
	if err != nil {
		t.Fatalf("RunMany error: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].LeagueCode != "atlantis" || reports[0].State != run.StateFailed {
		t.Fatalf("expected failed atlantis report first, got %+v", reports[0])
	}
	if reports[1].LeagueCode != "chicago" || reports[1].State != run.StateClean {
		t.Fatalf("expected clean chicago report, got %+v", reports[1])
	}
}
