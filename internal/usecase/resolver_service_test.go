package usecase

import (
	"context"
	"testing"

	"github.com/paddlelab/leaguesync/internal/config"
	"github.com/paddlelab/leaguesync/internal/domain/team"
	"github.com/paddlelab/leaguesync/internal/platform/logging"
)

func newTestResolver(t *testing.T, teams []team.Team, rule config.LeagueRule) (*LeagueResolver, *stubTeamRepository, *stubSeriesRepository, *stubClubRepository) {
	t.Helper()

	teamRepo := &stubTeamRepository{teams: teams}
	seriesRepo := &stubSeriesRepository{}
	clubRepo := &stubClubRepository{}
	playerRepo := &stubPlayerRepository{}

	service := NewResolverService(teamRepo, seriesRepo, clubRepo, playerRepo, logging.NewNop())
	resolver, err := service.ForLeague(context.Background(), 1, rule)
	if err != nil {
		t.Fatalf("ForLeague error: %v", err)
	}
	return resolver, teamRepo, seriesRepo, clubRepo
}

func TestResolveTeam_FallbackOrdering(t *testing.T) {
	t.Parallel()

	resolver, _, _, _ := newTestResolver(t, []team.Team{
		{ID: 10, LeagueID: 1, SeriesID: 5, ClubID: 7, Name: "Hinsdale PC 1"},
		{ID: 11, LeagueID: 1, SeriesID: 5, ClubID: 8, Name: "Glen Ellyn"},
		{ID: 12, LeagueID: 1, SeriesID: 6, ClubID: 9, Name: "Winnetka A - Platform"},
	}, config.LeagueRule{Code: "chicago"})

	cases := []struct {
		name     string
		source   string
		wantID   int64
		strategy team.Strategy
	}{
		{"exact", "Hinsdale PC 1", 10, team.StrategyExact},
		{"suffix strip beats exact miss", "Hinsdale PC 1 - Series 1", 10, team.StrategySuffix},
		{"trailing number", "Glen Ellyn 2", 11, team.StrategyTrailing},
		{"prefix with separator", "Winnetka A", 12, team.StrategyPrefix},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := resolver.ResolveTeam(tc.source)
			if !got.Matched {
				t.Fatalf("expected %q to resolve", tc.source)
			}
			if got.TeamID != tc.wantID {
				t.Fatalf("expected team %d, got %d", tc.wantID, got.TeamID)
			}
			if got.Strategy != tc.strategy {
				t.Fatalf("expected strategy %s, got %s", tc.strategy, got.Strategy)
			}
		})
	}

	if got := resolver.ResolveTeam("Lake Forest 3"); got.Matched {
		t.Fatalf("expected no match, got team %d via %s", got.TeamID, got.Strategy)
	}
}

func TestResolveTeam_AliasRewriteRetriesChain(t *testing.T) {
	t.Parallel()

	rule := config.LeagueRule{
		Code:        "chicago",
		TeamAliases: map[string]string{"Hinsdale Paddle": "Hinsdale PC 1 - Series 1"},
	}
	resolver, _, _, _ := newTestResolver(t, []team.Team{
		{ID: 10, LeagueID: 1, SeriesID: 5, ClubID: 7, Name: "Hinsdale PC 1"},
	}, rule)

	got := resolver.ResolveTeam("Hinsdale Paddle")
	if !got.Matched || got.TeamID != 10 {
		t.Fatalf("expected alias to resolve to team 10, got %+v", got)
	}
	if got.Strategy != team.StrategyAlias {
		t.Fatalf("expected alias strategy, got %s", got.Strategy)
	}
}

func TestResolveSeries_CreatesWhenAbsent(t *testing.T) {
	t.Parallel()

	resolver, _, seriesRepo, _ := newTestResolver(t, nil, config.LeagueRule{Code: "chicago"})

	created, wasCreated, err := resolver.ResolveSeries(context.Background(), "Series 7")
	if err != nil {
		t.Fatalf("ResolveSeries error: %v", err)
	}
	if !wasCreated || created.ID == 0 {
		t.Fatalf("expected creation, got %+v created=%v", created, wasCreated)
	}
	if len(seriesRepo.series) != 1 {
		t.Fatalf("expected 1 stored series, got %d", len(seriesRepo.series))
	}

	again, wasCreated, err := resolver.ResolveSeries(context.Background(), "series 7")
	if err != nil {
		t.Fatalf("ResolveSeries error: %v", err)
	}
	if wasCreated || again.ID != created.ID {
		t.Fatalf("expected normalized match on existing series, got %+v created=%v", again, wasCreated)
	}
}

func TestEnsureTeam_RegistersInIndex(t *testing.T) {
	t.Parallel()

	resolver, teamRepo, _, clubRepo := newTestResolver(t, nil, config.LeagueRule{Code: "chicago"})
	ctx := context.Background()

	clubID, err := resolver.EnsureClub(ctx, "Hinsdale PC")
	if err != nil {
		t.Fatalf("EnsureClub error: %v", err)
	}
	sameClub, err := resolver.EnsureClub(ctx, "Hinsdale PC")
	if err != nil {
		t.Fatalf("EnsureClub error: %v", err)
	}
	if clubID != sameClub {
		t.Fatalf("expected cached club id %d, got %d", clubID, sameClub)
	}
	if len(clubRepo.ids) != 1 {
		t.Fatalf("expected one club, got %d", len(clubRepo.ids))
	}

	teamID, err := resolver.EnsureTeam(ctx, "Hinsdale PC 1", 5, clubID)
	if err != nil {
		t.Fatalf("EnsureTeam error: %v", err)
	}
	if len(teamRepo.created) != 1 {
		t.Fatalf("expected one created team, got %d", len(teamRepo.created))
	}

	got := resolver.ResolveTeam("Hinsdale PC 1")
	if !got.Matched || got.TeamID != teamID {
		t.Fatalf("expected created team to resolve exactly, got %+v", got)
	}
}

func TestClubNameForTeam(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Hinsdale PC 1": "Hinsdale PC",
		"Glen Ellyn":    "Glen Ellyn",
		"Winnetka 12":   "Winnetka",
		"  Skokie 2  ":  "Skokie",
	}
	for in, want := range cases {
		if got := ClubNameForTeam(in); got != want {
			t.Fatalf("ClubNameForTeam(%q) = %q, want %q", in, got, want)
		}
	}
}
