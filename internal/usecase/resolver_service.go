package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/paddlelab/leaguesync/internal/config"
	"github.com/paddlelab/leaguesync/internal/domain/club"
	"github.com/paddlelab/leaguesync/internal/domain/player"
	"github.com/paddlelab/leaguesync/internal/domain/series"
	"github.com/paddlelab/leaguesync/internal/domain/team"
	"github.com/paddlelab/leaguesync/internal/platform/logging"
)

// ResolverService maps scrape-source names to database ids. Team matching is
// a strict fallback chain; every strategy works against an in-memory index
// loaded once per league run.
type ResolverService struct {
	teams   team.Repository
	series  series.Repository
	clubs   club.Repository
	players player.Repository
	logger  *logging.Logger
}

func NewResolverService(
	teams team.Repository,
	seriesRepo series.Repository,
	clubs club.Repository,
	players player.Repository,
	logger *logging.Logger,
) *ResolverService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResolverService{
		teams:   teams,
		series:  seriesRepo,
		clubs:   clubs,
		players: players,
		logger:  logger,
	}
}

var trailingNumber = regexp.MustCompile(`\s+\d+$`)

// LeagueResolver carries one league run's resolution state. It is not safe
// for concurrent use; runs for the same league are serialized upstream.
type LeagueResolver struct {
	service  *ResolverService
	leagueID int64
	rule     config.LeagueRule
	suffix   *regexp.Regexp

	teamsByName   map[string]team.Team
	teamsByID     map[int64]team.Team
	seriesByName  map[string]series.Series
	clubIDsByName map[string]int64
	playersByName map[string]int64
}

func (r *LeagueResolver) LeagueID() int64 {
	return r.leagueID
}

func (r *LeagueResolver) TeamByID(id int64) (team.Team, bool) {
	t, ok := r.teamsByID[id]
	return t, ok
}

// ForLeague loads the league's teams and series into a fresh resolver index.
func (s *ResolverService) ForLeague(ctx context.Context, leagueID int64, rule config.LeagueRule) (*LeagueResolver, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResolverService.ForLeague")
	defer span.End()

	if leagueID <= 0 {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	r := &LeagueResolver{
		service:       s,
		leagueID:      leagueID,
		rule:          rule,
		suffix:        rule.SeriesSuffix(),
		clubIDsByName: map[string]int64{},
		playersByName: map[string]int64{},
	}
	if err := r.Reload(ctx); err != nil {
		return nil, err
	}

	return r, nil
}

// Reload rebuilds the team and series indexes from the database. Called after
// consolidation, which may have merged or renamed rows under the resolver.
func (r *LeagueResolver) Reload(ctx context.Context) error {
	teams, err := r.service.teams.ListByLeague(ctx, r.leagueID)
	if err != nil {
		return fmt.Errorf("load team index: %w", err)
	}
	r.teamsByName = make(map[string]team.Team, len(teams))
	r.teamsByID = make(map[int64]team.Team, len(teams))
	for _, t := range teams {
		r.teamsByName[normalizeName(t.Name)] = t
		r.teamsByID[t.ID] = t
	}

	allSeries, err := r.service.series.ListByLeague(ctx, r.leagueID)
	if err != nil {
		return fmt.Errorf("load series index: %w", err)
	}
	r.seriesByName = make(map[string]series.Series, len(allSeries))
	for _, sr := range allSeries {
		r.seriesByName[normalizeName(sr.Name)] = sr
	}

	return nil
}

// RefreshPlayers loads a player name index so result records can carry player
// ids. Called after the roster upsert has committed.
func (r *LeagueResolver) RefreshPlayers(ctx context.Context) error {
	players, err := r.service.players.ListByLeague(ctx, r.leagueID)
	if err != nil {
		return fmt.Errorf("load player index: %w", err)
	}
	r.playersByName = make(map[string]int64, len(players))
	for _, p := range players {
		r.playersByName[normalizeName(p.Name)] = p.ID
	}

	return nil
}

// ResolveTeam runs the strategy chain against the in-memory index: exact,
// series-suffix strip, trailing-number strip, prefix with separator, then the
// league's alias table rewriting the name and retrying the first four. An
// unmatched name returns an unresolved value, never an error.
func (r *LeagueResolver) ResolveTeam(name string) team.Resolution {
	name = strings.TrimSpace(name)
	if name == "" {
		return team.Unresolved()
	}

	if res := r.resolveTeamDirect(name); res.Matched {
		return res
	}

	if alias, ok := r.rule.TeamAliases[name]; ok {
		if res := r.resolveTeamDirect(alias); res.Matched {
			res.Strategy = team.StrategyAlias
			return res
		}
	}

	return team.Unresolved()
}

func (r *LeagueResolver) resolveTeamDirect(name string) team.Resolution {
	if t, ok := r.teamsByName[normalizeName(name)]; ok {
		return team.Resolution{TeamID: t.ID, Strategy: team.StrategyExact, Matched: true}
	}

	stripped := strings.TrimSpace(r.suffix.ReplaceAllString(name, ""))
	if stripped != "" && stripped != name {
		if t, ok := r.teamsByName[normalizeName(stripped)]; ok {
			return team.Resolution{TeamID: t.ID, Strategy: team.StrategySuffix, Matched: true}
		}
	}

	base := strings.TrimSpace(trailingNumber.ReplaceAllString(name, ""))
	if base != "" && base != name {
		if t, ok := r.teamsByName[normalizeName(base)]; ok {
			return team.Resolution{TeamID: t.ID, Strategy: team.StrategyTrailing, Matched: true}
		}
	}

	prefix := normalizeName(name)
	for key, t := range r.teamsByName {
		if strings.HasPrefix(key, prefix+" ") || strings.HasPrefix(key, prefix+"-") {
			return team.Resolution{TeamID: t.ID, Strategy: team.StrategyPrefix, Matched: true}
		}
	}

	return team.Unresolved()
}

// ResolvePlayer returns the player id for a source name, nil when unknown.
func (r *LeagueResolver) ResolvePlayer(name string) *int64 {
	if id, ok := r.playersByName[normalizeName(name)]; ok {
		out := id
		return &out
	}
	return nil
}

// ResolveSeries matches exact then normalized, creating the series and its
// league link when absent. Series creation is the only entity creation the
// resolver performs on its own; leagues must pre-exist.
func (r *LeagueResolver) ResolveSeries(ctx context.Context, name string) (series.Series, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return series.Series{}, false, fmt.Errorf("%w: series name is required", ErrInvalidInput)
	}

	if sr, ok := r.seriesByName[normalizeName(name)]; ok {
		return sr, false, nil
	}

	created := series.Series{LeagueID: r.leagueID, Name: name}
	id, err := r.service.series.Create(ctx, created)
	if err != nil {
		return series.Series{}, false, fmt.Errorf("create series %q: %w", name, err)
	}
	created.ID = id
	r.seriesByName[normalizeName(name)] = created

	r.service.logger.InfoContext(ctx, "created series",
		"league_id", r.leagueID, "series", name, "series_id", id)

	return created, true, nil
}

// EnsureClub lazily creates the club for a name, caching ids per run.
func (r *LeagueResolver) EnsureClub(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: club name is required", ErrInvalidInput)
	}

	key := normalizeName(name)
	if id, ok := r.clubIDsByName[key]; ok {
		return id, nil
	}

	id, err := r.service.clubs.UpsertByName(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("ensure club %q: %w", name, err)
	}
	r.clubIDsByName[key] = id

	return id, nil
}

// EnsureTeam creates the team once club, series and league are all resolved,
// and registers it in the index so later records match exactly.
func (r *LeagueResolver) EnsureTeam(ctx context.Context, name string, seriesID, clubID int64) (int64, error) {
	t := team.Team{
		LeagueID: r.leagueID,
		SeriesID: seriesID,
		ClubID:   clubID,
		Name:     strings.TrimSpace(name),
	}
	if err := t.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	id, err := r.service.teams.Create(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("create team %q: %w", t.Name, err)
	}
	t.ID = id
	r.teamsByName[normalizeName(t.Name)] = t
	r.teamsByID[id] = t

	r.service.logger.InfoContext(ctx, "created team",
		"league_id", r.leagueID, "team", t.Name, "team_id", id)

	return id, nil
}

// ClubNameForTeam derives the club name from a team name by dropping the
// trailing team number ("Hinsdale PC 1" plays out of club "Hinsdale PC").
func ClubNameForTeam(teamName string) string {
	base := strings.TrimSpace(trailingNumber.ReplaceAllString(strings.TrimSpace(teamName), ""))
	if base == "" {
		return strings.TrimSpace(teamName)
	}
	return base
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
