package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/paddlelab/leaguesync/internal/config"
	"github.com/paddlelab/leaguesync/internal/domain/series"
	"github.com/paddlelab/leaguesync/internal/platform/logging"
)

// ConsolidationService merges series rows that naming drift split into
// duplicates. It runs once per league after resolution and must finish before
// any writer batch, so foreign keys are repointed before new rows land.
type ConsolidationService struct {
	series series.Repository
	logger *logging.Logger
}

func NewConsolidationService(seriesRepo series.Repository, logger *logging.Logger) *ConsolidationService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ConsolidationService{series: seriesRepo, logger: logger}
}

// ConsolidationResult reports what one league pass merged.
type ConsolidationResult struct {
	Groups int
	Merged int
}

func (s *ConsolidationService) ConsolidateLeague(ctx context.Context, leagueID int64, rule config.LeagueRule) (ConsolidationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ConsolidationService.ConsolidateLeague")
	defer span.End()

	out := ConsolidationResult{}
	if leagueID <= 0 {
		return out, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	all, err := s.series.ListByLeague(ctx, leagueID)
	if err != nil {
		return out, fmt.Errorf("list series for consolidation: %w", err)
	}

	groups := map[string][]series.Series{}
	for _, sr := range all {
		key := normalizeName(canonicalSeriesName(sr.Name, rule))
		groups[key] = append(groups[key], sr)
	}

	// Deterministic group order keeps logs and failures stable across runs.
	keys := make([]string, 0, len(groups))
	for key, members := range groups {
		if len(members) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var usage map[int64]series.Usage
	if len(keys) > 0 {
		usage, err = s.series.UsageCounts(ctx, leagueID)
		if err != nil {
			return out, fmt.Errorf("load series usage counts: %w", err)
		}
	}

	for _, key := range keys {
		members := groups[key]
		out.Groups++

		survivor, err := pickSurvivor(members, usage, rule)
		if err != nil {
			return out, err
		}

		for _, member := range members {
			if member.ID == survivor.ID {
				continue
			}
			if err := s.series.Merge(ctx, leagueID, survivor.ID, member.ID); err != nil {
				return out, fmt.Errorf("merge series %d into %d: %w", member.ID, survivor.ID, err)
			}
			out.Merged++
			s.logger.InfoContext(ctx, "merged duplicate series",
				"league_id", leagueID,
				"survivor_id", survivor.ID,
				"duplicate_id", member.ID,
				"duplicate_name", member.Name)
		}

		canonical := canonicalSeriesName(survivor.Name, rule)
		if canonical != survivor.Name {
			if err := s.series.Rename(ctx, survivor.ID, canonical); err != nil {
				return out, fmt.Errorf("rename survivor series %d: %w", survivor.ID, err)
			}
		}
	}

	return out, nil
}

// pickSurvivor prefers the member already carrying the canonical name, then
// the member with the largest combined player and team count. Any tie is
// fatal: guessing a survivor would silently corrupt foreign keys.
func pickSurvivor(members []series.Series, usage map[int64]series.Usage, rule config.LeagueRule) (series.Series, error) {
	var canonicalMatches []series.Series
	for _, member := range members {
		if member.Name == canonicalSeriesName(member.Name, rule) {
			canonicalMatches = append(canonicalMatches, member)
		}
	}
	if len(canonicalMatches) == 1 {
		return canonicalMatches[0], nil
	}
	if len(canonicalMatches) > 1 {
		return series.Series{}, errors.Mark(
			errors.Newf("series %q and %q both carry the canonical name", canonicalMatches[0].Name, canonicalMatches[1].Name),
			ErrAmbiguousMerge,
		)
	}

	best := members[0]
	bestTotal := usage[best.ID].Total()
	tied := false
	for _, member := range members[1:] {
		total := usage[member.ID].Total()
		switch {
		case total > bestTotal:
			best, bestTotal, tied = member, total, false
		case total == bestTotal:
			tied = true
		}
	}
	if tied {
		return series.Series{}, errors.Mark(
			errors.Newf("no series in group %q wins the size heuristic (%d rows each)", members[0].Name, bestTotal),
			ErrAmbiguousMerge,
		)
	}

	return best, nil
}

// canonicalSeriesName strips the league's configured prefix words, keeping
// the remainder ("Division Series 3" with strip "Division" becomes
// "Series 3").
func canonicalSeriesName(name string, rule config.LeagueRule) string {
	out := strings.TrimSpace(name)
	for _, prefix := range rule.SeriesCanonicalStrips {
		prefix = strings.TrimSpace(prefix)
		if prefix == "" {
			continue
		}
		if len(out) > len(prefix) && strings.EqualFold(out[:len(prefix)], prefix) && out[len(prefix)] == ' ' {
			out = strings.TrimSpace(out[len(prefix)+1:])
		}
	}
	return out
}
