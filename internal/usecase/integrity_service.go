package usecase

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/paddlelab/leaguesync/internal/domain/match"
	"github.com/paddlelab/leaguesync/internal/domain/orphanmap"
	"github.com/paddlelab/leaguesync/internal/domain/player"
	"github.com/paddlelab/leaguesync/internal/domain/run"
	"github.com/paddlelab/leaguesync/internal/domain/schedule"
	"github.com/paddlelab/leaguesync/internal/domain/seriesstat"
	"github.com/paddlelab/leaguesync/internal/platform/logging"
)

const defaultAssignConfidence = 0.8

// IntegrityService is the post-import sweep. Its three scans are read-only
// and run concurrently; repairs are applied sequentially afterwards so each
// fix works against a settled view.
type IntegrityService struct {
	players  player.Repository
	matches  match.Repository
	schedule schedule.Repository
	stats    seriesstat.Repository
	orphans  orphanmap.Repository

	confidence float64
	logger     *logging.Logger
}

func NewIntegrityService(
	players player.Repository,
	matches match.Repository,
	scheduleRepo schedule.Repository,
	stats seriesstat.Repository,
	orphans orphanmap.Repository,
	confidence float64,
	logger *logging.Logger,
) *IntegrityService {
	if confidence <= 0 || confidence > 1 {
		confidence = defaultAssignConfidence
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &IntegrityService{
		players:    players,
		matches:    matches,
		schedule:   scheduleRepo,
		stats:      stats,
		orphans:    orphans,
		confidence: confidence,
		logger:     logger,
	}
}

func (s *IntegrityService) ValidateAndRepair(ctx context.Context, leagueID int64) (run.IntegritySummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IntegrityService.ValidateAndRepair")
	defer span.End()

	summary := run.IntegritySummary{}
	if leagueID <= 0 {
		return summary, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	var (
		teamless   []player.Player
		orphanRefs []orphanmap.OrphanRef
		duplicates int
	)

	scans := pool.New().WithErrors().WithContext(ctx)
	scans.Go(func(ctx context.Context) error {
		var err error
		teamless, err = s.players.ListTeamlessWithMatches(ctx, leagueID)
		if err != nil {
			return fmt.Errorf("scan teamless players: %w", err)
		}
		return nil
	})
	scans.Go(func(ctx context.Context) error {
		var err error
		orphanRefs, err = s.orphans.ScanOrphans(ctx)
		if err != nil {
			return fmt.Errorf("scan orphan league refs: %w", err)
		}
		return nil
	})
	scans.Go(func(ctx context.Context) error {
		var err error
		duplicates, err = s.countDuplicates(ctx, leagueID)
		return err
	})
	if err := scans.Wait(); err != nil {
		return summary, err
	}

	summary.TeamlessPlayers = len(teamless)
	summary.DuplicateRows = duplicates
	for _, ref := range orphanRefs {
		summary.OrphanRows += ref.Rows
	}

	if err := s.repairTeamless(ctx, teamless, &summary); err != nil {
		return summary, err
	}
	if err := s.repairOrphans(ctx, orphanRefs, &summary); err != nil {
		return summary, err
	}

	return summary, nil
}

// repairTeamless assigns each flagged player the team they appear under most
// often in match history, but only when that team's share clears the
// confidence threshold. Anything below it stays flagged for manual review.
func (s *IntegrityService) repairTeamless(ctx context.Context, teamless []player.Player, summary *run.IntegritySummary) error {
	for _, p := range teamless {
		counts, err := s.matches.TeamAppearanceCounts(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("count appearances for player %d: %w", p.ID, err)
		}

		total := 0
		bestTeam := int64(0)
		bestCount := 0
		for teamID, count := range counts {
			total += count
			if count > bestCount {
				bestTeam, bestCount = teamID, count
			}
		}

		if total == 0 || float64(bestCount)/float64(total) < s.confidence {
			summary.FlaggedPlayers++
			s.logger.WarnContext(ctx, "player team assignment below confidence",
				"player_id", p.ID, "external_id", p.ExternalID, "matches", total, "best_share", bestCount)
			continue
		}

		if err := s.players.AssignTeam(ctx, p.ID, bestTeam); err != nil {
			return fmt.Errorf("assign team %d to player %d: %w", bestTeam, p.ID, err)
		}
		summary.AutoAssigned++
	}

	return nil
}

// repairOrphans remaps dangling league ids through the versioned lookup.
// Orphans without a mapping entry are reported, never dropped.
func (s *IntegrityService) repairOrphans(ctx context.Context, refs []orphanmap.OrphanRef, summary *run.IntegritySummary) error {
	if len(refs) == 0 {
		return nil
	}

	mappings, err := s.orphans.List(ctx)
	if err != nil {
		return fmt.Errorf("load orphan mappings: %w", err)
	}
	currentByOrphan := make(map[int64]int64, len(mappings))
	for _, m := range mappings {
		currentByOrphan[m.OrphanLeagueID] = m.CurrentLeagueID
	}

	for _, ref := range refs {
		current, ok := currentByOrphan[ref.LeagueID]
		if !ok {
			summary.UnmappedOrphans += ref.Rows
			s.logger.WarnContext(ctx, "orphan league id has no mapping",
				"table", ref.Table, "league_id", ref.LeagueID, "rows", ref.Rows)
			continue
		}

		remapped, err := s.orphans.RemapLeague(ctx, ref.Table, ref.LeagueID, current)
		if err != nil {
			return fmt.Errorf("remap orphan league %d in %s: %w", ref.LeagueID, ref.Table, err)
		}
		summary.RemappedRows += remapped
	}

	return nil
}

func (s *IntegrityService) countDuplicates(ctx context.Context, leagueID int64) (int, error) {
	total := 0

	count, err := s.schedule.DuplicateKeyCount(ctx, leagueID)
	if err != nil {
		return 0, fmt.Errorf("count schedule duplicates: %w", err)
	}
	total += count

	count, err = s.matches.DuplicateKeyCount(ctx, leagueID)
	if err != nil {
		return 0, fmt.Errorf("count match duplicates: %w", err)
	}
	total += count

	count, err = s.stats.DuplicateKeyCount(ctx, leagueID)
	if err != nil {
		return 0, fmt.Errorf("count series stat duplicates: %w", err)
	}
	total += count

	return total, nil
}
