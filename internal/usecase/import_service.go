package usecase

import (
	"context"
	"fmt"

	"github.com/paddlelab/leaguesync/internal/domain/match"
	"github.com/paddlelab/leaguesync/internal/domain/player"
	"github.com/paddlelab/leaguesync/internal/domain/run"
	"github.com/paddlelab/leaguesync/internal/domain/schedule"
	"github.com/paddlelab/leaguesync/internal/domain/score"
	"github.com/paddlelab/leaguesync/internal/domain/seriesstat"
	"github.com/paddlelab/leaguesync/internal/infrastructure/source"
	"github.com/paddlelab/leaguesync/internal/platform/logging"
)

const (
	defaultBatchSize       = 500
	defaultRowErrorCeiling = 500
)

// ImportService is the upsert batch writer. Each batch is one transaction
// committed before the next begins, so a crash between batches leaves valid
// partial progress that a re-run converges over. Cancellation is honored
// between batches only, never mid-batch.
type ImportService struct {
	players  player.Repository
	schedule schedule.Repository
	matches  match.Repository
	stats    seriesstat.Repository

	batchSize    int
	errorCeiling int
	logger       *logging.Logger
}

func NewImportService(
	players player.Repository,
	scheduleRepo schedule.Repository,
	matches match.Repository,
	stats seriesstat.Repository,
	batchSize int,
	errorCeiling int,
	logger *logging.Logger,
) *ImportService {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if errorCeiling <= 0 {
		errorCeiling = defaultRowErrorCeiling
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ImportService{
		players:      players,
		schedule:     scheduleRepo,
		matches:      matches,
		stats:        stats,
		batchSize:    batchSize,
		errorCeiling: errorCeiling,
		logger:       logger,
	}
}

// ImportRoster resolves and upserts player rows. Teams named on the roster
// are created on demand once club, series and league are all known.
func (s *ImportService) ImportRoster(ctx context.Context, res *LeagueResolver, records []source.RosterRecord, report *run.Report) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ImportService.ImportRoster")
	defer span.End()

	report.Players.Total += len(records)

	rows := make([]player.Player, 0, len(records))
	for _, rec := range records {
		sr, created, err := res.ResolveSeries(ctx, rec.SeriesName)
		if err != nil {
			return fmt.Errorf("resolve series for roster record %q: %w", rec.ExternalID, err)
		}
		if created {
			report.CreatedSeries++
		}

		if rec.TeamName == "" {
			// Without a team name there is no club to hang the player on.
			report.Players.Skipped++
			continue
		}

		clubID, err := res.EnsureClub(ctx, ClubNameForTeam(rec.TeamName))
		if err != nil {
			return fmt.Errorf("ensure club for roster record %q: %w", rec.ExternalID, err)
		}

		var teamID *int64
		if resolution := res.ResolveTeam(rec.TeamName); resolution.Matched {
			teamID = &resolution.TeamID
		} else {
			id, err := res.EnsureTeam(ctx, rec.TeamName, sr.ID, clubID)
			if err != nil {
				return fmt.Errorf("ensure team for roster record %q: %w", rec.ExternalID, err)
			}
			teamID = &id
		}

		p := player.Player{
			ExternalID: rec.ExternalID,
			LeagueID:   res.LeagueID(),
			ClubID:     clubID,
			SeriesID:   sr.ID,
			TeamID:     teamID,
			Name:       rec.Name,
			Rating:     rec.Rating,
			Active:     rec.Active,
		}
		if err := p.Validate(); err != nil {
			report.Players.Skipped++
			continue
		}
		rows = append(rows, p)
	}

	for start := 0; start < len(rows); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+s.batchSize, len(rows))

		outcome, err := s.players.UpsertBatch(ctx, rows[start:end])
		if err != nil {
			return fmt.Errorf("upsert players batch: %w", err)
		}
		report.Players.ApplyOutcome(outcome)

		if err := s.checkCeiling(report); err != nil {
			return err
		}
	}

	return nil
}

// ImportSchedule upserts planned matches. Unresolved team names still produce
// rows with null team references for the validator to pick up.
func (s *ImportService) ImportSchedule(ctx context.Context, res *LeagueResolver, records []source.ScheduleRecord, report *run.Report) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ImportService.ImportSchedule")
	defer span.End()

	report.Schedule.Total += len(records)

	rows := make([]schedule.Entry, 0, len(records))
	for _, rec := range records {
		entry := schedule.Entry{
			LeagueID:     res.LeagueID(),
			MatchDate:    rec.MatchDate,
			MatchTime:    rec.Time,
			HomeTeamName: rec.HomeTeam,
			AwayTeamName: rec.AwayTeam,
			Location:     rec.Location,
		}
		entry.HomeTeamID = s.resolveSide(res, rec.HomeTeam, report)
		entry.AwayTeamID = s.resolveSide(res, rec.AwayTeam, report)

		if err := entry.Validate(); err != nil {
			report.Schedule.Skipped++
			continue
		}
		rows = append(rows, entry)
	}

	for start := 0; start < len(rows); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+s.batchSize, len(rows))

		outcome, err := s.schedule.UpsertBatch(ctx, rows[start:end])
		if err != nil {
			return fmt.Errorf("upsert schedule batch: %w", err)
		}
		report.Schedule.ApplyOutcome(outcome)

		if err := s.checkCeiling(report); err != nil {
			return err
		}
	}

	return nil
}

// ImportResults upserts played matches, deriving each winner from the raw
// score string under the league's policy. An unparseable score downgrades to
// an undetermined winner, never a skipped row.
func (s *ImportService) ImportResults(ctx context.Context, res *LeagueResolver, records []source.ResultRecord, policy score.Policy, report *run.Report) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ImportService.ImportResults")
	defer span.End()

	report.Matches.Total += len(records)

	if err := res.RefreshPlayers(ctx); err != nil {
		return err
	}

	rows := make([]match.Result, 0, len(records))
	for _, rec := range records {
		result := match.Result{
			LeagueID:     res.LeagueID(),
			MatchDate:    rec.MatchDate,
			HomeTeamName: rec.HomeTeam,
			AwayTeamName: rec.AwayTeam,
			RawScore:     rec.Score,
		}
		result.HomeTeamID = s.resolveSide(res, rec.HomeTeam, report)
		result.AwayTeamID = s.resolveSide(res, rec.AwayTeam, report)
		if rec.HomePlayer != "" {
			result.HomePlayerID = res.ResolvePlayer(rec.HomePlayer)
		}
		if rec.AwayPlayer != "" {
			result.AwayPlayerID = res.ResolvePlayer(rec.AwayPlayer)
		}

		parsed := score.Parse(rec.Score, policy)
		result.Winner = matchSide(parsed.Winner)
		report.ScoreIssues += len(parsed.Issues)
		if result.Winner == match.SideUndetermined {
			report.UndeterminedWinners++
		}

		if err := result.Validate(); err != nil {
			report.Matches.Skipped++
			continue
		}
		rows = append(rows, result)
	}

	for start := 0; start < len(rows); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+s.batchSize, len(rows))

		outcome, err := s.matches.UpsertBatch(ctx, rows[start:end])
		if err != nil {
			return fmt.Errorf("upsert matches batch: %w", err)
		}
		report.Matches.ApplyOutcome(outcome)

		if err := s.checkCeiling(report); err != nil {
			return err
		}
	}

	return nil
}

// ImportStats upserts standings rows. A stat row is meaningless without a
// resolved team, so unresolved names are skipped rather than written null.
func (s *ImportService) ImportStats(ctx context.Context, res *LeagueResolver, records []source.StatsRecord, report *run.Report) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ImportService.ImportStats")
	defer span.End()

	report.SeriesStats.Total += len(records)

	rows := make([]seriesstat.Stat, 0, len(records))
	for _, rec := range records {
		resolution := res.ResolveTeam(rec.TeamName)
		if !resolution.Matched {
			report.UnresolvedTeams++
			report.SeriesStats.Skipped++
			continue
		}
		t, ok := res.TeamByID(resolution.TeamID)
		if !ok {
			report.SeriesStats.Skipped++
			continue
		}

		stat := seriesstat.Stat{
			LeagueID: res.LeagueID(),
			SeriesID: t.SeriesID,
			TeamID:   t.ID,
			Points:   rec.Points,
			Wins:     rec.Wins,
			Losses:   rec.Losses,
		}
		if err := stat.Validate(); err != nil {
			report.SeriesStats.Skipped++
			continue
		}
		rows = append(rows, stat)
	}

	for start := 0; start < len(rows); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+s.batchSize, len(rows))

		outcome, err := s.stats.UpsertBatch(ctx, rows[start:end])
		if err != nil {
			return fmt.Errorf("upsert series stats batch: %w", err)
		}
		report.SeriesStats.ApplyOutcome(outcome)

		if err := s.checkCeiling(report); err != nil {
			return err
		}
	}

	return nil
}

func (s *ImportService) resolveSide(res *LeagueResolver, teamName string, report *run.Report) *int64 {
	resolution := res.ResolveTeam(teamName)
	if !resolution.Matched {
		report.UnresolvedTeams++
		return nil
	}
	id := resolution.TeamID
	return &id
}

func (s *ImportService) checkCeiling(report *run.Report) error {
	if total := report.TotalErrored(); total > s.errorCeiling {
		return fmt.Errorf("%w: %d row errors exceed ceiling %d", ErrTooManyRowErrors, total, s.errorCeiling)
	}
	return nil
}

func matchSide(side score.Side) match.Side {
	switch side {
	case score.SideHome:
		return match.SideHome
	case score.SideAway:
		return match.SideAway
	default:
		return match.SideUndetermined
	}
}
