package usecase

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"

	"github.com/paddlelab/leaguesync/internal/domain/run"
)

// RenderReportJSON renders the run report for machine consumers.
func RenderReportJSON(report run.Report) ([]byte, error) {
	out, err := sonic.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode run report: %w", err)
	}
	return out, nil
}

// RenderReportText renders the operator-facing summary.
func RenderReportText(report run.Report) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	fmt.Fprintf(buf, "league %s: %s", report.LeagueCode, report.State)
	if report.Partial {
		buf.WriteString(" (partial)")
	}
	buf.WriteString("\n")

	if !report.FinishedAt.IsZero() {
		fmt.Fprintf(buf, "  duration: %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	}
	fmt.Fprintf(buf, "  loaded: %d records, %d skipped at load\n", report.LoadedRecords, report.SkippedRecords)
	fmt.Fprintf(buf, "  resolution: %d unresolved teams, %d series created, %d series merged\n",
		report.UnresolvedTeams, report.CreatedSeries, report.MergedSeries)

	writeStatsLine(buf, "players", report.Players)
	writeStatsLine(buf, "schedule", report.Schedule)
	writeStatsLine(buf, "matches", report.Matches)
	writeStatsLine(buf, "series_stats", report.SeriesStats)

	fmt.Fprintf(buf, "  scores: %d undetermined winners, %d issues\n",
		report.UndeterminedWinners, report.ScoreIssues)

	integrity := report.Integrity
	fmt.Fprintf(buf, "  integrity: %d teamless (%d auto-assigned, %d flagged), %d orphan rows (%d remapped, %d unmapped), %d duplicates\n",
		integrity.TeamlessPlayers, integrity.AutoAssigned, integrity.FlaggedPlayers,
		integrity.OrphanRows, integrity.RemappedRows, integrity.UnmappedOrphans,
		integrity.DuplicateRows)

	if report.Failure != "" {
		fmt.Fprintf(buf, "  failure: %s\n", report.Failure)
	}

	return buf.String()
}

func writeStatsLine(buf *bytebufferpool.ByteBuffer, table string, stats run.WriteStats) {
	fmt.Fprintf(buf, "  %s: %d total, %d inserted, %d updated, %d skipped, %d errored\n",
		table, stats.Total, stats.Inserted, stats.Updated, stats.Skipped, stats.Errored)
}
