package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/paddlelab/leaguesync/internal/platform/logging"
)

// Document file names under <dir>/<league>/. Stats is the only optional one.
const (
	rosterFile   = "roster.json"
	scheduleFile = "schedule.json"
	resultsFile  = "results.json"
	statsFile    = "stats.json"
)

var dateFormats = []string{"2006-01-02", "01/02/2006", "January 2, 2006"}

// ParseDate tries the known source date formats in order.
func ParseDate(raw string) (time.Time, error) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// Loader reads one league's scrape documents from a directory tree. A missing
// required file or malformed JSON is structural and fatal for that league;
// individual bad records are skipped and counted.
type Loader struct {
	dir      string
	validate *validator.Validate
	logger   *logging.Logger
}

func NewLoader(dir string, logger *logging.Logger) *Loader {
	if logger == nil {
		logger = logging.Default()
	}
	return &Loader{
		dir:      dir,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

func (l *Loader) Load(ctx context.Context, leagueCode string) (Documents, error) {
	if err := ctx.Err(); err != nil {
		return Documents{}, err
	}

	docs := Documents{LeagueCode: leagueCode}
	base := filepath.Join(l.dir, leagueCode)

	var roster []RosterRecord
	if err := l.readDocument(filepath.Join(base, rosterFile), false, &roster); err != nil {
		return Documents{}, err
	}
	for _, rec := range roster {
		if err := l.validate.Struct(rec); err != nil {
			docs.Skipped++
			l.logger.DebugContext(ctx, "skipping roster record", "league", leagueCode, "error", err)
			continue
		}
		docs.Roster = append(docs.Roster, rec)
	}

	var schedule []ScheduleRecord
	if err := l.readDocument(filepath.Join(base, scheduleFile), false, &schedule); err != nil {
		return Documents{}, err
	}
	for _, rec := range schedule {
		if err := l.validate.Struct(rec); err != nil {
			docs.Skipped++
			l.logger.DebugContext(ctx, "skipping schedule record", "league", leagueCode, "error", err)
			continue
		}
		matchDate, err := ParseDate(rec.Date)
		if err != nil {
			docs.Skipped++
			l.logger.DebugContext(ctx, "skipping schedule record", "league", leagueCode, "error", err)
			continue
		}
		rec.MatchDate = matchDate
		docs.Schedule = append(docs.Schedule, rec)
	}

	var results []ResultRecord
	if err := l.readDocument(filepath.Join(base, resultsFile), false, &results); err != nil {
		return Documents{}, err
	}
	for _, rec := range results {
		if err := l.validate.Struct(rec); err != nil {
			docs.Skipped++
			l.logger.DebugContext(ctx, "skipping result record", "league", leagueCode, "error", err)
			continue
		}
		matchDate, err := ParseDate(rec.Date)
		if err != nil {
			docs.Skipped++
			l.logger.DebugContext(ctx, "skipping result record", "league", leagueCode, "error", err)
			continue
		}
		rec.MatchDate = matchDate
		docs.Results = append(docs.Results, rec)
	}

	var stats []StatsRecord
	if err := l.readDocument(filepath.Join(base, statsFile), true, &stats); err != nil {
		return Documents{}, err
	}
	for _, rec := range stats {
		if err := l.validate.Struct(rec); err != nil {
			docs.Skipped++
			l.logger.DebugContext(ctx, "skipping stats record", "league", leagueCode, "error", err)
			continue
		}
		docs.Stats = append(docs.Stats, rec)
	}

	return docs, nil
}

func (l *Loader) readDocument(path string, optional bool, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		err = errors.Wrapf(err, "read scrape document %s", path)
		return errors.WithHint(err, "check that the collection layer published this league's documents")
	}

	if err := sonic.Unmarshal(raw, out); err != nil {
		err = errors.Wrapf(err, "decode scrape document %s", path)
		return errors.WithHint(err, "the document is not a valid JSON array; re-run the crawler for this league")
	}

	return nil
}
