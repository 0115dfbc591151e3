package run

import "time"

// State tracks a league run through its pipeline. NeedsRepair is terminal for
// automation: another repair pass or manual intervention is required before a
// re-run.
type State string

const (
	StateLoaded       State = "loaded"
	StateResolved     State = "resolved"
	StateConsolidated State = "consolidated"
	StateWritten      State = "written"
	StateValidated    State = "validated"
	StateClean        State = "clean"
	StateNeedsRepair  State = "needs_repair"
	StateFailed       State = "failed"
)

// RowError records one failed row inside a batch. Key identifies the row by
// its natural key for operator follow-up.
type RowError struct {
	Index int    `json:"index"`
	Key   string `json:"key"`
	Err   string `json:"error"`
}

// BatchOutcome is what a repository reports back for one committed batch.
type BatchOutcome struct {
	Inserted int
	Updated  int
	Errors   []RowError
}

// WriteStats accumulates writer counters across all batches of a run.
type WriteStats struct {
	Total    int        `json:"total"`
	Inserted int        `json:"inserted"`
	Updated  int        `json:"updated"`
	Skipped  int        `json:"skipped"`
	Errored  int        `json:"errored"`
	Samples  []RowError `json:"samples,omitempty"`
}

func (s *WriteStats) Add(other WriteStats) {
	s.Total += other.Total
	s.Inserted += other.Inserted
	s.Updated += other.Updated
	s.Skipped += other.Skipped
	s.Errored += other.Errored
	for _, sample := range other.Samples {
		if len(s.Samples) >= maxErrorSamples {
			break
		}
		s.Samples = append(s.Samples, sample)
	}
}

// ApplyOutcome folds one committed batch into the running counters.
func (s *WriteStats) ApplyOutcome(o BatchOutcome) {
	s.Inserted += o.Inserted
	s.Updated += o.Updated
	s.Errored += len(o.Errors)
	for _, rowErr := range o.Errors {
		if len(s.Samples) >= maxErrorSamples {
			break
		}
		s.Samples = append(s.Samples, rowErr)
	}
}

const maxErrorSamples = 20

// Report is always produced, even on partial failure, so operators never have
// to infer success from logs.
type Report struct {
	LeagueCode string    `json:"league_code"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	State      State     `json:"state"`
	Partial    bool      `json:"partial"`

	LoadedRecords   int `json:"loaded_records"`
	SkippedRecords  int `json:"skipped_records"`
	UnresolvedTeams int `json:"unresolved_teams"`
	CreatedSeries   int `json:"created_series"`
	MergedSeries    int `json:"merged_series"`

	Players     WriteStats `json:"players"`
	Schedule    WriteStats `json:"schedule"`
	Matches     WriteStats `json:"matches"`
	SeriesStats WriteStats `json:"series_stats"`

	UndeterminedWinners int `json:"undetermined_winners"`
	ScoreIssues         int `json:"score_issues"`

	Integrity IntegritySummary `json:"integrity"`

	Failure string `json:"failure,omitempty"`
}

// TotalErrored sums write errors across all tables; the writer's fail-fast
// ceiling applies to this run-wide count.
func (r *Report) TotalErrored() int {
	return r.Players.Errored + r.Schedule.Errored + r.Matches.Errored + r.SeriesStats.Errored
}

// IntegritySummary is the validator's contribution to the run report.
type IntegritySummary struct {
	TeamlessPlayers int `json:"teamless_players"`
	AutoAssigned    int `json:"auto_assigned"`
	FlaggedPlayers  int `json:"flagged_players"`
	OrphanRows      int `json:"orphan_rows"`
	RemappedRows    int `json:"remapped_rows"`
	UnmappedOrphans int `json:"unmapped_orphans"`
	DuplicateRows   int `json:"duplicate_rows"`
}

func (s IntegritySummary) Clean() bool {
	return s.FlaggedPlayers == 0 && s.UnmappedOrphans == 0 && s.DuplicateRows == 0
}
