package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/bytedance/sonic"

	"github.com/paddlelab/leaguesync/internal/domain/score"
)

// LeagueRule is the per-league reconciliation policy. Rules live in a
// versioned JSON document next to the deployment, not in code, because alias
// tables and score quirks change per season.
type LeagueRule struct {
	Code string `json:"code"`

	// Score parsing.
	ThirdSetAlwaysTiebreak bool `json:"third_set_always_tiebreak"`
	LowDataQuality         bool `json:"low_data_quality"`
	SuperTiebreakMin       int  `json:"super_tiebreak_min,omitempty"`
	IncompleteMaxDiff      int  `json:"incomplete_max_diff,omitempty"`

	// TeamAliases maps a scraped team name to the stored one. Keys are
	// matched verbatim after whitespace trimming.
	TeamAliases map[string]string `json:"team_aliases,omitempty"`

	// SeriesSuffixPattern strips a trailing series qualifier from team names
	// during resolution. Empty means the built-in default.
	SeriesSuffixPattern string `json:"series_suffix_pattern,omitempty"`

	// SeriesCanonicalStrips are prefixes removed before comparing series
	// names for duplicate consolidation.
	SeriesCanonicalStrips []string `json:"series_canonical_strips,omitempty"`
}

// ScorePolicy converts the rule's scoring fields to the parser policy.
func (r LeagueRule) ScorePolicy() score.Policy {
	return score.Policy{
		ThirdSetAlwaysTiebreak: r.ThirdSetAlwaysTiebreak,
		LowDataQuality:         r.LowDataQuality,
		SuperTiebreakMin:       r.SuperTiebreakMin,
		IncompleteMaxDiff:      r.IncompleteMaxDiff,
	}
}

// OrphanRemap pairs a dead league id with the live one it should point to.
type OrphanRemap struct {
	OrphanLeagueID  int64  `json:"orphan_league_id"`
	CurrentLeagueID int64  `json:"current_league_id"`
	Note            string `json:"note,omitempty"`
}

// RuleSet is the full rules document. Version is bumped on every edit so runs
// can record which revision they applied.
type RuleSet struct {
	Version      int          `json:"version"`
	Leagues      []LeagueRule `json:"leagues"`
	OrphanRemaps []OrphanRemap `json:"orphan_remaps,omitempty"`

	byCode map[string]LeagueRule
}

const defaultSeriesSuffixPattern = `\s*-\s*series\s+\S+$`

// DefaultRuleSet is used when no rules file is configured. It carries no
// aliases and standard scoring for every league.
func DefaultRuleSet() RuleSet {
	return NewRuleSet(0, nil, nil)
}

// NewRuleSet builds an indexed rules document in code. Production rules come
// from LoadRuleSet; this is for wiring and tests.
func NewRuleSet(version int, leagues []LeagueRule, remaps []OrphanRemap) RuleSet {
	rs := RuleSet{Version: version, Leagues: leagues, OrphanRemaps: remaps}
	rs.index()
	return rs
}

// LoadRuleSet reads and validates a rules document.
func LoadRuleSet(path string) (RuleSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("read league rules %s: %w", path, err)
	}

	var rs RuleSet
	if err := sonic.Unmarshal(raw, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("decode league rules %s: %w", path, err)
	}
	if rs.Version < 1 {
		return RuleSet{}, fmt.Errorf("league rules %s: version must be >= 1", path)
	}

	for i, rule := range rs.Leagues {
		if rule.Code == "" {
			return RuleSet{}, fmt.Errorf("league rules %s: leagues[%d] has no code", path, i)
		}
		if rule.SeriesSuffixPattern != "" {
			if _, err := regexp.Compile(rule.SeriesSuffixPattern); err != nil {
				return RuleSet{}, fmt.Errorf("league rules %s: %s series_suffix_pattern: %w", path, rule.Code, err)
			}
		}
	}
	for i, remap := range rs.OrphanRemaps {
		if remap.OrphanLeagueID <= 0 || remap.CurrentLeagueID <= 0 {
			return RuleSet{}, fmt.Errorf("league rules %s: orphan_remaps[%d] has non-positive ids", path, i)
		}
		if remap.OrphanLeagueID == remap.CurrentLeagueID {
			return RuleSet{}, fmt.Errorf("league rules %s: orphan_remaps[%d] maps a league to itself", path, i)
		}
	}

	rs.index()
	return rs, nil
}

func (rs *RuleSet) index() {
	rs.byCode = make(map[string]LeagueRule, len(rs.Leagues))
	for _, rule := range rs.Leagues {
		rs.byCode[rule.Code] = rule
	}
}

// ForLeague returns the rule for a league code, or a zero rule when the
// document has no entry for it.
func (rs RuleSet) ForLeague(code string) LeagueRule {
	if rule, ok := rs.byCode[code]; ok {
		return rule
	}
	return LeagueRule{Code: code}
}

// SeriesSuffix compiles the league's suffix pattern, falling back to the
// built-in one. Patterns are validated at load time; a broken default here is
// a programmer error.
func (r LeagueRule) SeriesSuffix() *regexp.Regexp {
	pattern := r.SeriesSuffixPattern
	if pattern == "" {
		pattern = defaultSeriesSuffixPattern
	}
	return regexp.MustCompile("(?i)" + pattern)
}
