package score

import (
	"regexp"
	"strconv"
	"strings"
)

// Side is the computed winner of a match.
type Side string

const (
	SideHome         Side = "home"
	SideAway         Side = "away"
	SideUndetermined Side = "undetermined"
)

// Policy carries the league-specific scoring rules. Zero value means standard
// best-of-three with a value>=10 third set treated as a super-tiebreak.
type Policy struct {
	// ThirdSetAlwaysTiebreak forces super-tiebreak handling of the third set
	// regardless of the game values.
	ThirdSetAlwaysTiebreak bool

	// LowDataQuality suppresses winner determination when any set looks like
	// an in-progress match (both sides under 6 games with a small
	// differential). Sources flagged this way record partial scores.
	LowDataQuality bool

	// SuperTiebreakMin is the value that marks a third set as a
	// super-tiebreak. Defaults to 10.
	SuperTiebreakMin int

	// IncompleteMaxDiff is the game differential at or under which a
	// both-sides-under-6 set is treated as incomplete. Defaults to 2.
	IncompleteMaxDiff int
}

func (p Policy) superTiebreakMin() int {
	if p.SuperTiebreakMin > 0 {
		return p.SuperTiebreakMin
	}
	return 10
}

func (p Policy) incompleteMaxDiff() int {
	if p.IncompleteMaxDiff > 0 {
		return p.IncompleteMaxDiff
	}
	return 2
}

type IssueCode string

const (
	IssueEmptyScore    IssueCode = "empty_score"
	IssueMalformedSet  IssueCode = "malformed_set"
	IssueImpossibleSet IssueCode = "impossible_set"
	IssueIncompleteSet IssueCode = "incomplete_set"
)

// Issue is one validation problem found while parsing. Issues never block a
// best-effort result.
type Issue struct {
	Code  IssueCode
	Token string
}

// Set is one parsed set score.
type Set struct {
	Home          int
	Away          int
	SuperTiebreak bool
}

// Result is the outcome of parsing one raw score string.
type Result struct {
	Raw            string
	Sets           []Set
	HomeSets       int
	AwaySets       int
	SuperTiebreak  bool
	Winner         Side
	Suppressed     bool
	Issues         []Issue
}

func (r Result) HasIssues() bool {
	return len(r.Issues) > 0
}

var tiebreakAnnotation = regexp.MustCompile(`\s*\[[^\]]*\]`)

// Parse splits a comma-separated score string into sets and determines the
// winning side under the given policy. Bracketed tiebreak sub-scores such as
// "6-7 [3-7]" are retained in Raw but ignored for set counting. Malformed
// tokens are recorded as issues and skipped; Parse never fails.
func Parse(raw string, policy Policy) Result {
	res := Result{
		Raw:    strings.TrimSpace(raw),
		Winner: SideUndetermined,
	}

	cleaned := strings.TrimSpace(tiebreakAnnotation.ReplaceAllString(res.Raw, ""))
	if cleaned == "" {
		res.Issues = append(res.Issues, Issue{Code: IssueEmptyScore})
		return res
	}

	for _, token := range strings.Split(cleaned, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		home, away, ok := parseSetToken(token)
		if !ok {
			res.Issues = append(res.Issues, Issue{Code: IssueMalformedSet, Token: token})
			continue
		}
		res.Sets = append(res.Sets, Set{Home: home, Away: away})
	}

	if len(res.Sets) == 0 {
		return res
	}

	if len(res.Sets) == 3 {
		third := &res.Sets[2]
		min := policy.superTiebreakMin()
		if policy.ThirdSetAlwaysTiebreak || third.Home >= min || third.Away >= min {
			third.SuperTiebreak = true
			res.SuperTiebreak = true
		}
	}

	if policy.LowDataQuality && looksIncomplete(res.Sets, policy) {
		for _, set := range res.Sets {
			if incompleteSet(set, policy) {
				res.Issues = append(res.Issues, Issue{
					Code:  IssueIncompleteSet,
					Token: strconv.Itoa(set.Home) + "-" + strconv.Itoa(set.Away),
				})
			}
		}
		res.Suppressed = true
		return res
	}

	for _, set := range res.Sets {
		switch {
		case set.Home > set.Away:
			res.HomeSets++
		case set.Away > set.Home:
			res.AwaySets++
		default:
			// An equal-game set cannot be final; award neither side.
			res.Issues = append(res.Issues, Issue{
				Code:  IssueImpossibleSet,
				Token: strconv.Itoa(set.Home) + "-" + strconv.Itoa(set.Away),
			})
		}
	}

	switch {
	case res.HomeSets > res.AwaySets:
		res.Winner = SideHome
	case res.AwaySets > res.HomeSets:
		res.Winner = SideAway
	}

	return res
}

func parseSetToken(token string) (int, int, bool) {
	parts := strings.Split(token, "-")
	if len(parts) != 2 {
		return 0, 0, false
	}
	home, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || home < 0 {
		return 0, 0, false
	}
	away, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || away < 0 {
		return 0, 0, false
	}
	return home, away, true
}

func looksIncomplete(sets []Set, policy Policy) bool {
	for _, set := range sets {
		if incompleteSet(set, policy) {
			return true
		}
	}
	return false
}

func incompleteSet(set Set, policy Policy) bool {
	if set.SuperTiebreak {
		return false
	}
	if set.Home >= 6 || set.Away >= 6 {
		return false
	}
	diff := set.Home - set.Away
	if diff < 0 {
		diff = -diff
	}
	return diff <= policy.incompleteMaxDiff()
}
