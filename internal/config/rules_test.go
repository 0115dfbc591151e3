package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRules(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadRuleSet(t *testing.T) {
	path := writeRules(t, `{
		"version": 3,
		"leagues": [
			{
				"code": "chicago",
				"third_set_always_tiebreak": true,
				"team_aliases": {"Hinsdale PC": "Hinsdale Paddle Club"},
				"series_canonical_strips": ["Division"]
			}
		],
		"orphan_remaps": [
			{"orphan_league_id": 4, "current_league_id": 9, "note": "2019 relaunch"}
		]
	}`)

	rs, err := LoadRuleSet(path)
	require.NoError(t, err)
	assert.Equal(t, 3, rs.Version)

	rule := rs.ForLeague("chicago")
	assert.True(t, rule.ThirdSetAlwaysTiebreak)
	assert.Equal(t, "Hinsdale Paddle Club", rule.TeamAliases["Hinsdale PC"])
	assert.True(t, rule.ScorePolicy().ThirdSetAlwaysTiebreak)

	require.Len(t, rs.OrphanRemaps, 1)
	assert.Equal(t, int64(4), rs.OrphanRemaps[0].OrphanLeagueID)
}

func TestLoadRuleSet_UnknownLeagueGetsZeroRule(t *testing.T) {
	path := writeRules(t, `{"version": 1, "leagues": []}`)

	rs, err := LoadRuleSet(path)
	require.NoError(t, err)

	rule := rs.ForLeague("boston")
	assert.Equal(t, "boston", rule.Code)
	assert.False(t, rule.LowDataQuality)
}

func TestLoadRuleSet_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing version":    `{"leagues": []}`,
		"league without code": `{"version": 1, "leagues": [{}]}`,
		"bad suffix pattern": `{"version": 1, "leagues": [{"code": "x", "series_suffix_pattern": "["}]}`,
		"self remap":         `{"version": 1, "orphan_remaps": [{"orphan_league_id": 2, "current_league_id": 2}]}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadRuleSet(writeRules(t, body))
			assert.Error(t, err)
		})
	}
}

func TestSeriesSuffixDefault(t *testing.T) {
	rule := LeagueRule{Code: "chicago"}
	re := rule.SeriesSuffix()

	assert.Equal(t, "Glen Ellyn", re.ReplaceAllString("Glen Ellyn - Series 3", ""))
	assert.Equal(t, "Glen Ellyn", re.ReplaceAllString("Glen Ellyn - series II", ""))
	assert.Equal(t, "Glen Ellyn", re.ReplaceAllString("Glen Ellyn", ""))
}
