package riskengine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRulesetEmptyPathUsesDefaults(t *testing.T) {
	rs, err := LoadRuleset("")
	require.NoError(t, err)
	require.NoError(t, rs.Validate())
	assert.Equal(t, DefaultThresholds(), rs.DefaultThresholds)
	assert.Equal(t, 60, rs.WarningWindowDays)
}

func TestLoadRulesetFromFile(t *testing.T) {
	path := writeRules(t, `
thresholds:
  intolerable: 500
  substantial: 250
  important: 90
  possible: 30
tiers:
  intolerable: {label: Unacceptable, action: Halt work, color: "#900", sla_days: 0, sla_label: Now}
  substantial: {label: Major, action: Fix fast, color: "#940", sla_days: 14, sla_label: 2 weeks}
  important: {label: Moderate, action: Plan fix, color: "#990", sla_days: 45, sla_label: 6 weeks}
  possible: {label: Minor, action: Watch, color: "#090", sla_days: 90, sla_label: 3 months}
  negligible: {label: Trivial, action: Monitor, color: "#099", sla_days: 365, sla_label: Next review}
validity_years:
  highly_hazardous: {training: 1, health: 1}
  hazardous: {training: 2, health: 2}
  low: {training: 4, health: 6}
warning_window_days: 30
`)

	rs, err := LoadRuleset(path)
	require.NoError(t, err)

	c := rs.Classify(260, rs.DefaultThresholds)
	assert.Equal(t, TierSubstantial, c.Tier)
	assert.Equal(t, "Major", c.Label)

	d := rs.SuggestDeadline(260, rs.DefaultThresholds, noon(2024, time.June, 1))
	assert.Equal(t, "2024-06-15", d.Date.String())
	assert.Equal(t, "2 weeks", d.Label)

	v, err := rs.CheckValidity(mustDate(t, "2020-01-01"), ClassLow, KindHealth, noon(2024, time.June, 1))
	require.NoError(t, err)
	require.NotNil(t, v.DueDate)
	assert.Equal(t, "2026-01-01", v.DueDate.String())
}

func TestLoadRulesetRejectsBadTables(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unordered thresholds", `
thresholds: {intolerable: 70, substantial: 200, important: 100, possible: 20}
tiers:
  intolerable: {label: A, sla_days: 0}
  substantial: {label: B, sla_days: 30}
  important: {label: C, sla_days: 60}
  possible: {label: D, sla_days: 90}
  negligible: {label: E, sla_days: 180}
validity_years:
  highly_hazardous: {training: 1, health: 1}
  hazardous: {training: 2, health: 3}
  low: {training: 3, health: 5}
`},
		{"missing tier", `
thresholds: {intolerable: 400, substantial: 200, important: 70, possible: 20}
tiers:
  intolerable: {label: A, sla_days: 0}
validity_years:
  highly_hazardous: {training: 1, health: 1}
  hazardous: {training: 2, health: 3}
  low: {training: 3, health: 5}
`},
		{"zero validity years", `
thresholds: {intolerable: 400, substantial: 200, important: 70, possible: 20}
tiers:
  intolerable: {label: A, sla_days: 0}
  substantial: {label: B, sla_days: 30}
  important: {label: C, sla_days: 60}
  possible: {label: D, sla_days: 90}
  negligible: {label: E, sla_days: 180}
validity_years:
  highly_hazardous: {training: 0, health: 1}
  hazardous: {training: 2, health: 3}
  low: {training: 3, health: 5}
`},
		{"not yaml", `{{{`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadRuleset(writeRules(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadRulesetMissingFile(t *testing.T) {
	_, err := LoadRuleset(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
