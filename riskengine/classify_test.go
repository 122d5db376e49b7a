package riskengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyTiers(t *testing.T) {
	rs := DefaultRuleset()
	th := DefaultThresholds()

	tests := []struct {
		name   string
		score  float64
		tier   Tier
		label  string
		action string
	}{
		{"far above intolerable", 1500, TierIntolerable, "Intolerable", "Stop immediately"},
		{"just above intolerable", 400.5, TierIntolerable, "Intolerable", "Stop immediately"},
		{"substantial", 300, TierSubstantial, "Substantial", "Urgent remediation"},
		{"important", 100, TierImportant, "Important", "Resolve short-term"},
		{"possible", 50, TierPossible, "Possible", "Keep under observation"},
		{"negligible", 10, TierNegligible, "Negligible", "Continue monitoring"},
		{"zero score", 0, TierNegligible, "Negligible", "Continue monitoring"},
		{"negative score", -5, TierNegligible, "Negligible", "Continue monitoring"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := rs.Classify(tc.score, th)
			assert.Equal(t, tc.tier, c.Tier)
			assert.Equal(t, tc.label, c.Label)
			assert.Equal(t, tc.action, c.Action)
			assert.NotEmpty(t, c.Color)
		})
	}
}

// A score exactly on a boundary belongs to the lower tier: the boundaries
// are exclusive lower bounds.
func TestClassifyBoundaryFallsToLowerTier(t *testing.T) {
	rs := DefaultRuleset()
	th := DefaultThresholds()

	assert.Equal(t, TierSubstantial, rs.Classify(400, th).Tier)
	assert.Equal(t, TierImportant, rs.Classify(200, th).Tier)
	assert.Equal(t, TierPossible, rs.Classify(70, th).Tier)
	assert.Equal(t, TierNegligible, rs.Classify(20, th).Tier)
}

func TestClassifyCustomThresholds(t *testing.T) {
	rs := DefaultRuleset()
	th := Thresholds{Intolerable: 600, Substantial: 300, Important: 100, Possible: 40}
	require.NoError(t, th.Validate())

	// 400 is intolerable under defaults but only substantial here.
	assert.Equal(t, TierSubstantial, rs.Classify(450, th).Tier)
	assert.Equal(t, TierIntolerable, rs.Classify(601, th).Tier)
}

// Fine-Kinney scores are the exact product of the three factors; the tier
// of a stored score and of the recomputed product must never diverge.
func TestClassifyProductRoundTrip(t *testing.T) {
	rs := DefaultRuleset()
	th := DefaultThresholds()

	factors := []struct{ p, f, s float64 }{
		{10, 6, 15}, {3, 2, 7}, {0.5, 1, 40}, {10, 10, 10}, {1, 1, 1},
	}
	for _, fc := range factors {
		score := fc.p * fc.f * fc.s
		assert.Equal(t, rs.Classify(score, th), rs.Classify(fc.p*fc.f*fc.s, th))
	}
}

func TestThresholdsValidate(t *testing.T) {
	require.NoError(t, DefaultThresholds().Validate())

	bad := []Thresholds{
		{Intolerable: 200, Substantial: 200, Important: 70, Possible: 20},
		{Intolerable: 100, Substantial: 200, Important: 70, Possible: 20},
		{Intolerable: 400, Substantial: 200, Important: 20, Possible: 70},
		{},
	}
	for _, th := range bad {
		assert.ErrorIs(t, th.Validate(), ErrInvalidThresholds)
	}
}
