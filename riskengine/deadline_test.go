package riskengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSuggestDeadlineOffsets(t *testing.T) {
	rs := DefaultRuleset()
	th := DefaultThresholds()
	now := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.Local)

	tests := []struct {
		name  string
		score float64
		date  string
		label string
	}{
		{"intolerable is due today", 500, "2024-03-15", "Immediate"},
		{"substantial one month", 300, "2024-04-14", "1 month"},
		{"important two months", 100, "2024-05-14", "2 months"},
		{"possible three months", 50, "2024-06-13", "3 months"},
		{"negligible low priority", 10, "2024-09-11", "Low priority"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := rs.SuggestDeadline(tc.score, th, now)
			assert.Equal(t, tc.date, d.Date.String())
			assert.Equal(t, tc.label, d.Label)
		})
	}
}

// The offset is applied in calendar days, so the deadline never shifts a
// day depending on the time of day the hazard was scored.
func TestSuggestDeadlineIgnoresTimeOfDay(t *testing.T) {
	rs := DefaultRuleset()
	th := DefaultThresholds()

	early := time.Date(2024, time.October, 26, 0, 5, 0, 0, time.Local)
	late := time.Date(2024, time.October, 26, 23, 55, 0, 0, time.Local)

	assert.Equal(t, rs.SuggestDeadline(300, th, early).Date, rs.SuggestDeadline(300, th, late).Date)
}

// Deadline tier must agree with classification tier for the same inputs.
func TestSuggestDeadlineMatchesClassification(t *testing.T) {
	rs := DefaultRuleset()
	th := DefaultThresholds()
	now := time.Date(2025, time.January, 2, 12, 0, 0, 0, time.Local)

	for _, score := range []float64{0, 20, 21, 70, 71, 200, 201, 400, 401, 9000} {
		tier := TierFor(score, th)
		d := rs.SuggestDeadline(score, th, now)
		assert.Equal(t, DateOf(now).AddDays(rs.Tiers[tier.String()].SLADays), d.Date, "score %v", score)
	}
}
