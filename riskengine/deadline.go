package riskengine

import "time"

// Deadline is a suggested remediation due date. The creator of an action
// may override it before persisting; nothing downstream assumes the stored
// due date matches the suggestion.
type Deadline struct {
	Date  Date   `json:"date"`
	Label string `json:"label"`
}

// SuggestDeadline derives the remediation deadline for a score: the tier's
// whole-day offset applied to now in local calendar time. The anchor is
// always the caller's clock, passed in explicitly.
func (rs *Ruleset) SuggestDeadline(score float64, t Thresholds, now time.Time) Deadline {
	spec := rs.tier(TierFor(score, t))
	return Deadline{
		Date:  DateOf(now).AddDays(spec.SLADays),
		Label: spec.SLALabel,
	}
}
