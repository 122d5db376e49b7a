package riskengine

// Tier is a hazard's severity class under the Fine-Kinney method, ordered
// from least to most severe.
type Tier int

const (
	TierNegligible Tier = iota
	TierPossible
	TierImportant
	TierSubstantial
	TierIntolerable
)

func (t Tier) String() string {
	switch t {
	case TierIntolerable:
		return "intolerable"
	case TierSubstantial:
		return "substantial"
	case TierImportant:
		return "important"
	case TierPossible:
		return "possible"
	default:
		return "negligible"
	}
}

// Classification is the display contract consumed by dashboards and
// document generators. Label, action and color come from the ruleset so a
// deployment can substitute its own wording without touching logic.
type Classification struct {
	Tier   Tier   `json:"rank"`
	Label  string `json:"label"`
	Action string `json:"recommendedAction"`
	Color  string `json:"color"`
}

// TierFor maps a score to its tier by strict descending comparison, first
// match wins. A score exactly on a boundary falls to the lower tier; zero
// and negative scores classify as negligible without error.
func TierFor(score float64, t Thresholds) Tier {
	switch {
	case score > t.Intolerable:
		return TierIntolerable
	case score > t.Substantial:
		return TierSubstantial
	case score > t.Important:
		return TierImportant
	case score > t.Possible:
		return TierPossible
	default:
		return TierNegligible
	}
}

// Classify resolves a score against one threshold snapshot.
func (rs *Ruleset) Classify(score float64, t Thresholds) Classification {
	tier := TierFor(score, t)
	spec := rs.tier(tier)
	return Classification{
		Tier:   tier,
		Label:  spec.Label,
		Action: spec.Action,
		Color:  spec.Color,
	}
}
