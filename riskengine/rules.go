package riskengine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TierSpec is the per-tier regulatory data: display contract plus the SLA
// offset the scheduler applies.
type TierSpec struct {
	Label    string `yaml:"label"`
	Action   string `yaml:"action"`
	Color    string `yaml:"color"`
	SLADays  int    `yaml:"sla_days"`
	SLALabel string `yaml:"sla_label"`
}

// ValidityYears holds the renewal periods for one hazard class.
type ValidityYears struct {
	Training int `yaml:"training"`
	Health   int `yaml:"health"`
}

// Ruleset bundles every regulatory constant: default thresholds, the
// five-tier table, the validity-year matrix and the warning window. It is
// data, not logic, so a jurisdiction change is a config change. Read-only
// after load; safe for concurrent use.
type Ruleset struct {
	DefaultThresholds Thresholds                    `yaml:"thresholds"`
	Tiers             map[string]TierSpec           `yaml:"tiers"`
	Validity          map[HazardClass]ValidityYears `yaml:"validity_years"`
	WarningWindowDays int                           `yaml:"warning_window_days"`
}

// DefaultRuleset returns the compiled-in regulatory tables for the Turkish
// OHS regime. Deployments elsewhere load their own file instead.
func DefaultRuleset() *Ruleset {
	return &Ruleset{
		DefaultThresholds: DefaultThresholds(),
		Tiers: map[string]TierSpec{
			"intolerable": {Label: "Intolerable", Action: "Stop immediately", Color: "#c0392b", SLADays: 0, SLALabel: "Immediate"},
			"substantial": {Label: "Substantial", Action: "Urgent remediation", Color: "#e67e22", SLADays: 30, SLALabel: "1 month"},
			"important":   {Label: "Important", Action: "Resolve short-term", Color: "#f1c40f", SLADays: 60, SLALabel: "2 months"},
			"possible":    {Label: "Possible", Action: "Keep under observation", Color: "#3498db", SLADays: 90, SLALabel: "3 months"},
			"negligible":  {Label: "Negligible", Action: "Continue monitoring", Color: "#2ecc71", SLADays: 180, SLALabel: "Low priority"},
		},
		Validity: map[HazardClass]ValidityYears{
			ClassHighlyHazardous: {Training: 1, Health: 1},
			ClassHazardous:       {Training: 2, Health: 3},
			ClassLow:             {Training: 3, Health: 5},
		},
		WarningWindowDays: 60,
	}
}

// LoadRuleset reads and validates a ruleset file. An empty path falls back
// to the compiled-in defaults.
func LoadRuleset(path string) (*Ruleset, error) {
	if path == "" {
		return DefaultRuleset(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ruleset: %w", err)
	}

	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse ruleset: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("ruleset %s: %w", path, err)
	}
	return &rs, nil
}

func (rs *Ruleset) Validate() error {
	if err := rs.DefaultThresholds.Validate(); err != nil {
		return err
	}
	for _, tier := range []Tier{TierNegligible, TierPossible, TierImportant, TierSubstantial, TierIntolerable} {
		spec, ok := rs.Tiers[tier.String()]
		if !ok {
			return fmt.Errorf("missing tier %q", tier)
		}
		if spec.Label == "" {
			return fmt.Errorf("tier %q has no label", tier)
		}
		if spec.SLADays < 0 {
			return fmt.Errorf("tier %q has negative sla_days", tier)
		}
	}
	for _, class := range []HazardClass{ClassLow, ClassHazardous, ClassHighlyHazardous} {
		years, ok := rs.Validity[class]
		if !ok {
			return fmt.Errorf("missing validity years for class %q", class)
		}
		if years.Training <= 0 || years.Health <= 0 {
			return fmt.Errorf("validity years for class %q must be positive", class)
		}
	}
	if rs.WarningWindowDays < 0 {
		return fmt.Errorf("warning_window_days must not be negative")
	}
	return nil
}

func (rs *Ruleset) tier(t Tier) TierSpec {
	return rs.Tiers[t.String()]
}

func (rs *Ruleset) validityYears(class HazardClass, kind ComplianceKind) (int, bool) {
	years, ok := rs.Validity[class]
	if !ok {
		return 0, false
	}
	switch kind {
	case KindTraining:
		return years.Training, true
	case KindHealth:
		return years.Health, true
	}
	return 0, false
}
