package riskengine

import (
	"errors"
	"fmt"
	"time"
)

// HazardClass is a workplace's regulatory exposure tier under Turkish OHS
// law (6331 annex), distinct from any single hazard's computed score. It
// sets the renewal period for training and health-check records.
type HazardClass string

const (
	ClassLow             HazardClass = "low"
	ClassHazardous       HazardClass = "hazardous"
	ClassHighlyHazardous HazardClass = "highly_hazardous"
)

func (c HazardClass) IsValid() bool {
	switch c {
	case ClassLow, ClassHazardous, ClassHighlyHazardous:
		return true
	}
	return false
}

// ComplianceKind picks which validity column applies to a personnel record.
type ComplianceKind string

const (
	KindTraining ComplianceKind = "training"
	KindHealth   ComplianceKind = "health"
)

type ValidityStatus string

const (
	StatusNoData  ValidityStatus = "no_data"
	StatusExpired ValidityStatus = "expired"
	StatusWarning ValidityStatus = "warning"
	StatusValid   ValidityStatus = "valid"
)

var ErrUnknownHazardClass = errors.New("unknown hazard class")

// Validity is the computed compliance state of one personnel record. It is
// never stored; callers recompute it from the event date and the current
// clock on every read.
type Validity struct {
	Status        ValidityStatus `json:"status"`
	Label         string         `json:"label"`
	DaysRemaining int            `json:"daysRemaining"`
	DueDate       *Date          `json:"dueDate,omitempty"`
}

// CheckValidity evaluates one compliance record against the ruleset's
// validity-year table. A nil last date is a distinct no-data state, never
// conflated with expired.
func (rs *Ruleset) CheckValidity(last *Date, class HazardClass, kind ComplianceKind, now time.Time) (Validity, error) {
	if last == nil {
		return Validity{Status: StatusNoData, Label: "No record"}, nil
	}

	years, ok := rs.validityYears(class, kind)
	if !ok {
		return Validity{}, fmt.Errorf("%w: %q", ErrUnknownHazardClass, class)
	}

	due := last.AddYears(years)
	days := DaysUntil(due, now)

	v := Validity{DaysRemaining: days, DueDate: &due}
	switch {
	case days < 0:
		v.Status = StatusExpired
		v.Label = fmt.Sprintf("Overdue by %d days", -days)
	case days < rs.WarningWindowDays:
		v.Status = StatusWarning
		v.Label = fmt.Sprintf("Renewal due in %d days", days)
	default:
		v.Status = StatusValid
		v.Label = "Valid"
	}
	return v, nil
}
