package riskengine

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const dateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// Date is a calendar date with no time-of-day component. Deadlines and
// compliance dates are exchanged as YYYY-MM-DD strings, so everything here
// works in whole calendar days and stays region-agnostic. Optional dates
// are represented as *Date, never as an empty string.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.Local)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{t}, nil
}

// DateOf truncates t to its calendar date, keeping t's location so that a
// deadline computed "today" means today on the caller's wall clock.
func DateOf(t time.Time) Date {
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())}
}

func (d Date) String() string { return d.t.Format(dateLayout) }

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

func (d Date) Equal(other Date) bool {
	y1, m1, dd1 := d.t.Date()
	y2, m2, dd2 := other.t.Date()
	return y1 == y2 && m1 == m2 && dd1 == dd2
}

// AddDays applies a whole-day offset in local calendar time. AddDate keeps
// the wall clock, so the result never shifts a day across DST transitions.
func (d Date) AddDays(n int) Date { return Date{d.t.AddDate(0, 0, n)} }

// AddYears applies a calendar-year offset preserving month and day.
// Feb 29 plus a non-leap year normalizes to Mar 1 (time.AddDate behavior),
// which is accepted as the renewal date.
func (d Date) AddYears(n int) Date { return Date{d.t.AddDate(n, 0, 0)} }

// StartOfDay returns midnight local time on this date.
func (d Date) StartOfDay() time.Time { return d.t }

// EndOfDay returns 23:59:59.999 local time on this date. An action is only
// overdue once this instant has passed.
func (d Date) EndOfDay() time.Time {
	return d.t.AddDate(0, 0, 1).Add(-time.Millisecond)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("%w: %s", ErrInvalidDate, b)
	}
	parsed, err := ParseDate(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysUntil returns the number of whole days from now until the start of
// day d, rounded up. Negative means the date is already behind now; the
// value is surfaced as "overdue by N days" rather than clamped.
func DaysUntil(d Date, now time.Time) int {
	diff := d.StartOfDay().Sub(now)
	return int(math.Ceil(diff.Hours() / 24))
}
