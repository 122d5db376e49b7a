package riskengine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", d.String())

	for _, bad := range []string{"", "2024-3-5", "05.03.2024", "2024-03-05T10:00:00Z", "yesterday"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, "input %q", bad)
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d, err := ParseDate("2026-12-31")
	require.NoError(t, err)

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-12-31"`, string(raw))

	var back Date
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, d.Equal(back))

	assert.Error(t, json.Unmarshal([]byte(`"not-a-date"`), &back))
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, time.January, 31)
	assert.Equal(t, "2024-02-01", d.AddDays(1).String())
	assert.Equal(t, "2024-03-01", d.AddDays(30).String())
	assert.Equal(t, "2025-01-31", d.AddYears(1).String())
}

func TestDaysUntil(t *testing.T) {
	d := NewDate(2024, time.June, 10)

	assert.Equal(t, 9, DaysUntil(d, noon(2024, time.June, 1)))
	assert.Equal(t, 0, DaysUntil(d, noon(2024, time.June, 10)))
	assert.Equal(t, -2, DaysUntil(d, noon(2024, time.June, 12)))
}

func TestEndOfDayIsBeforeNextMidnight(t *testing.T) {
	d := NewDate(2024, time.June, 1)
	end := d.EndOfDay()

	assert.True(t, end.After(d.StartOfDay()))
	assert.True(t, end.Before(d.AddDays(1).StartOfDay()))
}
