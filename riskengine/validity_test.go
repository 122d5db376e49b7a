package riskengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) *Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return &d
}

// Noon anchors keep day counts exact regardless of the test machine's DST.
func noon(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.Local)
}

func TestCheckValidityNoData(t *testing.T) {
	rs := DefaultRuleset()
	now := noon(2024, time.May, 1)

	for _, class := range []HazardClass{ClassLow, ClassHazardous, ClassHighlyHazardous} {
		for _, kind := range []ComplianceKind{KindTraining, KindHealth} {
			v, err := rs.CheckValidity(nil, class, kind, now)
			require.NoError(t, err)
			assert.Equal(t, StatusNoData, v.Status)
			assert.Zero(t, v.DaysRemaining)
			assert.Nil(t, v.DueDate)
		}
	}
}

func TestCheckValidityExpired(t *testing.T) {
	rs := DefaultRuleset()

	// Highly hazardous training is valid for one year: due 2021-01-15,
	// so one day later it is already expired.
	v, err := rs.CheckValidity(mustDate(t, "2020-01-15"), ClassHighlyHazardous, KindTraining, noon(2021, time.January, 16))
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, v.Status)
	assert.Equal(t, -1, v.DaysRemaining)
	require.NotNil(t, v.DueDate)
	assert.Equal(t, "2021-01-15", v.DueDate.String())
	assert.Contains(t, v.Label, "1")
}

func TestCheckValidityValid(t *testing.T) {
	rs := DefaultRuleset()

	// Low class health checks renew every five years.
	v, err := rs.CheckValidity(mustDate(t, "2023-06-01"), ClassLow, KindHealth, noon(2023, time.June, 2))
	require.NoError(t, err)
	assert.Equal(t, StatusValid, v.Status)
	require.NotNil(t, v.DueDate)
	assert.Equal(t, "2028-06-01", v.DueDate.String())
	assert.GreaterOrEqual(t, v.DaysRemaining, 1824)
	assert.LessOrEqual(t, v.DaysRemaining, 1826)
}

func TestCheckValidityWarningWindow(t *testing.T) {
	rs := DefaultRuleset()

	// Due exactly today: zero days remaining is a warning, not expired.
	v, err := rs.CheckValidity(mustDate(t, "2023-06-01"), ClassHighlyHazardous, KindTraining, noon(2024, time.June, 1))
	require.NoError(t, err)
	assert.Equal(t, StatusWarning, v.Status)
	assert.Equal(t, 0, v.DaysRemaining)

	// 59 days out is still inside the window and the label carries the count.
	v, err = rs.CheckValidity(mustDate(t, "2023-06-01"), ClassHighlyHazardous, KindTraining, noon(2024, time.April, 3))
	require.NoError(t, err)
	assert.Equal(t, StatusWarning, v.Status)
	assert.Equal(t, 59, v.DaysRemaining)
	assert.Contains(t, v.Label, "59")

	// 60 days out sits on the window edge and is plain valid.
	v, err = rs.CheckValidity(mustDate(t, "2023-06-01"), ClassHighlyHazardous, KindTraining, noon(2024, time.April, 2))
	require.NoError(t, err)
	assert.Equal(t, StatusValid, v.Status)
	assert.Equal(t, 60, v.DaysRemaining)
}

func TestCheckValidityYearTable(t *testing.T) {
	rs := DefaultRuleset()
	last := mustDate(t, "2024-02-10")

	tests := []struct {
		class HazardClass
		kind  ComplianceKind
		due   string
	}{
		{ClassHighlyHazardous, KindTraining, "2025-02-10"},
		{ClassHighlyHazardous, KindHealth, "2025-02-10"},
		{ClassHazardous, KindTraining, "2026-02-10"},
		{ClassHazardous, KindHealth, "2027-02-10"},
		{ClassLow, KindTraining, "2027-02-10"},
		{ClassLow, KindHealth, "2029-02-10"},
	}
	for _, tc := range tests {
		v, err := rs.CheckValidity(last, tc.class, tc.kind, noon(2024, time.March, 1))
		require.NoError(t, err)
		require.NotNil(t, v.DueDate)
		assert.Equal(t, tc.due, v.DueDate.String(), "%s/%s", tc.class, tc.kind)
	}
}

func TestCheckValidityLeapDayNormalizes(t *testing.T) {
	rs := DefaultRuleset()

	// Feb 29 plus one non-leap year lands on Mar 1.
	v, err := rs.CheckValidity(mustDate(t, "2024-02-29"), ClassHighlyHazardous, KindTraining, noon(2024, time.March, 10))
	require.NoError(t, err)
	require.NotNil(t, v.DueDate)
	assert.Equal(t, "2025-03-01", v.DueDate.String())
}

func TestCheckValidityUnknownClass(t *testing.T) {
	rs := DefaultRuleset()

	_, err := rs.CheckValidity(mustDate(t, "2024-01-01"), HazardClass("extreme"), KindTraining, noon(2024, time.May, 1))
	assert.ErrorIs(t, err, ErrUnknownHazardClass)
}
