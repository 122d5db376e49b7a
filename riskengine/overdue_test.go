package riskengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func due(t *testing.T, id, s string, completed bool) ActionDeadline {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return ActionDeadline{ID: id, Due: d, Completed: completed}
}

func TestEvaluateActionsOverdueCount(t *testing.T) {
	now := noon(2024, time.June, 1)

	s := EvaluateActions([]ActionDeadline{
		due(t, "a", "2024-01-01", false),
		due(t, "b", "2024-05-31", false),
		due(t, "c", "2024-05-31", true), // completed never counts
		due(t, "d", "2024-07-01", false),
	}, now)

	assert.Equal(t, 2, s.OverdueCount)
}

// An open action is overdue only after the end of its due day. At 23:00 on
// the due date it still has time left.
func TestEvaluateActionsEndOfDayGrace(t *testing.T) {
	actions := []ActionDeadline{due(t, "a", "2024-06-01", false)}

	sameEvening := time.Date(2024, time.June, 1, 23, 0, 0, 0, time.Local)
	assert.Equal(t, 0, EvaluateActions(actions, sameEvening).OverdueCount)

	nextMorning := time.Date(2024, time.June, 2, 0, 30, 0, 0, time.Local)
	assert.Equal(t, 1, EvaluateActions(actions, nextMorning).OverdueCount)
}

func TestEvaluateActionsNearestUpcoming(t *testing.T) {
	now := noon(2024, time.June, 1)

	s := EvaluateActions([]ActionDeadline{
		due(t, "later", "2024-06-20", false),
		due(t, "closed", "2024-06-03", true),
		due(t, "soon", "2024-06-05", false),
	}, now)

	require.NotNil(t, s.NearestUpcoming)
	assert.Equal(t, "soon", s.NearestUpcoming.ID)
	assert.Equal(t, 4, s.NearestUpcoming.DaysLeft)
}

// Ties on the due date keep the original list order.
func TestEvaluateActionsStableTieBreak(t *testing.T) {
	now := noon(2024, time.June, 1)

	s := EvaluateActions([]ActionDeadline{
		due(t, "first", "2024-06-10", false),
		due(t, "second", "2024-06-10", false),
	}, now)

	require.NotNil(t, s.NearestUpcoming)
	assert.Equal(t, "first", s.NearestUpcoming.ID)
}

// The nearest open action can itself be overdue; its negative day count is
// surfaced, not suppressed.
func TestEvaluateActionsNearestCanBeOverdue(t *testing.T) {
	now := noon(2024, time.June, 1)

	s := EvaluateActions([]ActionDeadline{due(t, "old", "2024-01-01", false)}, now)

	assert.Equal(t, 1, s.OverdueCount)
	require.NotNil(t, s.NearestUpcoming)
	assert.Equal(t, "old", s.NearestUpcoming.ID)
	assert.Equal(t, -152, s.NearestUpcoming.DaysLeft)
}

func TestEvaluateActionsEmpty(t *testing.T) {
	s := EvaluateActions(nil, noon(2024, time.June, 1))
	assert.Equal(t, 0, s.OverdueCount)
	assert.Nil(t, s.NearestUpcoming)

	s = EvaluateActions([]ActionDeadline{due(t, "done", "2024-01-01", true)}, noon(2024, time.June, 1))
	assert.Equal(t, 0, s.OverdueCount)
	assert.Nil(t, s.NearestUpcoming)
}
