package riskengine

import (
	"sort"
	"time"
)

// ActionDeadline is the slice of an action item the evaluator needs.
type ActionDeadline struct {
	ID        string
	Due       Date
	Completed bool
}

type UpcomingAction struct {
	ID       string `json:"id"`
	Due      Date   `json:"due"`
	DaysLeft int    `json:"daysLeft"`
}

type ActionSummary struct {
	OverdueCount    int             `json:"overdueCount"`
	NearestUpcoming *UpcomingAction `json:"nearestUpcoming,omitempty"`
}

// EvaluateActions counts overdue actions and finds the nearest unclosed
// deadline. An action is overdue once the end of its due day has passed;
// completed actions are ignored entirely. The nearest upcoming action's
// DaysLeft can be negative when it is itself overdue.
func EvaluateActions(actions []ActionDeadline, now time.Time) ActionSummary {
	open := make([]ActionDeadline, 0, len(actions))
	var summary ActionSummary

	for _, a := range actions {
		if a.Completed {
			continue
		}
		open = append(open, a)
		if a.Due.EndOfDay().Before(now) {
			summary.OverdueCount++
		}
	}

	// Stable sort keeps the original list order for equal due dates.
	sort.SliceStable(open, func(i, j int) bool {
		return open[i].Due.Before(open[j].Due)
	})

	if len(open) > 0 {
		nearest := open[0]
		summary.NearestUpcoming = &UpcomingAction{
			ID:       nearest.ID,
			Due:      nearest.Due,
			DaysLeft: DaysUntil(nearest.Due, now),
		}
	}
	return summary
}
