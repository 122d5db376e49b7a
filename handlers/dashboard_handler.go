package handlers

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/emor3457/isg-y-netim-sistemi-program/models"
	"github.com/emor3457/isg-y-netim-sistemi-program/riskengine"
	"github.com/emor3457/isg-y-netim-sistemi-program/utils"
)

// GetDashboardOverview aggregates the organization's current safety
// picture: hazard tier distribution, action deadlines and personnel
// compliance. Sections are fetched in parallel, each against the same
// request clock so the numbers agree with each other.
func GetDashboardOverview(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	now := time.Now()

	overview := map[string]interface{}{
		"hazards":        map[string]interface{}{},
		"actions":        map[string]interface{}{},
		"compliance":     map[string]interface{}{},
		"recentActivity": []models.AuditLog{},
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	setSection := func(key string, value interface{}) {
		mu.Lock()
		overview[key] = value
		mu.Unlock()
	}

	var firstErr error
	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		section, err := hazardOverview(ctx, orgID, now)
		if err != nil {
			setErr(err)
			return
		}
		setSection("hazards", section)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		section, err := actionOverview(ctx, orgID, now)
		if err != nil {
			setErr(err)
			return
		}
		setSection("actions", section)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		section, err := complianceOverview(ctx, orgID, now)
		if err != nil {
			setErr(err)
			return
		}
		setSection("compliance", section)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		section, err := recentAudit(ctx, orgID)
		if err != nil {
			setErr(err)
			return
		}
		setSection("recentActivity", section)
	}()

	wg.Wait()

	if firstErr != nil {
		log.Printf("dashboard overview error: %v", firstErr)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}

	overview["generatedAt"] = now.UTC().Format(time.RFC3339)

	utils.RespondWithJSON(w, http.StatusOK, overview)
}

func hazardOverview(ctx context.Context, orgID primitive.ObjectID, now time.Time) (map[string]interface{}, error) {
	opts := options.Find().SetSort(bson.D{{Key: "score", Value: -1}})
	cursor, err := hazardCollection.Find(ctx, bson.M{"organizationId": orgID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var hazards []models.Hazard
	if err = cursor.All(ctx, &hazards); err != nil {
		return nil, err
	}

	tierCounts := map[string]int{}
	statusCounts := map[string]int{}

	// Threshold lookups are cached per location for the whole pass.
	thresholdCache := map[primitive.ObjectID]riskengine.Thresholds{}
	thresholdsFor := func(locID primitive.ObjectID) riskengine.Thresholds {
		if t, ok := thresholdCache[locID]; ok {
			return t
		}
		t := resolveThresholds(ctx, orgID, locID)
		thresholdCache[locID] = t
		return t
	}

	topHazards := []HazardView{}
	for i, h := range hazards {
		c := ruleset.Classify(h.Score, thresholdsFor(h.LocationID))
		tierCounts[c.Label]++
		statusCounts[h.Status]++
		if i < 5 && h.Status != "resolved" {
			topHazards = append(topHazards, enrichHazard(h, thresholdsFor(h.LocationID), now))
		}
	}

	return map[string]interface{}{
		"total":    len(hazards),
		"byTier":   tierCounts,
		"byStatus": statusCounts,
		"top":      topHazards,
	}, nil
}

func actionOverview(ctx context.Context, orgID primitive.ObjectID, now time.Time) (map[string]interface{}, error) {
	cursor, err := actionCollection.Find(ctx, bson.M{"organizationId": orgID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var actions []models.Action
	if err = cursor.All(ctx, &actions); err != nil {
		return nil, err
	}

	open := 0
	completed := 0
	deadlines := make([]riskengine.ActionDeadline, 0, len(actions))
	for _, a := range actions {
		if a.Completed {
			completed++
		} else {
			open++
		}
		if a.DueDate == nil {
			continue
		}
		deadlines = append(deadlines, riskengine.ActionDeadline{
			ID:        a.ID.Hex(),
			Due:       riskengine.DateOf(*a.DueDate),
			Completed: a.Completed,
		})
	}

	summary := riskengine.EvaluateActions(deadlines, now)

	return map[string]interface{}{
		"total":           len(actions),
		"open":            open,
		"completed":       completed,
		"overdueCount":    summary.OverdueCount,
		"nearestUpcoming": summary.NearestUpcoming,
	}, nil
}

func recentAudit(ctx context.Context, orgID primitive.ObjectID) ([]models.AuditLog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(10)

	cursor, err := auditLogCollection.Find(ctx, bson.M{"organizationId": orgID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []models.AuditLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}
	return logs, nil
}

func complianceOverview(ctx context.Context, orgID primitive.ObjectID, now time.Time) (map[string]interface{}, error) {
	cursor, err := employeeCollection.Find(ctx, bson.M{"organizationId": orgID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var employees []models.Employee
	if err = cursor.All(ctx, &employees); err != nil {
		return nil, err
	}

	counts := map[riskengine.ValidityStatus]int{}
	for _, e := range employees {
		view, err := enrichEmployee(e, now)
		if err != nil {
			return nil, err
		}
		worst := view.Training.Status
		if rank(view.Health.Status) > rank(worst) {
			worst = view.Health.Status
		}
		counts[worst]++
	}

	return map[string]interface{}{
		"totalEmployees": len(employees),
		"expired":        counts[riskengine.StatusExpired],
		"warning":        counts[riskengine.StatusWarning],
		"noData":         counts[riskengine.StatusNoData],
		"valid":          counts[riskengine.StatusValid],
	}, nil
}
