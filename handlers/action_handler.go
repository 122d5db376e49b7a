package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/emor3457/isg-y-netim-sistemi-program/models"
	"github.com/emor3457/isg-y-netim-sistemi-program/riskengine"
	"github.com/emor3457/isg-y-netim-sistemi-program/utils"
)

// ActionView decorates an action with its live overdue state.
type ActionView struct {
	models.Action
	Overdue  bool `json:"overdue"`
	DaysLeft *int `json:"daysLeft,omitempty"`
}

func enrichAction(a models.Action, now time.Time) ActionView {
	view := ActionView{Action: a}
	if a.DueDate == nil {
		return view
	}
	due := riskengine.DateOf(*a.DueDate)
	daysLeft := riskengine.DaysUntil(due, now)
	view.DaysLeft = &daysLeft
	view.Overdue = !a.Completed && due.EndOfDay().Before(now)
	return view
}

// ListActions returns the organization's actions, optionally filtered by
// hazard or completion state, due soonest first.
func ListActions(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	filter := bson.M{"organizationId": orgID}

	if hazardIDStr := r.URL.Query().Get("hazardId"); hazardIDStr != "" {
		hazardID, err := primitive.ObjectIDFromHex(hazardIDStr)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid hazard id")
			return
		}
		filter["hazardId"] = hazardID
	}

	switch r.URL.Query().Get("completed") {
	case "true":
		filter["completed"] = true
	case "false":
		filter["completed"] = false
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}})

	cursor, err := actionCollection.Find(ctx, filter, opts)
	if err != nil {
		log.Printf("actions Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var actions []models.Action
	if err = cursor.All(ctx, &actions); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode actions")
		return
	}

	now := time.Now()
	views := make([]ActionView, 0, len(actions))
	for _, a := range actions {
		views = append(views, enrichAction(a, now))
	}

	utils.RespondWithJSON(w, http.StatusOK, views)
}

type CreateActionRequest struct {
	HazardID      string  `json:"hazardId"`
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	DueDate       *string `json:"dueDate,omitempty"`
	ResponsibleID *string `json:"responsibleId,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

// CreateAction records a remediation step. When no due date is given it is
// seeded from the SLA suggestion for the hazard's current score.
func CreateAction(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := writerFromContext(w, r)
	if !ok {
		return
	}

	var req CreateActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if req.Title == "" || len(req.Title) > 300 {
		utils.RespondWithError(w, http.StatusBadRequest, "title is required and must be less than 300 characters")
		return
	}

	hazardID, err := primitive.ObjectIDFromHex(req.HazardID)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid hazard id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var hazard models.Hazard
	err = hazardCollection.FindOne(ctx, bson.M{"_id": hazardID, "organizationId": orgID}).Decode(&hazard)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "hazard not found")
			return
		}
		log.Printf("find hazard error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	dueDate, err := parseDatePointer(req.DueDate)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "dueDate must be YYYY-MM-DD")
		return
	}
	if dueDate == nil {
		thresholds := resolveThresholds(ctx, orgID, hazard.LocationID)
		suggested := ruleset.SuggestDeadline(hazard.Score, thresholds, time.Now()).Date.StartOfDay()
		dueDate = &suggested
	}

	var responsibleID *primitive.ObjectID
	var responsibleName string
	if req.ResponsibleID != nil && *req.ResponsibleID != "" {
		rid, err := primitive.ObjectIDFromHex(*req.ResponsibleID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid responsible id")
			return
		}
		var employee models.Employee
		if err := employeeCollection.FindOne(ctx, bson.M{"_id": rid, "organizationId": orgID}).Decode(&employee); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "responsible employee not found")
			return
		}
		responsibleID = &rid
		responsibleName = employee.FirstName + " " + employee.LastName
	}

	action := models.Action{
		ID:              primitive.NewObjectID(),
		OrganizationID:  orgID,
		HazardID:        hazardID,
		Title:           req.Title,
		Description:     req.Description,
		DueDate:         dueDate,
		ResponsibleID:   responsibleID,
		ResponsibleName: responsibleName,
		Completed:       false,
		Notes:           req.Notes,
		CreatedBy:       userID,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}

	if _, err := actionCollection.InsertOne(ctx, action); err != nil {
		log.Printf("insert action error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create action")
		return
	}

	writeAudit(ctx, orgID, userID, "action_create", "action", action.ID, bson.M{
		"title":    req.Title,
		"hazardId": hazardID.Hex(),
	})

	utils.RespondWithJSON(w, http.StatusCreated, enrichAction(action, time.Now()))
}

func GetAction(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	actionID, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var action models.Action
	err := actionCollection.FindOne(ctx, bson.M{"_id": actionID, "organizationId": orgID}).Decode(&action)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "action not found")
			return
		}
		log.Printf("find action error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, enrichAction(action, time.Now()))
}

type UpdateActionRequest struct {
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	DueDate       *string `json:"dueDate,omitempty"`
	ResponsibleID *string `json:"responsibleId,omitempty"`
	Completed     *bool   `json:"completed,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

func UpdateAction(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := writerFromContext(w, r)
	if !ok {
		return
	}

	actionID, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	update := bson.M{}

	if req.Title != nil {
		if *req.Title == "" || len(*req.Title) > 300 {
			utils.RespondWithError(w, http.StatusBadRequest, "title must be non-empty and less than 300 characters")
			return
		}
		update["title"] = *req.Title
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}
	if req.Notes != nil {
		update["notes"] = *req.Notes
	}
	if req.DueDate != nil {
		dueDate, err := parseDatePointer(req.DueDate)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "dueDate must be YYYY-MM-DD")
			return
		}
		if dueDate == nil {
			utils.RespondWithError(w, http.StatusBadRequest, "dueDate cannot be cleared")
			return
		}
		update["dueDate"] = dueDate
	}
	if req.ResponsibleID != nil {
		if *req.ResponsibleID == "" {
			update["responsibleId"] = nil
			update["responsibleName"] = ""
		} else {
			rid, err := primitive.ObjectIDFromHex(*req.ResponsibleID)
			if err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "invalid responsible id")
				return
			}
			var employee models.Employee
			if err := employeeCollection.FindOne(ctx, bson.M{"_id": rid, "organizationId": orgID}).Decode(&employee); err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "responsible employee not found")
				return
			}
			update["responsibleId"] = rid
			update["responsibleName"] = employee.FirstName + " " + employee.LastName
		}
	}
	if req.Completed != nil {
		update["completed"] = *req.Completed
		if *req.Completed {
			now := time.Now().UTC()
			update["completedAt"] = now
		} else {
			update["completedAt"] = nil
		}
	}

	if len(update) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	update["updatedAt"] = time.Now().UTC()

	result, err := actionCollection.UpdateOne(ctx,
		bson.M{"_id": actionID, "organizationId": orgID},
		bson.M{"$set": update})
	if err != nil {
		log.Printf("update action error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update action")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "action not found")
		return
	}

	var updated models.Action
	if err := actionCollection.FindOne(ctx, bson.M{"_id": actionID}).Decode(&updated); err != nil {
		log.Printf("find updated action error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to fetch updated action")
		return
	}

	auditAction := "action_update"
	if req.Completed != nil && *req.Completed {
		auditAction = "action_complete"
	}
	writeAudit(ctx, orgID, userID, auditAction, "action", actionID, update)

	utils.RespondWithJSON(w, http.StatusOK, enrichAction(updated, time.Now()))
}

func DeleteAction(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := writerFromContext(w, r)
	if !ok {
		return
	}

	actionID, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := actionCollection.DeleteOne(ctx, bson.M{"_id": actionID, "organizationId": orgID})
	if err != nil {
		log.Printf("delete action error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete action")
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "action not found")
		return
	}

	writeAudit(ctx, orgID, userID, "action_delete", "action", actionID, bson.M{})

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message":  "action deleted successfully",
		"actionId": actionID.Hex(),
	})
}

// GetActionSummary reports how many open actions are past due and which
// open one comes up next.
func GetActionSummary(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := actionCollection.Find(ctx, bson.M{"organizationId": orgID})
	if err != nil {
		log.Printf("actions Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var actions []models.Action
	if err = cursor.All(ctx, &actions); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode actions")
		return
	}

	deadlines := make([]riskengine.ActionDeadline, 0, len(actions))
	for _, a := range actions {
		if a.DueDate == nil {
			continue
		}
		deadlines = append(deadlines, riskengine.ActionDeadline{
			ID:        a.ID.Hex(),
			Due:       riskengine.DateOf(*a.DueDate),
			Completed: a.Completed,
		})
	}

	summary := riskengine.EvaluateActions(deadlines, time.Now())

	utils.RespondWithJSON(w, http.StatusOK, summary)
}
