package handlers

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/emor3457/isg-y-netim-sistemi-program/models"
	"github.com/emor3457/isg-y-netim-sistemi-program/riskengine"
	"github.com/emor3457/isg-y-netim-sistemi-program/utils"
)

// HazardView is a hazard enriched with its current classification and
// suggested deadline. Both are recomputed on every read from the stored
// factors plus the clock, never persisted.
type HazardView struct {
	models.Hazard
	Classification    riskengine.Classification `json:"classification"`
	SuggestedDeadline riskengine.Deadline       `json:"suggestedDeadline"`
}

type HazardValidator struct{}

func (v *HazardValidator) ValidateCreate(req CreateHazardRequest) error {
	if req.Title == "" || len(req.Title) > 200 {
		return fmt.Errorf("title is required and must be less than 200 characters")
	}
	if req.Probability <= 0 || req.Frequency <= 0 || req.Severity <= 0 {
		return fmt.Errorf("probability, frequency and severity must be positive")
	}
	return nil
}

func (v *HazardValidator) ValidateUpdate(req UpdateHazardRequest) error {
	if req.Title != nil && (*req.Title == "" || len(*req.Title) > 200) {
		return fmt.Errorf("title must be non-empty and less than 200 characters")
	}
	for name, f := range map[string]*float64{
		"probability": req.Probability,
		"frequency":   req.Frequency,
		"severity":    req.Severity,
	} {
		if f != nil && *f <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}

// Helper function to generate unique hazard ID
func generateHazardID() string {
	timestamp := time.Now().Format("20060102")
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(10000))
	return fmt.Sprintf("HAZ-%s-%04d", timestamp, randomNum.Int64())
}

// enrichHazard attaches classification and SLA suggestion computed from
// one threshold snapshot and one clock reading.
func enrichHazard(h models.Hazard, t riskengine.Thresholds, now time.Time) HazardView {
	return HazardView{
		Hazard:            h,
		Classification:    ruleset.Classify(h.Score, t),
		SuggestedDeadline: ruleset.SuggestDeadline(h.Score, t, now),
	}
}

func ListHazards(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"organizationId": orgID}

	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	if locIDStr := r.URL.Query().Get("locationId"); locIDStr != "" {
		locID, err := primitive.ObjectIDFromHex(locIDStr)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid location id format")
			return
		}
		filter["locationId"] = locID
	}

	opts := options.Find().SetSort(bson.D{{Key: "score", Value: -1}})

	cursor, err := hazardCollection.Find(ctx, filter, opts)
	if err != nil {
		log.Printf("hazards Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var hazards []models.Hazard
	if err = cursor.All(ctx, &hazards); err != nil {
		log.Printf("cursor decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode hazards")
		return
	}

	// One clock reading and one threshold snapshot per location for the
	// whole listing.
	now := time.Now()
	thresholdCache := map[primitive.ObjectID]riskengine.Thresholds{}
	views := make([]HazardView, 0, len(hazards))
	for _, h := range hazards {
		t, ok := thresholdCache[h.LocationID]
		if !ok {
			t = resolveThresholds(ctx, orgID, h.LocationID)
			thresholdCache[h.LocationID] = t
		}
		views = append(views, enrichHazard(h, t, now))
	}

	utils.RespondWithJSON(w, http.StatusOK, views)
}

type CreateHazardRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Source      string  `json:"source,omitempty"`
	LegalBasis  string  `json:"legalBasis,omitempty"`
	LocationID  string  `json:"locationId,omitempty"`
	Probability float64 `json:"probability"`
	Frequency   float64 `json:"frequency"`
	Severity    float64 `json:"severity"`
	Status      string  `json:"status,omitempty"`
	ReportedBy  string  `json:"reportedBy,omitempty"`
}

func CreateHazard(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := writerFromContext(w, r)
	if !ok {
		return
	}

	var req CreateHazardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	validator := HazardValidator{}
	if err := validator.ValidateCreate(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var locationID primitive.ObjectID
	if req.LocationID != "" {
		var err error
		locationID, err = primitive.ObjectIDFromHex(req.LocationID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid location id")
			return
		}
		count, err := locationCollection.CountDocuments(ctx, bson.M{"_id": locationID, "organizationId": orgID})
		if err != nil || count == 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "location not found")
			return
		}
	}

	status := req.Status
	if status == "" {
		status = "open"
	}

	now := time.Now()
	hazard := models.Hazard{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		LocationID:     locationID,
		HazardID:       generateHazardID(),
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Source:         req.Source,
		LegalBasis:     req.LegalBasis,
		Probability:    req.Probability,
		Frequency:      req.Frequency,
		Severity:       req.Severity,
		Score:          req.Probability * req.Frequency * req.Severity,
		Status:         status,
		ReportedBy:     req.ReportedBy,
		CreatedBy:      userID,
		CreatedAt:      now.UTC(),
		UpdatedAt:      now.UTC(),
	}

	if _, err := hazardCollection.InsertOne(ctx, hazard); err != nil {
		log.Printf("insert hazard error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create hazard")
		return
	}

	writeAudit(ctx, orgID, userID, "hazard_create", "hazard", hazard.ID, bson.M{
		"title":    hazard.Title,
		"hazardId": hazard.HazardID,
		"score":    hazard.Score,
	})

	thresholds := resolveThresholds(ctx, orgID, locationID)
	utils.RespondWithJSON(w, http.StatusCreated, enrichHazard(hazard, thresholds, now))
}

func GetHazard(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	hazardID, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var hazard models.Hazard
	err := hazardCollection.FindOne(ctx, bson.M{"_id": hazardID, "organizationId": orgID}).Decode(&hazard)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "hazard not found")
			return
		}
		log.Printf("find hazard error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	thresholds := resolveThresholds(ctx, orgID, hazard.LocationID)
	utils.RespondWithJSON(w, http.StatusOK, enrichHazard(hazard, thresholds, time.Now()))
}

type UpdateHazardRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	LegalBasis  *string  `json:"legalBasis,omitempty"`
	LocationID  *string  `json:"locationId,omitempty"`
	Probability *float64 `json:"probability,omitempty"`
	Frequency   *float64 `json:"frequency,omitempty"`
	Severity    *float64 `json:"severity,omitempty"`
	Status      *string  `json:"status,omitempty"`
	ReportedBy  *string  `json:"reportedBy,omitempty"`
}

func UpdateHazard(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := writerFromContext(w, r)
	if !ok {
		return
	}

	hazardID, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateHazardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	validator := HazardValidator{}
	if err := validator.ValidateUpdate(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var existing models.Hazard
	err := hazardCollection.FindOne(ctx, bson.M{"_id": hazardID, "organizationId": orgID}).Decode(&existing)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "hazard not found")
			return
		}
		log.Printf("find hazard error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	update := bson.M{}

	if req.Title != nil {
		update["title"] = *req.Title
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}
	if req.Category != nil {
		update["category"] = *req.Category
	}
	if req.LegalBasis != nil {
		update["legalBasis"] = *req.LegalBasis
	}
	if req.Status != nil {
		update["status"] = *req.Status
	}
	if req.ReportedBy != nil {
		update["reportedBy"] = *req.ReportedBy
	}

	if req.LocationID != nil {
		if *req.LocationID == "" {
			update["locationId"] = primitive.NilObjectID
		} else {
			locID, err := primitive.ObjectIDFromHex(*req.LocationID)
			if err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "invalid location id")
				return
			}
			count, err := locationCollection.CountDocuments(ctx, bson.M{"_id": locID, "organizationId": orgID})
			if err != nil || count == 0 {
				utils.RespondWithError(w, http.StatusBadRequest, "location not found")
				return
			}
			update["locationId"] = locID
		}
	}

	// Any factor change recomputes the score so it always equals the
	// product of what is stored.
	if req.Probability != nil || req.Frequency != nil || req.Severity != nil {
		probability := existing.Probability
		frequency := existing.Frequency
		severity := existing.Severity
		if req.Probability != nil {
			probability = *req.Probability
		}
		if req.Frequency != nil {
			frequency = *req.Frequency
		}
		if req.Severity != nil {
			severity = *req.Severity
		}
		update["probability"] = probability
		update["frequency"] = frequency
		update["severity"] = severity
		update["score"] = probability * frequency * severity
	}

	if len(update) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	update["updatedAt"] = time.Now().UTC()
	update["updatedBy"] = userID

	result, err := hazardCollection.UpdateOne(ctx, bson.M{"_id": hazardID, "organizationId": orgID}, bson.M{"$set": update})
	if err != nil {
		log.Printf("update hazard error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update hazard")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "hazard not found")
		return
	}

	var updated models.Hazard
	if err := hazardCollection.FindOne(ctx, bson.M{"_id": hazardID}).Decode(&updated); err != nil {
		log.Printf("find updated hazard error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to fetch updated hazard")
		return
	}

	writeAudit(ctx, orgID, userID, "hazard_update", "hazard", hazardID, update)

	thresholds := resolveThresholds(ctx, orgID, updated.LocationID)
	utils.RespondWithJSON(w, http.StatusOK, enrichHazard(updated, thresholds, time.Now()))
}

func DeleteHazard(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := writerFromContext(w, r)
	if !ok {
		return
	}

	hazardID, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var hazard models.Hazard
	err := hazardCollection.FindOne(ctx, bson.M{"_id": hazardID, "organizationId": orgID}).Decode(&hazard)
	if err != nil && err != mongo.ErrNoDocuments {
		log.Printf("find hazard for delete error: %v", err)
	}

	result, err := hazardCollection.DeleteOne(ctx, bson.M{"_id": hazardID, "organizationId": orgID})
	if err != nil {
		log.Printf("delete hazard error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete hazard")
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "hazard not found")
		return
	}

	// A hazard owns its action list; deleting it takes the actions along.
	deletedActions, err := actionCollection.DeleteMany(ctx, bson.M{"hazardId": hazardID, "organizationId": orgID})
	if err != nil {
		log.Printf("delete hazard actions error: %v", err)
	}

	details := bson.M{"hazardId": hazard.HazardID, "title": hazard.Title}
	if deletedActions != nil {
		details["actions"] = deletedActions.DeletedCount
	}
	writeAudit(ctx, orgID, userID, "hazard_delete", "hazard", hazardID, details)

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "hazard deleted successfully",
		"hazardId": hazardID.Hex(),
	})
}

// GetHazardsByLocation returns enriched hazards recorded at one location.
func GetHazardsByLocation(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	locIDStr := vars["locationId"]
	locID, err := primitive.ObjectIDFromHex(locIDStr)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid location id format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := hazardCollection.Find(ctx,
		bson.M{"organizationId": orgID, "locationId": locID},
		options.Find().SetSort(bson.D{{Key: "score", Value: -1}}))
	if err != nil {
		log.Printf("hazards by location Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var hazards []models.Hazard
	if err = cursor.All(ctx, &hazards); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode hazards")
		return
	}

	now := time.Now()
	thresholds := resolveThresholds(ctx, orgID, locID)
	views := make([]HazardView, 0, len(hazards))
	for _, h := range hazards {
		views = append(views, enrichHazard(h, thresholds, now))
	}

	utils.RespondWithJSON(w, http.StatusOK, views)
}
