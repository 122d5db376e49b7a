package handlers

import (
	"context"
	"encoding/json"
	"fmt"
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

// ListLocations returns the organization's active locations.
func ListLocations(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"organizationId": orgID, "status": bson.M{"$ne": "inactive"}}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := locationCollection.Find(ctx, filter, opts)
	if err != nil {
		log.Printf("locations Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var locations []models.Location
	if err = cursor.All(ctx, &locations); err != nil {
		log.Printf("cursor decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode locations")
		return
	}

	if locations == nil {
		locations = []models.Location{}
	}

	utils.RespondWithJSON(w, http.StatusOK, locations)
}

type CreateLocationRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Address     string                 `json:"address,omitempty"`
	ParentID    string                 `json:"parentId,omitempty"`
	Thresholds  *riskengine.Thresholds `json:"thresholds,omitempty"`
}

func CreateLocation(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := writerFromContext(w, r)
	if !ok {
		return
	}

	var req CreateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if req.Name == "" || len(req.Name) > 200 {
		utils.RespondWithError(w, http.StatusBadRequest, "name is required and must be less than 200 characters")
		return
	}
	if req.Thresholds != nil {
		if err := req.Thresholds.Validate(); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var parentID *primitive.ObjectID
	if req.ParentID != "" {
		pid, err := primitive.ObjectIDFromHex(req.ParentID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid parent id")
			return
		}
		count, err := locationCollection.CountDocuments(ctx, bson.M{"_id": pid, "organizationId": orgID})
		if err != nil || count == 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "parent location not found")
			return
		}
		parentID = &pid
	}

	location := models.Location{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		ParentID:       parentID,
		Name:           req.Name,
		Description:    req.Description,
		Address:        req.Address,
		Thresholds:     req.Thresholds,
		Status:         "active",
		CreatedBy:      userID,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	if _, err := locationCollection.InsertOne(ctx, location); err != nil {
		log.Printf("insert location error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create location")
		return
	}

	writeAudit(ctx, orgID, userID, "location_create", "location", location.ID, bson.M{"name": req.Name})

	utils.RespondWithJSON(w, http.StatusCreated, location)
}

func GetLocation(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	locID, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var location models.Location
	err := locationCollection.FindOne(ctx, bson.M{"_id": locID, "organizationId": orgID}).Decode(&location)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "location not found")
			return
		}
		log.Printf("find location error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, location)
}

// GetLocationThresholds returns the snapshot every calculation for this
// location would use right now: the override when present and well-formed,
// otherwise the system defaults.
func GetLocationThresholds(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	locID, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	count, err := locationCollection.CountDocuments(ctx, bson.M{"_id": locID, "organizationId": orgID})
	if err != nil {
		log.Printf("count location error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	if count == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "location not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resolveThresholds(ctx, orgID, locID))
}

type UpdateLocationRequest struct {
	Name        *string                `json:"name,omitempty"`
	Description *string                `json:"description,omitempty"`
	Address     *string                `json:"address,omitempty"`
	Status      *string                `json:"status,omitempty"`
	Thresholds  *riskengine.Thresholds `json:"thresholds,omitempty"`
	// ClearThresholds removes a custom override so the defaults apply again.
	ClearThresholds bool `json:"clearThresholds,omitempty"`
}

func UpdateLocation(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := writerFromContext(w, r)
	if !ok {
		return
	}

	locID, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if req.Thresholds != nil && req.ClearThresholds {
		utils.RespondWithError(w, http.StatusBadRequest, "cannot set and clear thresholds in one request")
		return
	}
	if req.Thresholds != nil {
		if err := req.Thresholds.Validate(); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	update := bson.M{}
	unset := bson.M{}

	if req.Name != nil {
		if *req.Name == "" || len(*req.Name) > 200 {
			utils.RespondWithError(w, http.StatusBadRequest, "name must be non-empty and less than 200 characters")
			return
		}
		update["name"] = *req.Name
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}
	if req.Address != nil {
		update["address"] = *req.Address
	}
	if req.Status != nil {
		if *req.Status != "active" && *req.Status != "inactive" {
			utils.RespondWithError(w, http.StatusBadRequest, "status must be active or inactive")
			return
		}
		update["status"] = *req.Status
	}
	if req.Thresholds != nil {
		update["thresholds"] = req.Thresholds
	}
	if req.ClearThresholds {
		unset["thresholds"] = ""
	}

	if len(update) == 0 && len(unset) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	update["updatedAt"] = time.Now().UTC()

	updateSet := bson.M{"$set": update}
	if len(unset) > 0 {
		updateSet["$unset"] = unset
	}

	result, err := locationCollection.UpdateOne(ctx, bson.M{"_id": locID, "organizationId": orgID}, updateSet)
	if err != nil {
		log.Printf("update location error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update location")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "location not found")
		return
	}

	var updated models.Location
	if err := locationCollection.FindOne(ctx, bson.M{"_id": locID}).Decode(&updated); err != nil {
		log.Printf("find updated location error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to fetch updated location")
		return
	}

	writeAudit(ctx, orgID, userID, "location_update", "location", locID, update)

	utils.RespondWithJSON(w, http.StatusOK, updated)
}

func DeleteLocation(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := writerFromContext(w, r)
	if !ok {
		return
	}

	locID, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Block deletion while hazards or child locations still reference it.
	hazardCount, err := hazardCollection.CountDocuments(ctx, bson.M{"locationId": locID, "organizationId": orgID})
	if err != nil {
		log.Printf("count hazards for location error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}
	childCount, err := locationCollection.CountDocuments(ctx, bson.M{"parentId": locID, "organizationId": orgID})
	if err != nil {
		log.Printf("count child locations error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}
	if hazardCount > 0 || childCount > 0 {
		utils.RespondWithError(w, http.StatusConflict,
			fmt.Sprintf("location still referenced by %d hazards and %d child locations", hazardCount, childCount))
		return
	}

	result, err := locationCollection.DeleteOne(ctx, bson.M{"_id": locID, "organizationId": orgID})
	if err != nil {
		log.Printf("delete location error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete location")
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "location not found")
		return
	}

	writeAudit(ctx, orgID, userID, "location_delete", "location", locID, bson.M{})

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message":    "location deleted successfully",
		"locationId": locID.Hex(),
	})
}
