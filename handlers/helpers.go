package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/emor3457/isg-y-netim-sistemi-program/models"
	"github.com/emor3457/isg-y-netim-sistemi-program/riskengine"
	"github.com/emor3457/isg-y-netim-sistemi-program/utils"
)

// Roles allowed to mutate hazards, actions, locations and employees.
// Everyone authenticated may read.
func canWrite(role string) bool {
	return role == "superadmin" || role == "admin" || role == "safety_manager"
}

// orgIDFromContext pulls the caller's organization from the auth context,
// responding with the appropriate error itself when absent.
func orgIDFromContext(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	orgIDStr, ok := r.Context().Value("orgID").(string)
	if !ok || orgIDStr == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "organization id required")
		return primitive.NilObjectID, false
	}
	orgID, err := primitive.ObjectIDFromHex(orgIDStr)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid organization id format")
		return primitive.NilObjectID, false
	}
	return orgID, true
}

// writerFromContext additionally requires a write-capable role and a user
// identity for the audit trail.
func writerFromContext(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, primitive.ObjectID, bool) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	role, ok := r.Context().Value("userRole").(string)
	if !ok || !canWrite(role) {
		utils.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	userIDStr, ok := r.Context().Value("userID").(string)
	if !ok || userIDStr == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "user id required")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	return orgID, userID, true
}

// pathObjectID reads a hex ObjectID path variable.
func pathObjectID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	vars := mux.Vars(r)
	idStr := vars[name]
	if idStr == "" {
		utils.RespondWithError(w, http.StatusBadRequest, name+" required")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid "+name+" format")
		return primitive.NilObjectID, false
	}
	return id, true
}

// writeAudit records a mutation and pushes it to the live audit stream.
// Failures are logged, never surfaced: the mutation itself already
// succeeded.
func writeAudit(ctx context.Context, orgID, userID primitive.ObjectID, action, entityType string, entityID primitive.ObjectID, details bson.M) {
	audit := models.AuditLog{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		UserID:         userID,
		Action:         action,
		EntityType:     entityType,
		EntityID:       entityID,
		Details:        details,
		CreatedAt:      time.Now().UTC(),
	}

	if _, err := auditLogCollection.InsertOne(ctx, audit); err != nil {
		log.Printf("Failed to create audit log: %v", err)
	}

	BroadcastAudit(&audit)
}

// parseDatePointer parses an optional YYYY-MM-DD field; nil or empty means
// absent, not an error.
func parseDatePointer(dateStr *string) (*time.Time, error) {
	if dateStr == nil || *dateStr == "" {
		return nil, nil
	}
	d, err := riskengine.ParseDate(*dateStr)
	if err != nil {
		return nil, err
	}
	t := d.StartOfDay()
	return &t, nil
}
