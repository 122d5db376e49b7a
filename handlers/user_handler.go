package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/emor3457/isg-y-netim-sistemi-program/models"
	"github.com/emor3457/isg-y-netim-sistemi-program/utils"
)

func canManageUsers(role string) bool {
	return role == "superadmin" || role == "admin"
}

// RegisterOrganization bootstraps a tenant: the organization document plus
// its first admin user. Public endpoint.
func RegisterOrganization(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrganizationName string `json:"organizationName"`
		Industry         string `json:"industry,omitempty"`
		Country          string `json:"country,omitempty"`
		Timezone         string `json:"timezone,omitempty"`
		FirstName        string `json:"firstName"`
		LastName         string `json:"lastName"`
		Email            string `json:"email"`
		Password         string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.OrganizationName == "" || req.FirstName == "" || req.LastName == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "organizationName, firstName and lastName are required")
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		utils.RespondWithError(w, http.StatusBadRequest, "valid email required")
		return
	}
	if len(req.Password) < 8 {
		utils.RespondWithError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	count, err := userCollection.CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		log.Printf("count users error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		log.Printf("password hash error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	org := models.Organization{
		ID:        primitive.NewObjectID(),
		Name:      req.OrganizationName,
		Industry:  req.Industry,
		Country:   req.Country,
		Timezone:  req.Timezone,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := orgCollection.InsertOne(ctx, org); err != nil {
		log.Printf("insert organization error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create organization")
		return
	}

	user := models.User{
		ID:             primitive.NewObjectID(),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		PasswordHash:   hash,
		Role:           "superadmin",
		OrganizationID: org.ID,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	if _, err := userCollection.InsertOne(ctx, user); err != nil {
		log.Printf("insert user error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"organizationId": org.ID.Hex(),
		"userId":         user.ID.Hex(),
	})
}

// ListUsers returns the organization's users. Password hashes never leave
// the model thanks to the json:"-" tag.
func ListUsers(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	role, _ := r.Context().Value("userRole").(string)
	if !canManageUsers(role) {
		utils.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "lastName", Value: 1}})

	cursor, err := userCollection.Find(ctx, bson.M{"organizationId": orgID}, opts)
	if err != nil {
		log.Printf("users Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode users")
		return
	}

	if users == nil {
		users = []models.User{}
	}

	utils.RespondWithJSON(w, http.StatusOK, users)
}

type CreateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	JobTitle  string `json:"jobTitle,omitempty"`
	Role      string `json:"role"`
	Password  string `json:"password"`
}

func CreateUser(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	callerRole, _ := r.Context().Value("userRole").(string)
	if !canManageUsers(callerRole) {
		utils.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	callerIDStr, _ := r.Context().Value("userID").(string)
	callerID, err := primitive.ObjectIDFromHex(callerIDStr)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "invalid user id")
		return
	}

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.FirstName == "" || req.LastName == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "firstName and lastName are required")
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		utils.RespondWithError(w, http.StatusBadRequest, "valid email required")
		return
	}
	if len(req.Password) < 8 {
		utils.RespondWithError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	role := normalizeRole(req.Role)
	// Only a superadmin can mint another superadmin.
	if role == "superadmin" && callerRole != "superadmin" {
		utils.RespondWithError(w, http.StatusForbidden, "only superadmin can create superadmin users")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	count, err := userCollection.CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		log.Printf("count users error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		log.Printf("password hash error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user := models.User{
		ID:             primitive.NewObjectID(),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		JobTitle:       req.JobTitle,
		PasswordHash:   hash,
		Role:           role,
		OrganizationID: orgID,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	if _, err := userCollection.InsertOne(ctx, user); err != nil {
		log.Printf("insert user error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeAudit(ctx, orgID, callerID, "user_create", "user", user.ID, bson.M{
		"email": req.Email,
		"role":  role,
	})

	utils.RespondWithJSON(w, http.StatusCreated, user)
}

func GetUser(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	userID, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	callerRole, _ := r.Context().Value("userRole").(string)
	callerIDStr, _ := r.Context().Value("userID").(string)

	// Users may always read their own record.
	if !canManageUsers(callerRole) && callerIDStr != userID.Hex() {
		utils.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := userCollection.FindOne(ctx, bson.M{"_id": userID, "organizationId": orgID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("find user error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, user)
}

type UpdateUserRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	JobTitle  *string `json:"jobTitle,omitempty"`
	Role      *string `json:"role,omitempty"`
}

func UpdateUser(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	userID, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	callerRole, _ := r.Context().Value("userRole").(string)
	if !canManageUsers(callerRole) {
		utils.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	callerIDStr, _ := r.Context().Value("userID").(string)
	callerID, err := primitive.ObjectIDFromHex(callerIDStr)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "invalid user id")
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	update := bson.M{}
	if req.FirstName != nil {
		if *req.FirstName == "" {
			utils.RespondWithError(w, http.StatusBadRequest, "firstName cannot be empty")
			return
		}
		update["firstName"] = *req.FirstName
	}
	if req.LastName != nil {
		if *req.LastName == "" {
			utils.RespondWithError(w, http.StatusBadRequest, "lastName cannot be empty")
			return
		}
		update["lastName"] = *req.LastName
	}
	if req.JobTitle != nil {
		update["jobTitle"] = *req.JobTitle
	}
	if req.Role != nil {
		role := normalizeRole(*req.Role)
		if role == "superadmin" && callerRole != "superadmin" {
			utils.RespondWithError(w, http.StatusForbidden, "only superadmin can assign the superadmin role")
			return
		}
		update["role"] = role
	}

	if len(update) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	update["updatedAt"] = time.Now().UTC()

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := userCollection.UpdateOne(ctx,
		bson.M{"_id": userID, "organizationId": orgID},
		bson.M{"$set": update})
	if err != nil {
		log.Printf("update user error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "user not found")
		return
	}

	var updated models.User
	if err := userCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&updated); err != nil {
		log.Printf("find updated user error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to fetch updated user")
		return
	}

	writeAudit(ctx, orgID, callerID, "user_update", "user", userID, update)

	utils.RespondWithJSON(w, http.StatusOK, updated)
}

func DeleteUser(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	userID, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	callerRole, _ := r.Context().Value("userRole").(string)
	if !canManageUsers(callerRole) {
		utils.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	callerIDStr, _ := r.Context().Value("userID").(string)
	if callerIDStr == userID.Hex() {
		utils.RespondWithError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}
	callerID, err := primitive.ObjectIDFromHex(callerIDStr)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := userCollection.DeleteOne(ctx, bson.M{"_id": userID, "organizationId": orgID})
	if err != nil {
		log.Printf("delete user error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "user not found")
		return
	}

	writeAudit(ctx, orgID, callerID, "user_delete", "user", userID, bson.M{})

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "user deleted successfully",
		"userId":  userID.Hex(),
	})
}
