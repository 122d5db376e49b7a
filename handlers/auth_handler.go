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

	"github.com/emor3457/isg-y-netim-sistemi-program/models"
	"github.com/emor3457/isg-y-netim-sistemi-program/utils"
)

// normalizeRole collapses role values to the four supported roles.
func normalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))

	switch role {
	case "superadmin":
		return "superadmin"
	case "admin":
		return "admin"
	case "safety_manager":
		return "safety_manager"
	case "viewer":
		return "viewer"
	default:
		return "viewer"
	}
}

// Login authenticates a user and issues a JWT.
func Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	creds.Email = strings.TrimSpace(strings.ToLower(creds.Email))
	if creds.Email == "" || !strings.Contains(creds.Email, "@") {
		utils.RespondWithError(w, http.StatusBadRequest, "valid email required")
		return
	}
	if len(creds.Password) < 6 {
		utils.RespondWithError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := userCollection.FindOne(ctx, bson.M{"email": creds.Email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// Burn a hash comparison so a missing account takes as long
			// as a wrong password.
			_ = utils.CheckPasswordHash("dummy_password", "$2a$10$dummyhashfordummycomparison")
			utils.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		log.Printf("database error during login: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "authentication service unavailable")
		return
	}

	if !utils.CheckPasswordHash(creds.Password, user.PasswordHash) {
		utils.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	role := normalizeRole(user.Role)

	token, err := utils.GenerateJWT(
		user.ID.Hex(),
		user.FirstName+" "+user.LastName,
		role,
		user.OrganizationID.Hex(),
	)
	if err != nil {
		log.Printf("JWT generation error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to generate authentication token")
		return
	}

	if _, err := userCollection.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"updatedAt": time.Now().UTC()}}); err != nil {
		log.Printf("failed to update login timestamp: %v", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":           user.ID.Hex(),
			"name":         user.FirstName + " " + user.LastName,
			"firstName":    user.FirstName,
			"lastName":     user.LastName,
			"email":        user.Email,
			"jobTitle":     user.JobTitle,
			"role":         role,
			"organization": user.OrganizationID.Hex(),
		},
	})
}

// Logout is stateless on the server; the client discards its token.
func Logout(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// ValidateToken lets the client check whether its token is still good and
// refresh its cached identity.
func ValidateToken(w http.ResponseWriter, r *http.Request) {
	userIDStr, _ := r.Context().Value("userID").(string)
	userName, _ := r.Context().Value("userName").(string)
	userRole, _ := r.Context().Value("userRole").(string)
	orgIDStr, _ := r.Context().Value("orgID").(string)

	if userIDStr == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"valid": true,
		"user": map[string]interface{}{
			"id":           userIDStr,
			"name":         userName,
			"role":         userRole,
			"organization": orgIDStr,
		},
	})
}

// ChangePassword updates the caller's own password.
func ChangePassword(w http.ResponseWriter, r *http.Request) {
	userIDStr, ok := r.Context().Value("userID").(string)
	if !ok || userIDStr == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "user id required")
		return
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if len(req.NewPassword) < 8 {
		utils.RespondWithError(w, http.StatusBadRequest, "new password must be at least 8 characters")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := userCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "user not found")
		return
	}

	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		utils.RespondWithError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		log.Printf("password hash error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	if _, err := userCollection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"passwordHash": hash, "updatedAt": time.Now().UTC()}}); err != nil {
		log.Printf("password update error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	writeAudit(ctx, user.OrganizationID, userID, "password_change", "user", userID, bson.M{})

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "password changed successfully",
	})
}
