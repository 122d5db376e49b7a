package routes

import (
	"github.com/gorilla/mux"

	"github.com/emor3457/isg-y-netim-sistemi-program/handlers"
	"github.com/emor3457/isg-y-netim-sistemi-program/middleware"
)

// HTTP method constants for better maintainability
var (
	MethodsGetOnly    = []string{"GET", "OPTIONS"}
	MethodsPostOnly   = []string{"POST", "OPTIONS"}
	MethodsPutOnly    = []string{"PUT", "OPTIONS"}
	MethodsDeleteOnly = []string{"DELETE", "OPTIONS"}
)

const (
	PathAPI    = "/api"
	PathHealth = "/health"
)

func RegisterRoutes(r *mux.Router) {
	// Public endpoints.
	r.HandleFunc(PathHealth, handlers.HealthCheck).Methods(MethodsGetOnly...)

	r.HandleFunc("/api/auth/register", handlers.RegisterOrganization).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/auth/login", handlers.Login).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/auth/logout", handlers.Logout).Methods(MethodsPostOnly...)

	// Live audit stream. The handler does its own token check because
	// browsers cannot attach headers to websocket upgrades.
	r.HandleFunc("/ws/audit", handlers.HandleWebSocket)

	// Everything below requires a valid token.
	apiRouter := r.PathPrefix(PathAPI).Subrouter()
	apiRouter.Use(middleware.AuthMiddleware)

	apiRouter.HandleFunc("/auth/validate", handlers.ValidateToken).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/auth/change-password", handlers.ChangePassword).Methods(MethodsPostOnly...)

	// Users
	apiRouter.HandleFunc("/users", handlers.ListUsers).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/users", handlers.CreateUser).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/users/{id}", handlers.GetUser).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/users/{id}", handlers.UpdateUser).Methods(MethodsPutOnly...)
	apiRouter.HandleFunc("/users/{id}", handlers.DeleteUser).Methods(MethodsDeleteOnly...)

	// Locations
	apiRouter.HandleFunc("/locations", handlers.ListLocations).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/locations", handlers.CreateLocation).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/locations/{id}", handlers.GetLocation).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/locations/{id}", handlers.UpdateLocation).Methods(MethodsPutOnly...)
	apiRouter.HandleFunc("/locations/{id}", handlers.DeleteLocation).Methods(MethodsDeleteOnly...)
	apiRouter.HandleFunc("/locations/{id}/thresholds", handlers.GetLocationThresholds).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/locations/{locationId}/hazards", handlers.GetHazardsByLocation).Methods(MethodsGetOnly...)

	// Hazards
	apiRouter.HandleFunc("/hazards", handlers.ListHazards).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/hazards", handlers.CreateHazard).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/hazards/{id}", handlers.GetHazard).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/hazards/{id}", handlers.UpdateHazard).Methods(MethodsPutOnly...)
	apiRouter.HandleFunc("/hazards/{id}", handlers.DeleteHazard).Methods(MethodsDeleteOnly...)

	// Actions
	apiRouter.HandleFunc("/actions", handlers.ListActions).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/actions", handlers.CreateAction).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/actions/summary", handlers.GetActionSummary).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/actions/{id}", handlers.GetAction).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/actions/{id}", handlers.UpdateAction).Methods(MethodsPutOnly...)
	apiRouter.HandleFunc("/actions/{id}", handlers.DeleteAction).Methods(MethodsDeleteOnly...)

	// Employees and compliance
	apiRouter.HandleFunc("/employees", handlers.ListEmployees).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/employees", handlers.CreateEmployee).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/employees/compliance", handlers.GetComplianceOverview).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/employees/{id}", handlers.GetEmployee).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/employees/{id}/compliance", handlers.GetEmployeeCompliance).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/employees/{id}", handlers.UpdateEmployee).Methods(MethodsPutOnly...)
	apiRouter.HandleFunc("/employees/{id}", handlers.DeleteEmployee).Methods(MethodsDeleteOnly...)

	// Dashboard
	apiRouter.HandleFunc("/dashboard/overview", handlers.GetDashboardOverview).Methods(MethodsGetOnly...)

	// Audit trail
	apiRouter.HandleFunc("/audit-logs", handlers.ListAuditLogs).Methods(MethodsGetOnly...)
}
