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

// EmployeeView pairs an employee with both compliance verdicts, computed
// against the clock at request time.
type EmployeeView struct {
	models.Employee
	Training riskengine.Validity `json:"training"`
	Health   riskengine.Validity `json:"health"`
}

func enrichEmployee(e models.Employee, now time.Time) (EmployeeView, error) {
	view := EmployeeView{Employee: e}

	training, err := ruleset.CheckValidity(datePointer(e.TrainingDate), e.HazardClass, riskengine.KindTraining, now)
	if err != nil {
		return view, err
	}
	health, err := ruleset.CheckValidity(datePointer(e.HealthCheckDate), e.HazardClass, riskengine.KindHealth, now)
	if err != nil {
		return view, err
	}

	view.Training = training
	view.Health = health
	return view, nil
}

func datePointer(t *time.Time) *riskengine.Date {
	if t == nil {
		return nil
	}
	d := riskengine.DateOf(*t)
	return &d
}

// ListEmployees returns the organization's employees with their live
// compliance state, optionally filtered by location or hazard class.
func ListEmployees(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	filter := bson.M{"organizationId": orgID}

	if locIDStr := r.URL.Query().Get("locationId"); locIDStr != "" {
		locID, err := primitive.ObjectIDFromHex(locIDStr)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid location id")
			return
		}
		filter["locationId"] = locID
	}

	if class := r.URL.Query().Get("hazardClass"); class != "" {
		hc := riskengine.HazardClass(class)
		if !hc.IsValid() {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid hazard class")
			return
		}
		filter["hazardClass"] = hc
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "lastName", Value: 1}, {Key: "firstName", Value: 1}})

	cursor, err := employeeCollection.Find(ctx, filter, opts)
	if err != nil {
		log.Printf("employees Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var employees []models.Employee
	if err = cursor.All(ctx, &employees); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode employees")
		return
	}

	now := time.Now()
	views := make([]EmployeeView, 0, len(employees))
	for _, e := range employees {
		view, err := enrichEmployee(e, now)
		if err != nil {
			log.Printf("compliance check failed for employee %s: %v", e.ID.Hex(), err)
			utils.RespondWithError(w, http.StatusInternalServerError, "compliance evaluation failed")
			return
		}
		views = append(views, view)
	}

	utils.RespondWithJSON(w, http.StatusOK, views)
}

type CreateEmployeeRequest struct {
	FirstName       string  `json:"firstName"`
	LastName        string  `json:"lastName"`
	JobTitle        string  `json:"jobTitle,omitempty"`
	HazardClass     string  `json:"hazardClass"`
	LocationID      *string `json:"locationId,omitempty"`
	TrainingDate    *string `json:"trainingDate,omitempty"`
	HealthCheckDate *string `json:"healthCheckDate,omitempty"`
}

func CreateEmployee(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := writerFromContext(w, r)
	if !ok {
		return
	}

	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if req.FirstName == "" || req.LastName == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "firstName and lastName are required")
		return
	}
	hazardClass := riskengine.HazardClass(req.HazardClass)
	if !hazardClass.IsValid() {
		utils.RespondWithError(w, http.StatusBadRequest, "hazardClass must be low, hazardous or highly_hazardous")
		return
	}

	trainingDate, err := parseDatePointer(req.TrainingDate)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "trainingDate must be YYYY-MM-DD")
		return
	}
	healthCheckDate, err := parseDatePointer(req.HealthCheckDate)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "healthCheckDate must be YYYY-MM-DD")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var locationID *primitive.ObjectID
	if req.LocationID != nil && *req.LocationID != "" {
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
		locationID = &locID
	}

	employee := models.Employee{
		ID:              primitive.NewObjectID(),
		OrganizationID:  orgID,
		LocationID:      locationID,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		JobTitle:        req.JobTitle,
		HazardClass:     hazardClass,
		TrainingDate:    trainingDate,
		HealthCheckDate: healthCheckDate,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}

	if _, err := employeeCollection.InsertOne(ctx, employee); err != nil {
		log.Printf("insert employee error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create employee")
		return
	}

	writeAudit(ctx, orgID, userID, "employee_create", "employee", employee.ID, bson.M{
		"name":        req.FirstName + " " + req.LastName,
		"hazardClass": req.HazardClass,
	})

	view, err := enrichEmployee(employee, time.Now())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "compliance evaluation failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, view)
}

func GetEmployee(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	employeeID, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var employee models.Employee
	err := employeeCollection.FindOne(ctx, bson.M{"_id": employeeID, "organizationId": orgID}).Decode(&employee)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "employee not found")
			return
		}
		log.Printf("find employee error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	view, err := enrichEmployee(employee, time.Now())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "compliance evaluation failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, view)
}

type UpdateEmployeeRequest struct {
	FirstName       *string `json:"firstName,omitempty"`
	LastName        *string `json:"lastName,omitempty"`
	JobTitle        *string `json:"jobTitle,omitempty"`
	HazardClass     *string `json:"hazardClass,omitempty"`
	LocationID      *string `json:"locationId,omitempty"`
	TrainingDate    *string `json:"trainingDate,omitempty"`
	HealthCheckDate *string `json:"healthCheckDate,omitempty"`
}

func UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := writerFromContext(w, r)
	if !ok {
		return
	}

	employeeID, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

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
	if req.HazardClass != nil {
		hc := riskengine.HazardClass(*req.HazardClass)
		if !hc.IsValid() {
			utils.RespondWithError(w, http.StatusBadRequest, "hazardClass must be low, hazardous or highly_hazardous")
			return
		}
		update["hazardClass"] = hc
	}
	if req.LocationID != nil {
		if *req.LocationID == "" {
			update["locationId"] = nil
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
	if req.TrainingDate != nil {
		trainingDate, err := parseDatePointer(req.TrainingDate)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "trainingDate must be YYYY-MM-DD")
			return
		}
		update["trainingDate"] = trainingDate
	}
	if req.HealthCheckDate != nil {
		healthCheckDate, err := parseDatePointer(req.HealthCheckDate)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "healthCheckDate must be YYYY-MM-DD")
			return
		}
		update["healthCheckDate"] = healthCheckDate
	}

	if len(update) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	update["updatedAt"] = time.Now().UTC()

	result, err := employeeCollection.UpdateOne(ctx,
		bson.M{"_id": employeeID, "organizationId": orgID},
		bson.M{"$set": update})
	if err != nil {
		log.Printf("update employee error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update employee")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "employee not found")
		return
	}

	var updated models.Employee
	if err := employeeCollection.FindOne(ctx, bson.M{"_id": employeeID}).Decode(&updated); err != nil {
		log.Printf("find updated employee error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to fetch updated employee")
		return
	}

	writeAudit(ctx, orgID, userID, "employee_update", "employee", employeeID, update)

	view, err := enrichEmployee(updated, time.Now())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "compliance evaluation failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, view)
}

func DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := writerFromContext(w, r)
	if !ok {
		return
	}

	employeeID, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := employeeCollection.DeleteOne(ctx, bson.M{"_id": employeeID, "organizationId": orgID})
	if err != nil {
		log.Printf("delete employee error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete employee")
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "employee not found")
		return
	}

	// Unset the responsible reference on any actions assigned to them.
	if _, err := actionCollection.UpdateMany(ctx,
		bson.M{"responsibleId": employeeID, "organizationId": orgID},
		bson.M{"$set": bson.M{"responsibleId": nil, "responsibleName": ""}}); err != nil {
		log.Printf("unassign actions error: %v", err)
	}

	writeAudit(ctx, orgID, userID, "employee_delete", "employee", employeeID, bson.M{})

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message":    "employee deleted successfully",
		"employeeId": employeeID.Hex(),
	})
}

// GetEmployeeCompliance returns just the two validity verdicts for one
// employee.
func GetEmployeeCompliance(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	employeeID, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var employee models.Employee
	err := employeeCollection.FindOne(ctx, bson.M{"_id": employeeID, "organizationId": orgID}).Decode(&employee)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "employee not found")
			return
		}
		log.Printf("find employee error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	view, err := enrichEmployee(employee, time.Now())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "compliance evaluation failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"employeeId":  employee.ID.Hex(),
		"hazardClass": employee.HazardClass,
		"training":    view.Training,
		"health":      view.Health,
	})
}

// GetComplianceOverview lists every employee whose training or health
// surveillance is expired or inside the warning window.
func GetComplianceOverview(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromContext(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := employeeCollection.Find(ctx, bson.M{"organizationId": orgID})
	if err != nil {
		log.Printf("employees Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var employees []models.Employee
	if err = cursor.All(ctx, &employees); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode employees")
		return
	}

	now := time.Now()
	expired := []EmployeeView{}
	warning := []EmployeeView{}
	noData := []EmployeeView{}

	for _, e := range employees {
		view, err := enrichEmployee(e, now)
		if err != nil {
			log.Printf("compliance check failed for employee %s: %v", e.ID.Hex(), err)
			utils.RespondWithError(w, http.StatusInternalServerError, "compliance evaluation failed")
			return
		}

		worst := view.Training.Status
		if rank(view.Health.Status) > rank(worst) {
			worst = view.Health.Status
		}

		switch worst {
		case riskengine.StatusExpired:
			expired = append(expired, view)
		case riskengine.StatusWarning:
			warning = append(warning, view)
		case riskengine.StatusNoData:
			noData = append(noData, view)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"totalEmployees": len(employees),
		"expired":        expired,
		"warning":        warning,
		"noData":         noData,
	})
}

// rank orders statuses by urgency so an employee lands in the bucket of
// their worst compliance item.
func rank(s riskengine.ValidityStatus) int {
	switch s {
	case riskengine.StatusExpired:
		return 3
	case riskengine.StatusWarning:
		return 2
	case riskengine.StatusNoData:
		return 1
	default:
		return 0
	}
}
