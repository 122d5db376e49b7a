package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/emor3457/isg-y-netim-sistemi-program/riskengine"
)

// Employee carries one date per compliance type. Missing dates are nil,
// never an empty string; validity is always computed on read, never stored.
type Employee struct {
	ID              primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	OrganizationID  primitive.ObjectID     `bson:"organizationId" json:"organizationId"`
	LocationID      *primitive.ObjectID    `bson:"locationId,omitempty" json:"locationId,omitempty"`
	FirstName       string                 `bson:"firstName" json:"firstName"`
	LastName        string                 `bson:"lastName" json:"lastName"`
	JobTitle        string                 `bson:"jobTitle,omitempty" json:"jobTitle,omitempty"`
	HazardClass     riskengine.HazardClass `bson:"hazardClass" json:"hazardClass"`
	TrainingDate    *time.Time             `bson:"trainingDate,omitempty" json:"trainingDate,omitempty"`
	HealthCheckDate *time.Time             `bson:"healthCheckDate,omitempty" json:"healthCheckDate,omitempty"`
	CreatedAt       time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time              `bson:"updatedAt" json:"updatedAt"`
}
