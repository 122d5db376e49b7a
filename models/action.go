package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Action is one remediation step against a hazard. DueDate is seeded from
// the SLA suggestion at creation unless the creator overrides it; the
// responsible party is optional.
type Action struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrganizationID  primitive.ObjectID  `bson:"organizationId" json:"organizationId"`
	HazardID        primitive.ObjectID  `bson:"hazardId" json:"hazardId"`
	Title           string              `bson:"title" json:"title"`
	Description     string              `bson:"description,omitempty" json:"description,omitempty"`
	DueDate         *time.Time          `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	ResponsibleID   *primitive.ObjectID `bson:"responsibleId,omitempty" json:"responsibleId,omitempty"`
	ResponsibleName string              `bson:"responsibleName,omitempty" json:"responsibleName,omitempty"`
	Completed       bool                `bson:"completed" json:"completed"`
	CompletedAt     *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Notes           string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedBy       primitive.ObjectID  `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}
