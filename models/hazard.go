package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Hazard is one observed workplace hazard scored with the Fine-Kinney
// method. Score is always the exact product of the three factors and is
// recomputed on every write; classification and deadlines are derived at
// read time and never stored.
type Hazard struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organizationId" json:"organizationId"`
	LocationID     primitive.ObjectID `bson:"locationId,omitempty" json:"locationId,omitempty"`
	HazardID       string             `bson:"hazardId" json:"hazardId"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	Category       string             `bson:"category,omitempty" json:"category,omitempty"`
	Source         string             `bson:"source,omitempty" json:"source,omitempty"` // manual, import, extraction
	LegalBasis     string             `bson:"legalBasis,omitempty" json:"legalBasis,omitempty"`
	Probability    float64            `bson:"probability" json:"probability"`
	Frequency      float64            `bson:"frequency" json:"frequency"`
	Severity       float64            `bson:"severity" json:"severity"`
	Score          float64            `bson:"score" json:"score"`
	Status         string             `bson:"status" json:"status"` // open, in_progress, resolved
	ReportedBy     string             `bson:"reportedBy,omitempty" json:"reportedBy,omitempty"`
	CreatedBy      primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	UpdatedBy      primitive.ObjectID `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
