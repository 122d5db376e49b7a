package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/emor3457/isg-y-netim-sistemi-program/riskengine"
)

// Location is a business site or work area. ParentID links it into the
// site hierarchy (tree editing itself lives in the frontend). Thresholds
// is an optional per-location override of the classification boundaries;
// nil means the system defaults apply.
type Location struct {
	ID             primitive.ObjectID      `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID      `bson:"organizationId" json:"organizationId"`
	ParentID       *primitive.ObjectID     `bson:"parentId,omitempty" json:"parentId,omitempty"`
	Name           string                  `bson:"name" json:"name"`
	Description    string                  `bson:"description,omitempty" json:"description,omitempty"`
	Address        string                  `bson:"address,omitempty" json:"address,omitempty"`
	Thresholds     *riskengine.Thresholds  `bson:"thresholds,omitempty" json:"thresholds,omitempty"`
	Status         string                  `bson:"status" json:"status"` // active, inactive
	CreatedBy      primitive.ObjectID      `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt      time.Time               `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time               `bson:"updatedAt" json:"updatedAt"`
}
