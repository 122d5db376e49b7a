// models/organization.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Organization struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Industry  string             `bson:"industry" json:"industry"`
	Country   string             `bson:"country" json:"country"`
	Timezone  string             `bson:"timezone" json:"timezone"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
