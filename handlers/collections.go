// handlers/collections.go
package handlers

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/emor3457/isg-y-netim-sistemi-program/config"
	"github.com/emor3457/isg-y-netim-sistemi-program/database"
)

var (
	orgCollection      *mongo.Collection
	userCollection     *mongo.Collection
	locationCollection *mongo.Collection
	hazardCollection   *mongo.Collection
	actionCollection   *mongo.Collection
	employeeCollection *mongo.Collection
	auditLogCollection *mongo.Collection
)

func InitCollections() {
	db := database.Client.Database(config.DatabaseName)
	orgCollection = db.Collection("organizations")
	userCollection = db.Collection("users")
	locationCollection = db.Collection("locations")
	hazardCollection = db.Collection("hazards")
	actionCollection = db.Collection("actions")
	employeeCollection = db.Collection("employees")
	auditLogCollection = db.Collection("audit_logs")
}
