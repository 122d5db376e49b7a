// handlers/rules.go
package handlers

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/emor3457/isg-y-netim-sistemi-program/models"
	"github.com/emor3457/isg-y-netim-sistemi-program/riskengine"
)

var ruleset *riskengine.Ruleset

// InitRules loads the regulatory tables once at startup. Handlers treat
// the ruleset as read-only afterwards.
func InitRules(path string) error {
	rs, err := riskengine.LoadRuleset(path)
	if err != nil {
		return err
	}
	ruleset = rs
	if path != "" {
		log.Printf("Loaded regulatory ruleset from %s", path)
	}
	return nil
}

// resolveThresholds returns one consistent threshold snapshot for a
// location: its custom override when present and well-formed, otherwise
// the ruleset defaults. Never fails; a broken override falls back and is
// logged as a data-quality problem.
func resolveThresholds(ctx context.Context, orgID primitive.ObjectID, locationID primitive.ObjectID) riskengine.Thresholds {
	if locationID.IsZero() {
		return ruleset.DefaultThresholds
	}

	var loc models.Location
	err := locationCollection.FindOne(ctx, bson.M{"_id": locationID, "organizationId": orgID}).Decode(&loc)
	if err != nil || loc.Thresholds == nil {
		return ruleset.DefaultThresholds
	}

	if err := loc.Thresholds.Validate(); err != nil {
		log.Printf("location %s has malformed thresholds, using defaults: %v", locationID.Hex(), err)
		return ruleset.DefaultThresholds
	}
	return *loc.Thresholds
}
