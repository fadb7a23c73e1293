package migrations

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// BackfillCapacityCounts repairs capacity.current on events where it has
// drifted from the participant array, and initializes the embedded arrays on
// documents written before they existed.
func BackfillCapacityCounts(client *mongo.Client, dbName string) error {
	collection := client.Database(dbName).Collection("events")

	_, err := collection.UpdateMany(context.TODO(),
		bson.M{},
		bson.A{
			bson.M{"$set": bson.M{
				"participantIds": bson.M{"$ifNull": bson.A{"$participantIds", bson.A{}}},
				"waitlist":       bson.M{"$ifNull": bson.A{"$waitlist", bson.A{}}},
				"joinRequests":   bson.M{"$ifNull": bson.A{"$joinRequests", bson.A{}}},
			}},
			bson.M{"$set": bson.M{
				"capacity.current": bson.M{"$size": "$participantIds"},
			}},
		},
	)
	return err
}
