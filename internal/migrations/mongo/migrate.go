package mongo

import (
	"context"
	"fmt"

	"innkeep/internal/migrations/mongo/validators"
	storemongo "innkeep/internal/store/mongo"
	"innkeep/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	HotelsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}, {Key: "location", Value: 1}}},
	}

	RoomsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "hotelId", Value: 1}}},
		{Keys: bson.D{{Key: "roomType", Value: 1}}},
		{Keys: bson.D{{Key: "availability", Value: 1}}},
	}

	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "roomId", Value: 1},
			{Key: "checkInDate", Value: 1},
			{Key: "checkOutDate", Value: 1},
		}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}

	// Night claims are keyed by room and night in _id; these serve lookups
	// by booking and clean-up by room.
	RoomNightsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "bookingId", Value: 1}}},
		{Keys: bson.D{{Key: "roomId", Value: 1}, {Key: "night", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
)

type Collection struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

// Collections lists every collection the mongo store writes, in creation order.
func Collections() []Collection {
	return []Collection{
		{Name: storemongo.HotelsCollection, Indexes: HotelsIndexes, Validator: validators.HotelValidator},
		{Name: storemongo.RoomsCollection, Indexes: RoomsIndexes, Validator: validators.RoomValidator},
		{Name: storemongo.BookingsCollection, Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		{Name: storemongo.RoomNightsCollection, Indexes: RoomNightsIndexes, Validator: validators.RoomNightValidator},
	}
}

// RunMigration creates the collections with their validators and indexes.
// Collections must exist before a multi-document transaction writes to them.
func RunMigration(ctx context.Context, client *mongo.Client, databaseName string, log *logger.Logger) error {
	db := client.Database(databaseName)
	log.Info("Running Mongo migrations", "database", databaseName)

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All Mongo migrations applied")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
