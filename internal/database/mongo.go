package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect opens the Mongo client and verifies the connection with a ping.
func Connect(uri, dbName string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}
	return client.Database(dbName), nil
}

// EnsureIndexes creates the indexes the conditional state writes and the
// audit/track reads depend on. Safe to call on every startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	_, err := db.Collection("trips").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "tripID", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "dispatchID", Value: 1}, {Key: "seq", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("dispatches").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "dispatchID", Value: 1}}, Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("transition_records").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "tripID", Value: 1}, {Key: "at", Value: -1}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("gps_samples").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "tripID", Value: 1}, {Key: "at", Value: -1}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true),
	})
	return err
}
