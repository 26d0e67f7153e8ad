package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"freight-dispatch-api-server/internal/models"
	"freight-dispatch-api-server/internal/tripstate"
)

// GPSRepo stores the append-only sample history used for live tracking and
// route reconstruction.
type GPSRepo struct {
	db *mongo.Database
}

func NewGPSRepo(db *mongo.Database) *GPSRepo {
	return &GPSRepo{db: db}
}

func (r *GPSRepo) collection() *mongo.Collection {
	return r.db.Collection("gps_samples")
}

func (r *GPSRepo) InsertSample(ctx context.Context, sample *models.GPSSample) error {
	_, err := r.collection().InsertOne(ctx, sample)
	return err
}

// SamplesByTrip returns up to limit samples for a trip, newest first. A
// limit of zero returns the whole history.
func (r *GPSRepo) SamplesByTrip(ctx context.Context, tripID string, limit int64) ([]models.GPSSample, error) {
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cursor, err := r.collection().Find(ctx, bson.M{"tripID": tripID}, opts)
	if err != nil {
		return nil, &tripstate.PersistenceError{Op: "find gps samples", Err: err}
	}
	defer cursor.Close(ctx)

	var samples []models.GPSSample
	if err := cursor.All(ctx, &samples); err != nil {
		return nil, &tripstate.PersistenceError{Op: "decode gps samples", Err: err}
	}
	if samples == nil {
		samples = []models.GPSSample{}
	}
	return samples, nil
}
