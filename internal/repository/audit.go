package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"freight-dispatch-api-server/internal/models"
	"freight-dispatch-api-server/internal/state"
	"freight-dispatch-api-server/internal/tripstate"
)

// AuditRepo is the append-only transition history. Records are inserted,
// never rewritten; AttachNote is the single sanctioned exception and only
// touches the newest record for a (trip, machine, state) triple.
type AuditRepo struct {
	db *mongo.Database
}

func NewAuditRepo(db *mongo.Database) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) collection() *mongo.Collection {
	return r.db.Collection("transition_records")
}

func (r *AuditRepo) AppendRecord(ctx context.Context, rec *models.TransitionRecord) error {
	_, err := r.collection().InsertOne(ctx, rec)
	return err
}

func (r *AuditRepo) RecordsByTrip(ctx context.Context, tripID string) ([]models.TransitionRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}})
	cursor, err := r.collection().Find(ctx, bson.M{"tripID": tripID}, opts)
	if err != nil {
		return nil, &tripstate.PersistenceError{Op: "find transition records", Err: err}
	}
	defer cursor.Close(ctx)

	var records []models.TransitionRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, &tripstate.PersistenceError{Op: "decode transition records", Err: err}
	}
	if records == nil {
		records = []models.TransitionRecord{}
	}
	return records, nil
}

func (r *AuditRepo) AttachNote(ctx context.Context, tripID string, machine state.Machine, st, note string, geo *models.GeoPoint) error {
	set := bson.M{}
	if note != "" {
		set["note"] = note
	}
	if geo != nil {
		set["geo"] = geo
	}
	if len(set) == 0 {
		return nil
	}

	filter := bson.M{"tripID": tripID, "machine": machine, "to": st}
	opts := options.FindOneAndUpdate().SetSort(bson.D{{Key: "at", Value: -1}})
	err := r.collection().FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Err()
	if err == mongo.ErrNoDocuments {
		return tripstate.ErrTripNotFound
	}
	if err != nil {
		return &tripstate.PersistenceError{Op: "attach audit note", Err: err}
	}
	return nil
}
