package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"freight-dispatch-api-server/internal/models"
	"freight-dispatch-api-server/internal/tripstate"
)

// ErrDispatchNotFound is returned when the requested dispatch does not exist.
var ErrDispatchNotFound = errors.New("dispatch not found")

// DispatchRepo persists dispatches. The state engine only reads this
// collection; dispatch documents never change as trips move.
type DispatchRepo struct {
	db *mongo.Database
}

func NewDispatchRepo(db *mongo.Database) *DispatchRepo {
	return &DispatchRepo{db: db}
}

func (r *DispatchRepo) collection() *mongo.Collection {
	return r.db.Collection("dispatches")
}

func (r *DispatchRepo) InsertDispatch(ctx context.Context, dispatch *models.Dispatch) error {
	result, err := r.collection().InsertOne(ctx, dispatch)
	if err != nil {
		return &tripstate.PersistenceError{Op: "insert dispatch", Err: err}
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		dispatch.ID = oid
	}
	return nil
}

func (r *DispatchRepo) FindDispatchByID(ctx context.Context, dispatchID string) (*models.Dispatch, error) {
	var dispatch models.Dispatch
	err := r.collection().FindOne(ctx, bson.M{"dispatchID": dispatchID}).Decode(&dispatch)
	if err == mongo.ErrNoDocuments {
		return nil, ErrDispatchNotFound
	}
	if err != nil {
		return nil, &tripstate.PersistenceError{Op: "find dispatch", Err: err}
	}
	return &dispatch, nil
}

func (r *DispatchRepo) FindAllDispatches(ctx context.Context) ([]models.Dispatch, error) {
	cursor, err := r.collection().Find(ctx, bson.M{})
	if err != nil {
		return nil, &tripstate.PersistenceError{Op: "find dispatches", Err: err}
	}
	defer cursor.Close(ctx)

	var dispatches []models.Dispatch
	if err := cursor.All(ctx, &dispatches); err != nil {
		return nil, &tripstate.PersistenceError{Op: "decode dispatches", Err: err}
	}
	if dispatches == nil {
		dispatches = []models.Dispatch{}
	}
	return dispatches, nil
}
