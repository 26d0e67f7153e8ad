package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"freight-dispatch-api-server/internal/models"
	"freight-dispatch-api-server/internal/state"
	"freight-dispatch-api-server/internal/tripstate"
)

// TripRepo persists trips in the "trips" collection. The compare-and-set
// methods use conditional updates keyed on the expected current state; a
// matched count of zero means another request won the race for that state.
type TripRepo struct {
	db *mongo.Database
}

func NewTripRepo(db *mongo.Database) *TripRepo {
	return &TripRepo{db: db}
}

func (r *TripRepo) collection() *mongo.Collection {
	return r.db.Collection("trips")
}

func (r *TripRepo) InsertTrips(ctx context.Context, trips []models.Trip) error {
	docs := make([]interface{}, len(trips))
	for i := range trips {
		docs[i] = trips[i]
	}
	if _, err := r.collection().InsertMany(ctx, docs); err != nil {
		return &tripstate.PersistenceError{Op: "insert trips", Err: err}
	}
	return nil
}

func (r *TripRepo) FindTripByID(ctx context.Context, tripID string) (*models.Trip, error) {
	var trip models.Trip
	err := r.collection().FindOne(ctx, bson.M{"tripID": tripID}).Decode(&trip)
	if err == mongo.ErrNoDocuments {
		return nil, tripstate.ErrTripNotFound
	}
	if err != nil {
		return nil, &tripstate.PersistenceError{Op: "find trip", Err: err}
	}
	return &trip, nil
}

func (r *TripRepo) FindTripsByDispatch(ctx context.Context, dispatchID string) ([]models.Trip, error) {
	cursor, err := r.collection().Find(ctx, bson.M{"dispatchID": dispatchID})
	if err != nil {
		return nil, &tripstate.PersistenceError{Op: "find trips by dispatch", Err: err}
	}
	defer cursor.Close(ctx)

	var trips []models.Trip
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, &tripstate.PersistenceError{Op: "decode trips", Err: err}
	}
	if trips == nil {
		trips = []models.Trip{}
	}
	return trips, nil
}

func (r *TripRepo) CompareAndSetUnitState(ctx context.Context, tripID string, expected, next state.UnitState) error {
	filter := bson.M{"tripID": tripID, "unitState": expected}
	update := bson.M{"$set": bson.M{"unitState": next, "updatedAt": time.Now()}}
	res, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return &tripstate.PersistenceError{Op: "unit state update", Err: err}
	}
	if res.MatchedCount == 0 {
		return tripstate.ErrStateConflict
	}
	return nil
}

func (r *TripRepo) CompareAndSetCargoState(ctx context.Context, tripID string, expected, next state.CargoState, details *models.CargoDetails) error {
	filter := bson.M{"tripID": tripID, "cargoState": expected}
	set := bson.M{"cargoState": next, "updatedAt": time.Now()}
	update := bson.M{"$set": set}
	if details != nil {
		if details.MeasuredWeight != nil {
			set["cargo.measuredWeight"] = details.MeasuredWeight
		}
		if details.PackageCount != nil {
			set["cargo.packageCount"] = details.PackageCount
		}
		if len(details.Documents) > 0 {
			update["$push"] = bson.M{"cargo.documents": bson.M{"$each": details.Documents}}
		}
	}
	res, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return &tripstate.PersistenceError{Op: "cargo state update", Err: err}
	}
	if res.MatchedCount == 0 {
		return tripstate.ErrStateConflict
	}
	return nil
}

func (r *TripRepo) CancelTrip(ctx context.Context, tripID string, expectedUnit state.UnitState, expectedCargo state.CargoState, cancelCargo bool, reason string) error {
	filter := bson.M{"tripID": tripID, "unitState": expectedUnit, "cargoState": expectedCargo}
	set := bson.M{
		"unitState":    state.UnitCancelled,
		"cancelReason": reason,
		"updatedAt":    time.Now(),
	}
	if cancelCargo {
		set["cargoState"] = state.CargoCancelledNoLoad
	}
	res, err := r.collection().UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return &tripstate.PersistenceError{Op: "cancel trip", Err: err}
	}
	if res.MatchedCount == 0 {
		return tripstate.ErrStateConflict
	}
	return nil
}

// AssignResources attaches carrier/driver/truck/trailer references. The
// state change itself still goes through the trip state service.
func (r *TripRepo) AssignResources(ctx context.Context, tripID, carrierID, driverID, truckID, trailerID string) error {
	set := bson.M{
		"carrierID": carrierID,
		"driverID":  driverID,
		"updatedAt": time.Now(),
	}
	if truckID != "" {
		set["truckID"] = truckID
	}
	if trailerID != "" {
		set["trailerID"] = trailerID
	}
	res, err := r.collection().UpdateOne(ctx, bson.M{"tripID": tripID}, bson.M{"$set": set})
	if err != nil {
		return &tripstate.PersistenceError{Op: "assign resources", Err: err}
	}
	if res.MatchedCount == 0 {
		return tripstate.ErrTripNotFound
	}
	return nil
}
