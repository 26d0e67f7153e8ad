package tripstate

import (
	"context"

	"freight-dispatch-api-server/internal/models"
	"freight-dispatch-api-server/internal/state"
)

// TripStore is the persistence port for trips. The compare-and-set methods
// must be atomic per (trip, machine): the write only happens if the stored
// state still equals expected, and ErrStateConflict is returned otherwise.
type TripStore interface {
	FindTripByID(ctx context.Context, tripID string) (*models.Trip, error)
	CompareAndSetUnitState(ctx context.Context, tripID string, expected, next state.UnitState) error
	CompareAndSetCargoState(ctx context.Context, tripID string, expected, next state.CargoState, details *models.CargoDetails) error
	// CancelTrip moves the unit machine to cancelled and, when cancelCargo is
	// set, the cargo machine to cancelled_no_load, conditional on both
	// expected states in a single write.
	CancelTrip(ctx context.Context, tripID string, expectedUnit state.UnitState, expectedCargo state.CargoState, cancelCargo bool, reason string) error
}

// AuditStore is the append-only transition history port.
type AuditStore interface {
	AppendRecord(ctx context.Context, rec *models.TransitionRecord) error
	// RecordsByTrip returns the trip's history ordered by timestamp
	// descending.
	RecordsByTrip(ctx context.Context, tripID string) ([]models.TransitionRecord, error)
	// AttachNote updates only the most recent record for (trip, machine,
	// state) with a late-arriving note or coordinates. This is the single
	// sanctioned mutation of the audit history.
	AttachNote(ctx context.Context, tripID string, machine state.Machine, st string, note string, geo *models.GeoPoint) error
}

// Tracker is the GPS side channel the service arms and disarms as the unit
// machine crosses the in-transit boundary.
type Tracker interface {
	Arm(tripID string)
	Disarm(tripID string)
}

// Publisher fans a transition event out to interested collaborators
// (notification service, live dashboards) after a successful transition.
// Delivery is best-effort; failures are logged, never surfaced to the actor.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}
