package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"freight-dispatch-api-server/internal/state"
)

// CargoDetails carries the structured measurements a cargo transition may
// attach (weighbridge reading, package count, paperwork scans).
type CargoDetails struct {
	MeasuredWeight *Weight        `bson:"measuredWeight,omitempty" json:"measuredWeight,omitempty"`
	PackageCount   *int           `bson:"packageCount,omitempty" json:"packageCount,omitempty"`
	Documents      []MediaPointer `bson:"documents,omitempty" json:"documents,omitempty"`
}

// Trip is one truck's single execution of a dispatch's route. Resources stay
// empty until a coordinator assigns them. Trips are never deleted
// individually; cancellation is a terminal state, not removal.
type Trip struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TripID     string             `bson:"tripID" json:"tripID"`
	DispatchID string             `bson:"dispatchID" json:"dispatchID"`
	Seq        int                `bson:"seq" json:"seq"`

	CarrierID string `bson:"carrierID,omitempty" json:"carrierID,omitempty"`
	DriverID  string `bson:"driverID,omitempty" json:"driverID,omitempty"`
	TruckID   string `bson:"truckID,omitempty" json:"truckID,omitempty"`
	TrailerID string `bson:"trailerID,omitempty" json:"trailerID,omitempty"`

	UnitState  state.UnitState  `bson:"unitState" json:"unitState"`
	CargoState state.CargoState `bson:"cargoState" json:"cargoState"`

	Cargo        CargoDetails `bson:"cargo,omitempty" json:"cargo"`
	Notes        string       `bson:"notes,omitempty" json:"notes,omitempty"`
	CancelReason string       `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Assigned reports whether a carrier has been attached to the trip.
func (t *Trip) Assigned() bool {
	return t.CarrierID != ""
}
