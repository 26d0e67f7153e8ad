package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"freight-dispatch-api-server/internal/state"
)

// TransitionRecord is the immutable audit entry appended for every accepted
// transition. From is empty for a trip's first record on a machine. Records
// are never updated, with one narrow exception: a late-arriving note or
// coordinate pair may be attached to the most recent record for the same
// trip and state.
type TransitionRecord struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TripID  string             `bson:"tripID" json:"tripID"`
	Machine state.Machine      `bson:"machine" json:"machine"`
	From    string             `bson:"from,omitempty" json:"from,omitempty"`
	To      string             `bson:"to" json:"to"`
	Role    state.Role         `bson:"role" json:"role"`
	ActorID string             `bson:"actorID" json:"actorID"`
	At      time.Time          `bson:"at" json:"at"`
	Note    string             `bson:"note,omitempty" json:"note,omitempty"`
	Geo     *GeoPoint          `bson:"geo,omitempty" json:"geo,omitempty"`
}
