package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Priority ranks a dispatch for triage.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Route is the fixed origin/destination pair of a dispatch.
type Route struct {
	OriginID      string  `bson:"originID" json:"originID"`
	DestinationID string  `bson:"destinationID" json:"destinationID"`
	Origin        Address `bson:"origin" json:"origin"`
	Destination   Address `bson:"destination" json:"destination"`
}

// Dispatch is an order requesting Units truck trips along one route. The
// state engine never mutates a dispatch; it is only read to derive its
// category from the states of its trips.
type Dispatch struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DispatchID  string             `bson:"dispatchID" json:"dispatchID"`
	Units       int                `bson:"units" json:"units"`
	Route       Route              `bson:"route" json:"route"`
	Priority    Priority           `bson:"priority" json:"priority"`
	ScheduledAt time.Time          `bson:"scheduledAt" json:"scheduledAt"`
	// WindowEndsAt closes the scheduling window; trips not active by then
	// make the dispatch delayed or expired depending on assignment.
	WindowEndsAt time.Time `bson:"windowEndsAt" json:"windowEndsAt"`
	CreatedBy    string    `bson:"createdBy" json:"createdBy"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}
