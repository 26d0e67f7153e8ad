package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GPSSample is one position report for a trip. Samples are produced only
// while the trip's unit machine is in an in-transit state and are kept as an
// append-only history for live tracking and route reconstruction.
type GPSSample struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TripID    string             `bson:"tripID" json:"tripID"`
	Latitude  float64            `bson:"latitude" json:"latitude"`
	Longitude float64            `bson:"longitude" json:"longitude"`
	Speed     float64            `bson:"speed" json:"speed"`
	Heading   float64            `bson:"heading" json:"heading"`
	Precision float64            `bson:"precision" json:"precision"`
	At        time.Time          `bson:"at" json:"at"`
}
