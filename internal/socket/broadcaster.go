package socket

import (
	"context"
	"encoding/json"
)

// Broadcaster adapts the hub to the trip state service's publisher contract:
// each accepted transition is pushed live to every client watching that trip.
type Broadcaster struct {
	hub *Hub
}

func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

func (b *Broadcaster) Publish(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	b.hub.BroadcastTrip(key, payload)
	return nil
}
