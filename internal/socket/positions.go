package socket

import (
	"context"
	"encoding/json"

	"freight-dispatch-api-server/internal/gps"
	"freight-dispatch-api-server/internal/models"
)

// SampleRelay persists each GPS sample and pushes it live to every client
// watching the trip. Broadcast failures never fail the write; the sample
// history is the source of truth.
type SampleRelay struct {
	store gps.SampleStore
	hub   *Hub
}

func NewSampleRelay(store gps.SampleStore, hub *Hub) *SampleRelay {
	return &SampleRelay{store: store, hub: hub}
}

func (r *SampleRelay) InsertSample(ctx context.Context, sample *models.GPSSample) error {
	if err := r.store.InsertSample(ctx, sample); err != nil {
		return err
	}
	payload, err := json.Marshal(map[string]interface{}{
		"event":  "trip_position",
		"sample": sample,
	})
	if err == nil {
		r.hub.BroadcastTrip(sample.TripID, payload)
	}
	return nil
}
