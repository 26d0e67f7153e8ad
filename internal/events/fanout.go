package events

import (
	"context"

	"freight-dispatch-api-server/internal/tripstate"
)

// Fanout delivers each event to every underlying publisher. A failing sink
// does not stop the others; the first error is returned.
type Fanout struct {
	sinks []tripstate.Publisher
}

func NewFanout(sinks ...tripstate.Publisher) *Fanout {
	return &Fanout{sinks: sinks}
}

func (f *Fanout) Publish(ctx context.Context, key string, value interface{}) error {
	var first error
	for _, sink := range f.sinks {
		if err := sink.Publish(ctx, key, value); err != nil && first == nil {
			first = err
		}
	}
	return first
}
