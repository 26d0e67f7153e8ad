package gps

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"freight-dispatch-api-server/internal/models"
)

// DefaultInterval is the sampling period used when none is configured.
const DefaultInterval = 30 * time.Second

const sampleTimeout = 10 * time.Second

// ErrPositionUnavailable is returned by a Source that has no position for
// the trip yet (device offline, no report received).
var ErrPositionUnavailable = errors.New("position unavailable")

// Position is one device-reported location fix.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`
	Precision float64 `json:"precision"`
}

// Source provides the current position for a trip's assigned unit.
type Source interface {
	Position(ctx context.Context, tripID string) (Position, error)
}

// SampleStore persists the append-only sample history.
type SampleStore interface {
	InsertSample(ctx context.Context, sample *models.GPSSample) error
}

// SampleError is a transient, non-fatal sampling failure. It never stops the
// loop; only Disarm or Close does.
type SampleError struct {
	TripID string
	Err    error
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("gps sample failed for trip %s: %v", e.TripID, e.Err)
}

func (e *SampleError) Unwrap() error { return e.Err }

// Tracker runs one sampling loop per armed trip. It holds no knowledge of
// the state machines; the trip state service decides when to arm and disarm.
type Tracker struct {
	source   Source
	store    SampleStore
	interval time.Duration
	onError  func(*SampleError)
	log      logrus.FieldLogger

	mu    sync.Mutex
	loops map[string]context.CancelFunc
	wg    sync.WaitGroup
}

func NewTracker(source Source, store SampleStore, interval time.Duration, log logrus.FieldLogger) *Tracker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Tracker{
		source:   source,
		store:    store,
		interval: interval,
		log:      log,
		loops:    make(map[string]context.CancelFunc),
	}
}

// OnError registers a callback for transient sample failures. Must be set
// before the first Arm.
func (t *Tracker) OnError(fn func(*SampleError)) {
	t.onError = fn
}

// Arm starts the sampling loop for a trip. The first sample is taken
// immediately, not after the first interval. Arming an already armed trip is
// a no-op, so the loop runs exactly once per arm/disarm cycle.
func (t *Tracker) Arm(tripID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, running := t.loops[tripID]; running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.loops[tripID] = cancel
	t.wg.Add(1)
	go t.run(ctx, tripID)
	t.log.WithField("trip_id", tripID).Info("gps tracking armed")
}

// Disarm stops the sampling loop for a trip. Safe to call from any
// goroutine, including one different from the armer. Disarming a disarmed
// trip is a no-op.
func (t *Tracker) Disarm(tripID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cancel, running := t.loops[tripID]
	if !running {
		return
	}
	cancel()
	delete(t.loops, tripID)
	t.log.WithField("trip_id", tripID).Info("gps tracking disarmed")
}

// Armed reports whether a loop is currently running for the trip.
func (t *Tracker) Armed(tripID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, running := t.loops[tripID]
	return running
}

// Close stops every loop and waits for them to exit.
func (t *Tracker) Close() {
	t.mu.Lock()
	for tripID, cancel := range t.loops {
		cancel()
		delete(t.loops, tripID)
	}
	t.mu.Unlock()
	t.wg.Wait()
}

func (t *Tracker) run(ctx context.Context, tripID string) {
	defer t.wg.Done()

	t.sample(ctx, tripID)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.sample(ctx, tripID)
		}
	}
}

func (t *Tracker) sample(ctx context.Context, tripID string) {
	sampleCtx, cancel := context.WithTimeout(ctx, sampleTimeout)
	defer cancel()

	pos, err := t.source.Position(sampleCtx, tripID)
	if err != nil {
		t.reportError(&SampleError{TripID: tripID, Err: err})
		return
	}

	sample := &models.GPSSample{
		TripID:    tripID,
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		Speed:     pos.Speed,
		Heading:   pos.Heading,
		Precision: pos.Precision,
		At:        time.Now(),
	}
	if err := t.store.InsertSample(sampleCtx, sample); err != nil {
		t.reportError(&SampleError{TripID: tripID, Err: err})
	}
}

func (t *Tracker) reportError(sampleErr *SampleError) {
	t.log.WithField("trip_id", sampleErr.TripID).WithError(sampleErr.Err).Warn("gps sample failed")
	if t.onError != nil {
		t.onError(sampleErr)
	}
}
