package gps

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freight-dispatch-api-server/internal/models"
)

type stubSource struct {
	mu   sync.Mutex
	pos  map[string]Position
	errs map[string]error
}

func (s *stubSource) Position(_ context.Context, tripID string) (Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.errs[tripID]; ok {
		return Position{}, err
	}
	pos, ok := s.pos[tripID]
	if !ok {
		return Position{}, ErrPositionUnavailable
	}
	return pos, nil
}

type recordingStore struct {
	mu      sync.Mutex
	samples []models.GPSSample
}

func (r *recordingStore) InsertSample(_ context.Context, sample *models.GPSSample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, *sample)
	return nil
}

func (r *recordingStore) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

func quietLog() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestArmTakesImmediateFirstSample(t *testing.T) {
	source := &stubSource{pos: map[string]Position{"TRIP-1": {Latitude: 10, Longitude: 20, Speed: 62}}}
	store := &recordingStore{}
	tracker := NewTracker(source, store, time.Hour, quietLog())
	defer tracker.Close()

	tracker.Arm("TRIP-1")
	require.Eventually(t, func() bool { return store.count() == 1 }, time.Second, 5*time.Millisecond)

	store.mu.Lock()
	sample := store.samples[0]
	store.mu.Unlock()
	assert.Equal(t, "TRIP-1", sample.TripID)
	assert.Equal(t, 10.0, sample.Latitude)
	assert.Equal(t, 62.0, sample.Speed)
}

func TestSamplesAtEachInterval(t *testing.T) {
	source := &stubSource{pos: map[string]Position{"TRIP-1": {Latitude: 1}}}
	store := &recordingStore{}
	tracker := NewTracker(source, store, 10*time.Millisecond, quietLog())
	defer tracker.Close()

	tracker.Arm("TRIP-1")
	require.Eventually(t, func() bool { return store.count() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestDoubleArmRunsOneLoop(t *testing.T) {
	source := &stubSource{pos: map[string]Position{"TRIP-1": {Latitude: 1}}}
	store := &recordingStore{}
	tracker := NewTracker(source, store, time.Hour, quietLog())
	defer tracker.Close()

	tracker.Arm("TRIP-1")
	tracker.Arm("TRIP-1")
	require.Eventually(t, func() bool { return store.count() == 1 }, time.Second, 5*time.Millisecond)

	// A second loop would have produced a second immediate sample.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, store.count())
}

func TestDisarmStopsSampling(t *testing.T) {
	source := &stubSource{pos: map[string]Position{"TRIP-1": {Latitude: 1}}}
	store := &recordingStore{}
	tracker := NewTracker(source, store, 10*time.Millisecond, quietLog())
	defer tracker.Close()

	tracker.Arm("TRIP-1")
	require.Eventually(t, func() bool { return store.count() >= 1 }, time.Second, 5*time.Millisecond)

	tracker.Disarm("TRIP-1")
	assert.False(t, tracker.Armed("TRIP-1"))
	n := store.count()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, n, store.count())

	// Disarming again is a no-op.
	tracker.Disarm("TRIP-1")
}

func TestSampleErrorsDoNotStopTheLoop(t *testing.T) {
	deviceDown := errors.New("permission denied")
	source := &stubSource{
		pos:  map[string]Position{},
		errs: map[string]error{"TRIP-1": deviceDown},
	}
	store := &recordingStore{}
	tracker := NewTracker(source, store, 10*time.Millisecond, quietLog())
	defer tracker.Close()

	var mu sync.Mutex
	var reported []*SampleError
	tracker.OnError(func(err *SampleError) {
		mu.Lock()
		reported = append(reported, err)
		mu.Unlock()
	})

	tracker.Arm("TRIP-1")
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reported) >= 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	first := reported[0]
	mu.Unlock()
	assert.Equal(t, "TRIP-1", first.TripID)
	assert.ErrorIs(t, first, deviceDown)
	assert.True(t, tracker.Armed("TRIP-1"), "errors must not disarm the loop")

	// Device recovers; sampling resumes without rearming.
	source.mu.Lock()
	delete(source.errs, "TRIP-1")
	source.pos["TRIP-1"] = Position{Latitude: 5}
	source.mu.Unlock()
	require.Eventually(t, func() bool { return store.count() >= 1 }, time.Second, 5*time.Millisecond)
}

func TestIndependentLoopsPerTrip(t *testing.T) {
	source := &stubSource{pos: map[string]Position{
		"TRIP-1": {Latitude: 1},
		"TRIP-2": {Latitude: 2},
	}}
	store := &recordingStore{}
	tracker := NewTracker(source, store, time.Hour, quietLog())
	defer tracker.Close()

	tracker.Arm("TRIP-1")
	tracker.Arm("TRIP-2")
	require.Eventually(t, func() bool { return store.count() == 2 }, time.Second, 5*time.Millisecond)

	tracker.Disarm("TRIP-1")
	assert.False(t, tracker.Armed("TRIP-1"))
	assert.True(t, tracker.Armed("TRIP-2"))
}
