package category

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"freight-dispatch-api-server/internal/models"
	"freight-dispatch-api-server/internal/state"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func dispatchWithWindow(end time.Time) *models.Dispatch {
	return &models.Dispatch{DispatchID: "DSP-1", Units: 3, WindowEndsAt: end}
}

func trip(unit state.UnitState, carrier string) models.Trip {
	return models.Trip{DispatchID: "DSP-1", UnitState: unit, CarrierID: carrier}
}

func TestOneTripStillMovingKeepsDispatchInProgress(t *testing.T) {
	trips := []models.Trip{
		trip(state.UnitCompleted, "CARR-1"),
		trip(state.UnitArrivedDestination, "CARR-1"),
		trip(state.UnitPending, ""),
	}
	got := Categorize(dispatchWithWindow(now.Add(time.Hour)), trips, now)
	assert.Equal(t, CategoryInProgress, got)
}

func TestAllTerminalIsCompleted(t *testing.T) {
	trips := []models.Trip{
		trip(state.UnitCompleted, "CARR-1"),
		trip(state.UnitCompleted, "CARR-2"),
		trip(state.UnitCancelled, ""),
	}
	got := Categorize(dispatchWithWindow(now.Add(-time.Hour)), trips, now)
	assert.Equal(t, CategoryCompleted, got)
}

func TestPastWindowUnassignedIsExpired(t *testing.T) {
	trips := []models.Trip{trip(state.UnitPending, ""), trip(state.UnitPending, "")}
	got := Categorize(dispatchWithWindow(now.Add(-time.Minute)), trips, now)
	assert.Equal(t, CategoryExpired, got)
}

func TestPastWindowAssignedButIdleIsDelayed(t *testing.T) {
	trips := []models.Trip{trip(state.UnitAssigned, "CARR-1"), trip(state.UnitPending, "")}
	got := Categorize(dispatchWithWindow(now.Add(-time.Minute)), trips, now)
	assert.Equal(t, CategoryDelayed, got)
}

func TestNothingAssignedInsideWindowIsPending(t *testing.T) {
	trips := []models.Trip{trip(state.UnitPending, ""), trip(state.UnitPending, "")}
	got := Categorize(dispatchWithWindow(now.Add(time.Hour)), trips, now)
	assert.Equal(t, CategoryPending, got)
}

func TestAssignedIsTheResidualBucket(t *testing.T) {
	trips := []models.Trip{trip(state.UnitAssigned, "CARR-1"), trip(state.UnitPending, "")}
	got := Categorize(dispatchWithWindow(now.Add(time.Hour)), trips, now)
	assert.Equal(t, CategoryAssigned, got)
}

func TestNoTripsIsNeverCompleted(t *testing.T) {
	got := Categorize(dispatchWithWindow(now.Add(time.Hour)), nil, now)
	assert.Equal(t, CategoryPending, got)
}

func TestInProgressBeatsLateness(t *testing.T) {
	// A moving trip keeps the dispatch active even past its window.
	trips := []models.Trip{trip(state.UnitTransitToDestination, "CARR-1")}
	got := Categorize(dispatchWithWindow(now.Add(-time.Hour)), trips, now)
	assert.Equal(t, CategoryInProgress, got)
}

func TestIdenticalInputsClassifyIdentically(t *testing.T) {
	trips := []models.Trip{
		trip(state.UnitCompleted, "CARR-1"),
		trip(state.UnitArrivedDestination, "CARR-1"),
		trip(state.UnitPending, ""),
	}
	d := dispatchWithWindow(now.Add(time.Hour))
	first := Categorize(d, trips, now)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Categorize(d, trips, now))
	}
}
