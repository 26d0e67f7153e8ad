package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"freight-dispatch-api-server/internal/api/middleware"
	"freight-dispatch-api-server/internal/models"
	"freight-dispatch-api-server/internal/state"
	"freight-dispatch-api-server/internal/tripstate"
)

type fakeAssigner struct {
	fail  error
	calls int
}

func (f *fakeAssigner) AssignResources(_ context.Context, tripID, carrierID, driverID, truckID, trailerID string) error {
	f.calls++
	return f.fail
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func actAs(role state.Role, actorID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxRole, role)
		c.Set(middleware.CtxActorID, actorID)
	}
}

func seedPendingTrip(store *tripstate.MemoryStore, tripID string) {
	store.PutTrip(&models.Trip{
		TripID:     tripID,
		DispatchID: "DSP-test",
		Seq:        1,
		UnitState:  state.UnitPending,
		CargoState: state.CargoPending,
	})
}

func TestAssignResourceWriteFailureLeavesTripRetryable(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := tripstate.NewMemoryStore()
	seedPendingTrip(store, "TRIP-assign")
	service := tripstate.NewService(store, store, nil, nil, testLogger())
	assigner := &fakeAssigner{fail: errors.New("write timeout")}
	handler := &TripHandler{Service: service, Trips: assigner}

	router := gin.New()
	router.POST("/trips/:id/assign", actAs(state.RoleCoordinator, "coord-1"), handler.Assign)

	body := `{"carrierID":"CAR-1","driverID":"driver-1","truckID":"TRK-1"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/trips/TRIP-assign/assign", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	// The failed attempt must not have moved the machine or written audit.
	trip, err := store.FindTripByID(context.Background(), "TRIP-assign")
	require.NoError(t, err)
	require.Equal(t, state.UnitPending, trip.UnitState)
	records, err := store.RecordsByTrip(context.Background(), "TRIP-assign")
	require.NoError(t, err)
	require.Empty(t, records)

	// Retrying after the resource store recovers succeeds.
	assigner.fail = nil
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/trips/TRIP-assign/assign", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 2, assigner.calls)

	trip, err = store.FindTripByID(context.Background(), "TRIP-assign")
	require.NoError(t, err)
	require.Equal(t, state.UnitAssigned, trip.UnitState)
	records, err = store.RecordsByTrip(context.Background(), "TRIP-assign")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, string(state.UnitAssigned), records[0].To)
}

func TestAssignRejectedTransitionReportsConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := tripstate.NewMemoryStore()
	store.PutTrip(&models.Trip{
		TripID:     "TRIP-done",
		DispatchID: "DSP-test",
		Seq:        1,
		UnitState:  state.UnitCompleted,
		CargoState: state.CargoCompleted,
	})
	service := tripstate.NewService(store, store, nil, nil, testLogger())
	handler := &TripHandler{Service: service, Trips: &fakeAssigner{}}

	router := gin.New()
	router.POST("/trips/:id/assign", actAs(state.RoleCoordinator, "coord-1"), handler.Assign)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/trips/TRIP-done/assign",
		bytes.NewBufferString(`{"carrierID":"CAR-1","driverID":"driver-1"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), string(state.UnitCompleted))
}
