package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"freight-dispatch-api-server/internal/api/middleware"
	"freight-dispatch-api-server/internal/models"
	"freight-dispatch-api-server/internal/socket"
	"freight-dispatch-api-server/internal/state"
	"freight-dispatch-api-server/internal/tripstate"
)

// ResourceAssigner attaches carrier/driver/equipment references to a trip.
type ResourceAssigner interface {
	AssignResources(ctx context.Context, tripID, carrierID, driverID, truckID, trailerID string) error
}

type TripHandler struct {
	Service *tripstate.Service
	Trips   ResourceAssigner
	Hub     *socket.Hub
}

type UnitTransitionRequest struct {
	To   state.UnitState  `json:"to" binding:"required"`
	Note string           `json:"note"`
	Geo  *models.GeoPoint `json:"geo"`
}

type CargoTransitionRequest struct {
	To      state.CargoState     `json:"to" binding:"required"`
	Note    string               `json:"note"`
	Details *models.CargoDetails `json:"details"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type AssignRequest struct {
	CarrierID string `json:"carrierID" binding:"required"`
	DriverID  string `json:"driverID" binding:"required"`
	TruckID   string `json:"truckID"`
	TrailerID string `json:"trailerID"`
}

// writeTransitionError maps trip state service errors onto HTTP statuses:
// unknown trip is 404, an unauthorized role is 403, any other rejection is a
// 409 carrying the current state so the caller can resync.
func writeTransitionError(c *gin.Context, err error) {
	var rejection *state.RejectionError
	switch {
	case errors.Is(err, tripstate.ErrTripNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
	case errors.As(err, &rejection):
		status := http.StatusConflict
		if rejection.Decision.Reason == state.ReasonUnauthorized {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{
			"error":        rejection.Error(),
			"reason":       rejection.Decision.Reason,
			"currentState": rejection.Decision.Current,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transition failed"})
	}
}

// UnitTransition requests a physical lifecycle transition for one trip.
func (h *TripHandler) UnitTransition(c *gin.Context) {
	var req UnitTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Service.RequestUnitTransition(
		c.Request.Context(),
		c.Param("id"),
		req.To,
		middleware.ActingRole(c),
		middleware.ActorID(c),
		req.Note,
		req.Geo,
	)
	if err != nil {
		writeTransitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CargoTransition requests a cargo lifecycle transition, optionally carrying
// measured weight, package count, or document pointers.
func (h *TripHandler) CargoTransition(c *gin.Context) {
	var req CargoTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Service.RequestCargoTransition(
		c.Request.Context(),
		c.Param("id"),
		req.To,
		middleware.ActingRole(c),
		middleware.ActorID(c),
		req.Note,
		req.Details,
	)
	if err != nil {
		writeTransitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Cancel terminates a trip from any non-terminal state. Repeating a cancel
// returns success without a second audit entry.
func (h *TripHandler) Cancel(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Service.Cancel(c.Request.Context(), c.Param("id"), req.Reason, middleware.ActingRole(c), middleware.ActorID(c))
	if err != nil {
		writeTransitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetState returns the current state of both machines.
func (h *TripHandler) GetState(c *gin.Context) {
	unit, cargo, err := h.Service.CurrentState(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeTransitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tripID":     c.Param("id"),
		"unitState":  unit,
		"cargoState": cargo,
	})
}

// GetHistory returns the trip's audit trail, newest first.
func (h *TripHandler) GetHistory(c *gin.Context) {
	records, err := h.Service.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeTransitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Assign attaches carrier, driver, and equipment to a trip and moves its
// unit machine from pending to assigned.
func (h *TripHandler) Assign(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tripID := c.Param("id")

	// The resource write goes first: attaching references to a still-pending
	// trip is idempotent, so a transition failure leaves the endpoint
	// retryable. The reverse order would strand the trip in assigned with no
	// carrier on a resource write failure.
	if err := h.Trips.AssignResources(c.Request.Context(), tripID, req.CarrierID, req.DriverID, req.TruckID, req.TrailerID); err != nil {
		writeTransitionError(c, err)
		return
	}

	result, err := h.Service.RequestUnitTransition(
		c.Request.Context(),
		tripID,
		state.UnitAssigned,
		middleware.ActingRole(c),
		middleware.ActorID(c),
		"assigned to carrier "+req.CarrierID,
		nil,
	)
	if err != nil {
		writeTransitionError(c, err)
		return
	}

	if h.Hub != nil {
		notification, _ := json.Marshal(gin.H{
			"event":  "trip_assigned",
			"tripID": tripID,
		})
		h.Hub.Send(req.DriverID, notification)
	}

	c.JSON(http.StatusOK, result)
}
