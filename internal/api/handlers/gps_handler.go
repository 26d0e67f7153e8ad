package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"freight-dispatch-api-server/internal/repository"
	"freight-dispatch-api-server/internal/tripstate"
)

const defaultTrackLimit = 100

type GPSHandler struct {
	Trips   *repository.TripRepo
	Samples *repository.GPSRepo
}

// GetTrack returns the trip's recorded GPS samples, newest first. The
// ?limit= query caps the result; it defaults to the last hundred samples.
func (h *GPSHandler) GetTrack(c *gin.Context) {
	tripID := c.Param("id")
	if _, err := h.Trips.FindTripByID(c.Request.Context(), tripID); err != nil {
		if errors.Is(err, tripstate.ErrTripNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trip"})
		return
	}

	limit := int64(defaultTrackLimit)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	samples, err := h.Samples.SamplesByTrip(c.Request.Context(), tripID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch track"})
		return
	}
	c.JSON(http.StatusOK, samples)
}
