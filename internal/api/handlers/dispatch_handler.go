package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"freight-dispatch-api-server/internal/api/middleware"
	"freight-dispatch-api-server/internal/category"
	"freight-dispatch-api-server/internal/models"
	"freight-dispatch-api-server/internal/repository"
	"freight-dispatch-api-server/internal/state"
)

type DispatchHandler struct {
	Dispatches *repository.DispatchRepo
	Trips      *repository.TripRepo
}

type CreateDispatchRequest struct {
	Units        int             `json:"units" binding:"required,min=1"`
	Route        models.Route    `json:"route" binding:"required"`
	Priority     models.Priority `json:"priority"`
	ScheduledAt  time.Time       `json:"scheduledAt" binding:"required"`
	WindowEndsAt time.Time       `json:"windowEndsAt" binding:"required"`
}

// DispatchView is a dispatch plus its derived category and trips, the shape
// the list and detail endpoints both return.
type DispatchView struct {
	models.Dispatch
	Category category.Category `json:"category"`
	Trips    []models.Trip     `json:"trips"`
}

// CreateDispatch records the order and fans it out into Units trips, each
// starting with both machines in pending.
func (h *DispatchHandler) CreateDispatch(c *gin.Context) {
	var req CreateDispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.WindowEndsAt.After(req.ScheduledAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "windowEndsAt must be after scheduledAt"})
		return
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}

	now := time.Now()
	dispatch := models.Dispatch{
		DispatchID:   "DSP-" + uuid.New().String()[:8],
		Units:        req.Units,
		Route:        req.Route,
		Priority:     req.Priority,
		ScheduledAt:  req.ScheduledAt,
		WindowEndsAt: req.WindowEndsAt,
		CreatedBy:    middleware.ActorID(c),
		CreatedAt:    now,
	}
	if err := h.Dispatches.InsertDispatch(c.Request.Context(), &dispatch); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create dispatch"})
		return
	}

	trips := make([]models.Trip, req.Units)
	for i := range trips {
		trips[i] = models.Trip{
			TripID:     "TRIP-" + uuid.New().String()[:8],
			DispatchID: dispatch.DispatchID,
			Seq:        i + 1,
			UnitState:  state.UnitPending,
			CargoState: state.CargoPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}
	if err := h.Trips.InsertTrips(c.Request.Context(), trips); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create trips"})
		return
	}

	c.JSON(http.StatusCreated, DispatchView{
		Dispatch: dispatch,
		Category: category.CategoryPending,
		Trips:    trips,
	})
}

// GetAllDispatches lists every dispatch with its derived category. An
// optional ?category= query filters to one bucket.
func (h *DispatchHandler) GetAllDispatches(c *gin.Context) {
	dispatches, err := h.Dispatches.FindAllDispatches(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dispatches"})
		return
	}

	filter := category.Category(c.Query("category"))
	now := time.Now()
	views := make([]DispatchView, 0, len(dispatches))
	for i := range dispatches {
		trips, err := h.Trips.FindTripsByDispatch(c.Request.Context(), dispatches[i].DispatchID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trips"})
			return
		}
		cat := category.Categorize(&dispatches[i], trips, now)
		if filter != "" && cat != filter {
			continue
		}
		views = append(views, DispatchView{Dispatch: dispatches[i], Category: cat, Trips: trips})
	}

	c.JSON(http.StatusOK, views)
}

// GetDispatch returns one dispatch with its trips and category.
func (h *DispatchHandler) GetDispatch(c *gin.Context) {
	dispatchID := c.Param("id")
	dispatch, err := h.Dispatches.FindDispatchByID(c.Request.Context(), dispatchID)
	if errors.Is(err, repository.ErrDispatchNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Dispatch not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dispatch"})
		return
	}

	trips, err := h.Trips.FindTripsByDispatch(c.Request.Context(), dispatchID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trips"})
		return
	}

	c.JSON(http.StatusOK, DispatchView{
		Dispatch: *dispatch,
		Category: category.Categorize(dispatch, trips, time.Now()),
		Trips:    trips,
	})
}
