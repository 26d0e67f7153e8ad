package category

import (
	"time"

	"freight-dispatch-api-server/internal/models"
	"freight-dispatch-api-server/internal/state"
)

// Category is the operational bucket a dispatch is triaged into for list and
// tab rendering. It is derived on demand from the dispatch's trips and never
// persisted.
type Category string

const (
	CategoryPending    Category = "pending"
	CategoryInProgress Category = "in_progress"
	CategoryAssigned   Category = "assigned"
	CategoryDelayed    Category = "delayed"
	CategoryExpired    Category = "expired"
	CategoryCompleted  Category = "completed"
)

// Categorize classifies a dispatch by aggregating the states of its trips.
// The check order encodes priority: a finished dispatch suppresses every
// other bucket, an active one suppresses the lateness buckets, and Assigned
// is the residual default. The function is pure; now is passed in so two
// identical inputs always classify identically.
func Categorize(dispatch *models.Dispatch, trips []models.Trip, now time.Time) Category {
	var (
		assignedCount int
		anyInMotion   bool
		allTerminal   = len(trips) > 0
	)
	for i := range trips {
		trip := &trips[i]
		if trip.Assigned() {
			assignedCount++
		}
		if state.IsInMotion(trip.UnitState) {
			anyInMotion = true
		}
		if !state.IsTerminalUnit(trip.UnitState) {
			allTerminal = false
		}
	}

	pastWindow := !dispatch.WindowEndsAt.IsZero() && now.After(dispatch.WindowEndsAt)

	switch {
	case allTerminal && !anyInMotion:
		return CategoryCompleted
	case anyInMotion:
		return CategoryInProgress
	case pastWindow && assignedCount == 0:
		return CategoryExpired
	case pastWindow:
		return CategoryDelayed
	case assignedCount == 0:
		return CategoryPending
	default:
		return CategoryAssigned
	}
}
