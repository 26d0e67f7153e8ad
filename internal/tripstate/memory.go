package tripstate

import (
	"context"
	"sort"
	"sync"

	"freight-dispatch-api-server/internal/models"
	"freight-dispatch-api-server/internal/state"
)

// MemoryStore implements TripStore and AuditStore in process memory with the
// same compare-and-set semantics as the MongoDB store. It backs the service
// tests and local development without a database.
type MemoryStore struct {
	mu      sync.Mutex
	trips   map[string]*models.Trip
	records []models.TransitionRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{trips: make(map[string]*models.Trip)}
}

// PutTrip inserts or replaces a trip.
func (m *MemoryStore) PutTrip(trip *models.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *trip
	m.trips[trip.TripID] = &cp
}

func (m *MemoryStore) FindTripByID(_ context.Context, tripID string) (*models.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[tripID]
	if !ok {
		return nil, ErrTripNotFound
	}
	cp := *trip
	return &cp, nil
}

func (m *MemoryStore) CompareAndSetUnitState(_ context.Context, tripID string, expected, next state.UnitState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[tripID]
	if !ok {
		return ErrTripNotFound
	}
	if trip.UnitState != expected {
		return ErrStateConflict
	}
	trip.UnitState = next
	return nil
}

func (m *MemoryStore) CompareAndSetCargoState(_ context.Context, tripID string, expected, next state.CargoState, details *models.CargoDetails) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[tripID]
	if !ok {
		return ErrTripNotFound
	}
	if trip.CargoState != expected {
		return ErrStateConflict
	}
	trip.CargoState = next
	if details != nil {
		if details.MeasuredWeight != nil {
			trip.Cargo.MeasuredWeight = details.MeasuredWeight
		}
		if details.PackageCount != nil {
			trip.Cargo.PackageCount = details.PackageCount
		}
		trip.Cargo.Documents = append(trip.Cargo.Documents, details.Documents...)
	}
	return nil
}

func (m *MemoryStore) CancelTrip(_ context.Context, tripID string, expectedUnit state.UnitState, expectedCargo state.CargoState, cancelCargo bool, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[tripID]
	if !ok {
		return ErrTripNotFound
	}
	if trip.UnitState != expectedUnit || trip.CargoState != expectedCargo {
		return ErrStateConflict
	}
	trip.UnitState = state.UnitCancelled
	if cancelCargo {
		trip.CargoState = state.CargoCancelledNoLoad
	}
	trip.CancelReason = reason
	return nil
}

func (m *MemoryStore) AppendRecord(_ context.Context, rec *models.TransitionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *rec)
	return nil
}

func (m *MemoryStore) RecordsByTrip(_ context.Context, tripID string) ([]models.TransitionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TransitionRecord
	for _, rec := range m.records {
		if rec.TripID == tripID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	return out, nil
}

func (m *MemoryStore) AttachNote(_ context.Context, tripID string, machine state.Machine, st, note string, geo *models.GeoPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.records) - 1; i >= 0; i-- {
		rec := &m.records[i]
		if rec.TripID == tripID && rec.Machine == machine && rec.To == st {
			if note != "" {
				rec.Note = note
			}
			if geo != nil {
				rec.Geo = geo
			}
			return nil
		}
	}
	return ErrTripNotFound
}
