package tripstate

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"freight-dispatch-api-server/internal/models"
	"freight-dispatch-api-server/internal/state"
)

// maxTransitionAttempts bounds the reload-revalidate loop under contention.
// A loser whose request became illegal exits with a rejection citing the
// winning state on the next iteration; only a request that stays legal
// retries the conditional write.
const maxTransitionAttempts = 3

// Service is the authoritative boundary for every trip state mutation.
// Nothing else in the system writes a trip's unit or cargo state.
type Service struct {
	trips     TripStore
	audit     AuditStore
	tracker   Tracker
	publisher Publisher
	log       logrus.FieldLogger
}

func NewService(trips TripStore, audit AuditStore, tracker Tracker, publisher Publisher, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{trips: trips, audit: audit, tracker: tracker, publisher: publisher, log: log}
}

// TransitionResult reports an effective (or idempotently skipped) state
// change back to the caller.
type TransitionResult struct {
	TripID  string        `json:"tripID"`
	Machine state.Machine `json:"machine"`
	From    string        `json:"from"`
	To      string        `json:"to"`
	NoOp    bool          `json:"noOp,omitempty"`
	At      time.Time     `json:"at"`
}

// TransitionEvent is published after every accepted transition. Consumers
// (notification fan-out, live dashboards) subscribe to it instead of the
// core knowing any delivery channel.
type TransitionEvent struct {
	Event   string        `json:"event"`
	TripID  string        `json:"tripID"`
	Machine state.Machine `json:"machine"`
	From    string        `json:"from"`
	To      string        `json:"to"`
	Role    state.Role    `json:"role"`
	ActorID string        `json:"actorID"`
	At      time.Time     `json:"at"`
}

// RequestUnitTransition validates, persists, audits, and fires the GPS side
// effect for one unit machine transition. At most one request wins per
// current state; a loser is re-validated against the state that won.
func (s *Service) RequestUnitTransition(ctx context.Context, tripID string, to state.UnitState, role state.Role, actorID, note string, geo *models.GeoPoint) (*TransitionResult, error) {
	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		trip, err := s.trips.FindTripByID(ctx, tripID)
		if err != nil {
			return nil, err
		}
		from := trip.UnitState

		if d := state.ValidateUnit(from, to, role); !d.Allowed {
			return nil, &state.RejectionError{Machine: state.MachineUnit, Requested: string(to), Decision: d}
		}

		err = s.trips.CompareAndSetUnitState(ctx, tripID, from, to)
		if errors.Is(err, ErrStateConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		now := time.Now()
		s.appendAudit(ctx, &models.TransitionRecord{
			TripID:  tripID,
			Machine: state.MachineUnit,
			From:    string(from),
			To:      string(to),
			Role:    role,
			ActorID: actorID,
			At:      now,
			Note:    note,
			Geo:     geo,
		})
		s.applyTrackingSideEffect(tripID, from, to)
		s.publishEvent(ctx, tripID, state.MachineUnit, string(from), string(to), role, actorID, now)

		return &TransitionResult{TripID: tripID, Machine: state.MachineUnit, From: string(from), To: string(to), At: now}, nil
	}
	return nil, &PersistenceError{Op: "unit transition", Err: ErrStateConflict}
}

// RequestCargoTransition is the cargo machine counterpart. Cargo transitions
// may attach structured measurements; they have no tracking side effect.
func (s *Service) RequestCargoTransition(ctx context.Context, tripID string, to state.CargoState, role state.Role, actorID, note string, details *models.CargoDetails) (*TransitionResult, error) {
	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		trip, err := s.trips.FindTripByID(ctx, tripID)
		if err != nil {
			return nil, err
		}
		from := trip.CargoState

		if d := state.ValidateCargo(from, to, role); !d.Allowed {
			return nil, &state.RejectionError{Machine: state.MachineCargo, Requested: string(to), Decision: d}
		}

		err = s.trips.CompareAndSetCargoState(ctx, tripID, from, to, details)
		if errors.Is(err, ErrStateConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		now := time.Now()
		s.appendAudit(ctx, &models.TransitionRecord{
			TripID:  tripID,
			Machine: state.MachineCargo,
			From:    string(from),
			To:      string(to),
			Role:    role,
			ActorID: actorID,
			At:      now,
			Note:    note,
		})
		s.publishEvent(ctx, tripID, state.MachineCargo, string(from), string(to), role, actorID, now)

		return &TransitionResult{TripID: tripID, Machine: state.MachineCargo, From: string(from), To: string(to), At: now}, nil
	}
	return nil, &PersistenceError{Op: "cargo transition", Err: ErrStateConflict}
}

// Cancel is the unconditional escape into the cancelled states of both
// machines from any non-terminal state, bypassing the adjacency tables.
// Cancelling an already cancelled trip is a no-op success with no extra
// audit entry.
func (s *Service) Cancel(ctx context.Context, tripID, reason string, role state.Role, actorID string) (*TransitionResult, error) {
	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		trip, err := s.trips.FindTripByID(ctx, tripID)
		if err != nil {
			return nil, err
		}
		fromUnit := trip.UnitState

		if fromUnit == state.UnitCancelled {
			return &TransitionResult{TripID: tripID, Machine: state.MachineUnit, From: string(fromUnit), To: string(state.UnitCancelled), NoOp: true, At: time.Now()}, nil
		}
		if state.IsTerminalUnit(fromUnit) {
			// Completed trips stay completed.
			return nil, &state.RejectionError{
				Machine:   state.MachineUnit,
				Requested: string(state.UnitCancelled),
				Decision:  state.Decision{Reason: state.ReasonIllegalTransition, Current: string(fromUnit)},
			}
		}

		cancelCargo := !state.IsTerminalCargo(trip.CargoState)
		err = s.trips.CancelTrip(ctx, tripID, fromUnit, trip.CargoState, cancelCargo, reason)
		if errors.Is(err, ErrStateConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		now := time.Now()
		// One audit entry per effective cancellation; the cargo escape rides
		// along in the same record.
		s.appendAudit(ctx, &models.TransitionRecord{
			TripID:  tripID,
			Machine: state.MachineUnit,
			From:    string(fromUnit),
			To:      string(state.UnitCancelled),
			Role:    role,
			ActorID: actorID,
			At:      now,
			Note:    reason,
		})
		s.applyTrackingSideEffect(tripID, fromUnit, state.UnitCancelled)
		s.publishEvent(ctx, tripID, state.MachineUnit, string(fromUnit), string(state.UnitCancelled), role, actorID, now)

		return &TransitionResult{TripID: tripID, Machine: state.MachineUnit, From: string(fromUnit), To: string(state.UnitCancelled), At: now}, nil
	}
	return nil, &PersistenceError{Op: "cancel", Err: ErrStateConflict}
}

// CurrentState returns both machine states for a trip.
func (s *Service) CurrentState(ctx context.Context, tripID string) (state.UnitState, state.CargoState, error) {
	trip, err := s.trips.FindTripByID(ctx, tripID)
	if err != nil {
		return "", "", err
	}
	return trip.UnitState, trip.CargoState, nil
}

// History returns the trip's transition records, newest first.
func (s *Service) History(ctx context.Context, tripID string) ([]models.TransitionRecord, error) {
	if _, err := s.trips.FindTripByID(ctx, tripID); err != nil {
		return nil, err
	}
	return s.audit.RecordsByTrip(ctx, tripID)
}

// AttachNote adds a late note or coordinates to the newest audit record for
// the given trip and state.
func (s *Service) AttachNote(ctx context.Context, tripID string, machine state.Machine, st, note string, geo *models.GeoPoint) error {
	if _, err := s.trips.FindTripByID(ctx, tripID); err != nil {
		return err
	}
	return s.audit.AttachNote(ctx, tripID, machine, st, note, geo)
}

func (s *Service) appendAudit(ctx context.Context, rec *models.TransitionRecord) {
	if err := s.audit.AppendRecord(ctx, rec); err != nil {
		auditErr := &AuditWriteError{TripID: rec.TripID, Err: err}
		s.log.WithFields(logrus.Fields{
			"trip_id": rec.TripID,
			"machine": rec.Machine,
			"from":    rec.From,
			"to":      rec.To,
			"alert":   true,
		}).WithError(auditErr).Error("transition committed but audit append failed")
	}
}

func (s *Service) applyTrackingSideEffect(tripID string, from, to state.UnitState) {
	if s.tracker == nil {
		return
	}
	switch {
	case !state.IsInTransit(from) && state.IsInTransit(to):
		s.tracker.Arm(tripID)
	case state.IsInTransit(from) && !state.IsInTransit(to):
		s.tracker.Disarm(tripID)
	}
}

func (s *Service) publishEvent(ctx context.Context, tripID string, machine state.Machine, from, to string, role state.Role, actorID string, at time.Time) {
	if s.publisher == nil {
		return
	}
	event := TransitionEvent{
		Event:   "trip_state_changed",
		TripID:  tripID,
		Machine: machine,
		From:    from,
		To:      to,
		Role:    role,
		ActorID: actorID,
		At:      at,
	}
	if err := s.publisher.Publish(ctx, tripID, event); err != nil {
		s.log.WithFields(logrus.Fields{"trip_id": tripID, "machine": machine}).
			WithError(err).Warn("transition event publish failed")
	}
}
