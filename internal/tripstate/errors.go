package tripstate

import (
	"errors"
	"fmt"
)

// ErrTripNotFound is returned when the requested trip does not exist.
var ErrTripNotFound = errors.New("trip not found")

// ErrStateConflict is returned by a store when a conditional write matched no
// document because another request changed the state first. The service
// handles it by re-validating against the state that won.
var ErrStateConflict = errors.New("state changed concurrently")

// PersistenceError wraps a storage failure. The conditional write guarantees
// no partial state was observed, so retrying the whole request is safe.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// AuditWriteError marks the one inconsistency that is reported rather than
// rolled back: the state write succeeded but the audit append did not. The
// state change stays authoritative; this error is logged and alerted, never
// returned to the requesting actor.
type AuditWriteError struct {
	TripID string
	Err    error
}

func (e *AuditWriteError) Error() string {
	return fmt.Sprintf("audit append failed for trip %s after state commit: %v", e.TripID, e.Err)
}

func (e *AuditWriteError) Unwrap() error { return e.Err }
