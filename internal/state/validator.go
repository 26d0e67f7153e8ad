package state

import "fmt"

// RejectReason classifies why a transition request was refused.
type RejectReason string

const (
	ReasonUnknownState      RejectReason = "unknown_state"
	ReasonIllegalTransition RejectReason = "illegal_transition"
	ReasonUnauthorized      RejectReason = "unauthorized"
)

// Decision records whether a transition is allowed and, if not, why. Current
// carries the state the decision was computed against so a losing caller in a
// race sees the state that actually won.
type Decision struct {
	Allowed bool
	Reason  RejectReason
	Current string
}

// ValidateUnit checks a requested unit transition against the transition
// table and the authorization map. It is a pure function: identical inputs
// always produce the identical decision.
func ValidateUnit(current, requested UnitState, role Role) Decision {
	succ, ok := UnitSuccessors(current)
	if !ok {
		return Decision{Reason: ReasonUnknownState, Current: string(current)}
	}
	if _, ok := succ[requested]; !ok {
		return Decision{Reason: ReasonIllegalTransition, Current: string(current)}
	}
	if !roleAllowed(UnitRolesFor(requested), role) {
		return Decision{Reason: ReasonUnauthorized, Current: string(current)}
	}
	return Decision{Allowed: true, Current: string(current)}
}

// ValidateCargo checks a requested cargo transition the same way.
func ValidateCargo(current, requested CargoState, role Role) Decision {
	succ, ok := CargoSuccessors(current)
	if !ok {
		return Decision{Reason: ReasonUnknownState, Current: string(current)}
	}
	if _, ok := succ[requested]; !ok {
		return Decision{Reason: ReasonIllegalTransition, Current: string(current)}
	}
	if !roleAllowed(CargoRolesFor(requested), role) {
		return Decision{Reason: ReasonUnauthorized, Current: string(current)}
	}
	return Decision{Allowed: true, Current: string(current)}
}

// RejectionError wraps a failed Decision as an error for callers above the
// validator.
type RejectionError struct {
	Machine   Machine
	Requested string
	Decision  Decision
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s transition to %q rejected (%s, current state %q)",
		e.Machine, e.Requested, e.Decision.Reason, e.Decision.Current)
}
