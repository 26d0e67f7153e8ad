package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUnitAccepted(t *testing.T) {
	d := ValidateUnit(UnitPending, UnitAssigned, RoleCoordinator)
	assert.True(t, d.Allowed)
	assert.Equal(t, string(UnitPending), d.Current)
}

func TestValidateUnitIllegalJump(t *testing.T) {
	// Skipping the whole journey in a single request is never legal.
	d := ValidateUnit(UnitPending, UnitArrivedDestination, RoleDriver)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonIllegalTransition, d.Reason)
}

func TestValidateUnitGateEntryReservedForGateOperator(t *testing.T) {
	// A driver cannot confirm their own plant entry; the edge exists but the
	// role is wrong, so the rejection must be Unauthorized, not Illegal.
	d := ValidateUnit(UnitTransitToOrigin, UnitArrivedOrigin, RoleDriver)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonUnauthorized, d.Reason)

	d = ValidateUnit(UnitTransitToOrigin, UnitArrivedOrigin, RoleGate)
	assert.True(t, d.Allowed)
}

func TestValidateUnitAutomaticStatesNeverDirectlyRequestable(t *testing.T) {
	for _, role := range []Role{RoleDriver, RoleGate, RoleSupervisor, RoleCoordinator} {
		d := ValidateUnit(UnitArrivedOrigin, UnitCancelled, role)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonUnauthorized, d.Reason)
	}
}

func TestValidateUnitUnknownState(t *testing.T) {
	d := ValidateUnit(UnitState("garbage"), UnitAssigned, RoleCoordinator)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonUnknownState, d.Reason)
}

func TestValidateCargo(t *testing.T) {
	tests := []struct {
		name      string
		current   CargoState
		requested CargoState
		role      Role
		allowed   bool
		reason    RejectReason
	}{
		{"planning", CargoPending, CargoPlanned, RoleCoordinator, true, ""},
		{"loading by supervisor", CargoDocsPrepared, CargoLoading, RoleSupervisor, true, ""},
		{"loading by driver", CargoDocsPrepared, CargoLoading, RoleDriver, false, ReasonUnauthorized},
		{"shortage branch", CargoLoading, CargoShortage, RoleSupervisor, true, ""},
		{"docs validated at the gate", CargoLoaded, CargoDocsValidated, RoleGate, true, ""},
		{"skip to completed", CargoPlanned, CargoCompleted, RoleCoordinator, false, ReasonIllegalTransition},
		{"terminal has no exits", CargoCompleted, CargoClosingDocs, RoleCoordinator, false, ReasonIllegalTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ValidateCargo(tt.current, tt.requested, tt.role)
			assert.Equal(t, tt.allowed, d.Allowed)
			if !tt.allowed {
				assert.Equal(t, tt.reason, d.Reason)
			}
		})
	}
}

func TestValidateIsDeterministic(t *testing.T) {
	first := ValidateUnit(UnitArrivedOrigin, UnitWaitingBay, RoleGate)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, ValidateUnit(UnitArrivedOrigin, UnitWaitingBay, RoleGate))
	}
}

func TestRejectionErrorMessage(t *testing.T) {
	err := &RejectionError{
		Machine:   MachineUnit,
		Requested: string(UnitArrivedDestination),
		Decision:  Decision{Reason: ReasonIllegalTransition, Current: string(UnitPending)},
	}
	assert.Contains(t, err.Error(), "illegal_transition")
	assert.Contains(t, err.Error(), "pending")
}
