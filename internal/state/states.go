package state

// Machine identifies which of the two trip lifecycles a transition targets.
type Machine string

const (
	MachineUnit  Machine = "unit"
	MachineCargo Machine = "cargo"
)

// Role is the capability class of the actor requesting a transition.
type Role string

const (
	RoleDriver      Role = "driver"
	RoleGate        Role = "gate"
	RoleSupervisor  Role = "supervisor"
	RoleCoordinator Role = "coordinator"

	// RoleAutomatic marks states that are only ever entered by the service
	// itself (trip creation, the cancel escape), never by a direct request.
	RoleAutomatic Role = "system"
)

// UnitState tracks the physical handoff lifecycle of the truck/driver.
type UnitState string

const (
	UnitPending              UnitState = "pending"
	UnitAssigned             UnitState = "assigned"
	UnitDriverConfirmed      UnitState = "driver_confirmed"
	UnitTransitToOrigin      UnitState = "transit_to_origin"
	UnitArrivedOrigin        UnitState = "arrived_origin"
	UnitWaitingBay           UnitState = "waiting_bay"
	UnitCalledToLoad         UnitState = "called_to_load"
	UnitPositionedForLoad    UnitState = "positioned_for_load"
	UnitLoadComplete         UnitState = "load_complete"
	UnitDepartingOrigin      UnitState = "departing_origin"
	UnitTransitToDestination UnitState = "transit_to_destination"
	UnitArrivedDestination   UnitState = "arrived_destination"
	UnitCalledToUnload       UnitState = "called_to_unload"
	UnitUnloading            UnitState = "unloading"
	UnitUnloaded             UnitState = "unloaded"
	UnitDepartingDestination UnitState = "departing_destination"
	UnitCompleted            UnitState = "completed"
	UnitIncident             UnitState = "incident"
	UnitCancelled            UnitState = "cancelled"
)

// CargoState tracks the loading/unloading lifecycle of the goods. It is
// deliberately independent from UnitState; the two machines may be out of
// phase (cargo already loaded while the unit is still positioned at the bay).
type CargoState string

const (
	CargoPending         CargoState = "pending"
	CargoPlanned         CargoState = "planned"
	CargoDocsPrepared    CargoState = "docs_prepared"
	CargoLoading         CargoState = "loading_in_progress"
	CargoLoaded          CargoState = "loaded"
	CargoShortage        CargoState = "shortage"
	CargoDocsValidated   CargoState = "docs_validated"
	CargoInTransit       CargoState = "in_transit"
	CargoUnloading       CargoState = "unloading_in_progress"
	CargoUnloaded        CargoState = "unloaded"
	CargoRejection       CargoState = "rejection"
	CargoClosingDocs     CargoState = "closing_docs"
	CargoCompleted       CargoState = "completed"
	CargoCancelledNoLoad CargoState = "cancelled_no_load"
)
