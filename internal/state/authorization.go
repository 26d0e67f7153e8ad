package state

// unitAuthorization maps a target unit state to the roles allowed to request
// entry into it. RoleAutomatic entries can never be requested directly; they
// are produced by the service as a side effect (trip creation, cancellation).
//
// Gate entry/exit and the waiting bay belong to access control, the loading
// bay sequence to the load supervisor, assignment and completion to the
// dispatch coordinator, and the road states to the driver.
var unitAuthorization = map[UnitState][]Role{
	UnitPending:              {RoleAutomatic},
	UnitAssigned:             {RoleCoordinator},
	UnitDriverConfirmed:      {RoleDriver},
	UnitTransitToOrigin:      {RoleDriver},
	UnitArrivedOrigin:        {RoleGate},
	UnitWaitingBay:           {RoleGate},
	UnitCalledToLoad:         {RoleSupervisor},
	UnitPositionedForLoad:    {RoleSupervisor},
	UnitLoadComplete:         {RoleSupervisor},
	UnitDepartingOrigin:      {RoleGate},
	UnitTransitToDestination: {RoleDriver},
	UnitArrivedDestination:   {RoleDriver},
	UnitCalledToUnload:       {RoleSupervisor},
	UnitUnloading:            {RoleSupervisor},
	UnitUnloaded:             {RoleSupervisor},
	UnitDepartingDestination: {RoleDriver},
	UnitCompleted:            {RoleCoordinator},
	UnitIncident:             {RoleDriver, RoleGate, RoleSupervisor, RoleCoordinator},
	UnitCancelled:            {RoleAutomatic},
}

var cargoAuthorization = map[CargoState][]Role{
	CargoPending:         {RoleAutomatic},
	CargoPlanned:         {RoleCoordinator},
	CargoDocsPrepared:    {RoleCoordinator},
	CargoLoading:         {RoleSupervisor},
	CargoLoaded:          {RoleSupervisor},
	CargoShortage:        {RoleSupervisor},
	CargoDocsValidated:   {RoleGate},
	CargoInTransit:       {RoleDriver},
	CargoUnloading:       {RoleSupervisor},
	CargoUnloaded:        {RoleSupervisor},
	CargoRejection:       {RoleSupervisor},
	CargoClosingDocs:     {RoleCoordinator},
	CargoCompleted:       {RoleCoordinator},
	CargoCancelledNoLoad: {RoleAutomatic},
}

// UnitRolesFor returns the roles allowed to request entry into target.
func UnitRolesFor(target UnitState) []Role {
	return unitAuthorization[target]
}

// CargoRolesFor returns the roles allowed to request entry into target.
func CargoRolesFor(target CargoState) []Role {
	return cargoAuthorization[target]
}

func roleAllowed(allowed []Role, role Role) bool {
	for _, r := range allowed {
		if r == RoleAutomatic {
			return false
		}
		if r == role {
			return true
		}
	}
	return false
}
