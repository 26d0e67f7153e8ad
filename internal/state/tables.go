package state

// The two transition tables below are the single source of truth for which
// state changes are legal. Terminal states map to an empty set. The escape
// edges into UnitIncident/UnitCancelled and CargoCancelledNoLoad exist from
// every non-terminal state; they are appended in init so the literal tables
// only carry the ordinary flow.

var unitTransitions = map[UnitState]map[UnitState]struct{}{
	UnitPending:              {UnitAssigned: {}},
	UnitAssigned:             {UnitDriverConfirmed: {}},
	UnitDriverConfirmed:      {UnitTransitToOrigin: {}},
	UnitTransitToOrigin:      {UnitArrivedOrigin: {}},
	UnitArrivedOrigin:        {UnitWaitingBay: {}, UnitCalledToLoad: {}},
	UnitWaitingBay:           {UnitCalledToLoad: {}},
	UnitCalledToLoad:         {UnitPositionedForLoad: {}},
	UnitPositionedForLoad:    {UnitLoadComplete: {}},
	UnitLoadComplete:         {UnitDepartingOrigin: {}},
	UnitDepartingOrigin:      {UnitTransitToDestination: {}},
	UnitTransitToDestination: {UnitArrivedDestination: {}},
	UnitArrivedDestination:   {UnitCalledToUnload: {}},
	UnitCalledToUnload:       {UnitUnloading: {}},
	UnitUnloading:            {UnitUnloaded: {}},
	UnitUnloaded:             {UnitDepartingDestination: {}},
	UnitDepartingDestination: {UnitCompleted: {}},
	UnitCompleted:            {},
	// A resolved incident is re-dispatched by a coordinator; this is the one
	// sanctioned cycle in the unit graph.
	UnitIncident:  {UnitAssigned: {}},
	UnitCancelled: {},
}

var cargoTransitions = map[CargoState]map[CargoState]struct{}{
	CargoPending:       {CargoPlanned: {}},
	CargoPlanned:       {CargoDocsPrepared: {}},
	CargoDocsPrepared:  {CargoLoading: {}},
	CargoLoading:       {CargoLoaded: {}, CargoShortage: {}},
	CargoLoaded:        {CargoDocsValidated: {}},
	CargoShortage:      {CargoDocsValidated: {}},
	CargoDocsValidated: {CargoInTransit: {}},
	CargoInTransit:     {CargoUnloading: {}},
	CargoUnloading:     {CargoUnloaded: {}, CargoRejection: {}},
	CargoUnloaded:      {CargoClosingDocs: {}},
	CargoRejection:     {CargoClosingDocs: {}},
	CargoClosingDocs:   {CargoCompleted: {}},
	CargoCompleted:     {},

	CargoCancelledNoLoad: {},
}

func init() {
	for from, succ := range unitTransitions {
		if from == UnitCompleted || from == UnitCancelled {
			continue
		}
		if from != UnitIncident {
			succ[UnitIncident] = struct{}{}
		}
		succ[UnitCancelled] = struct{}{}
	}
	for from, succ := range cargoTransitions {
		if from == CargoCompleted || from == CargoCancelledNoLoad {
			continue
		}
		succ[CargoCancelledNoLoad] = struct{}{}
	}
}

// UnitSuccessors returns the set of states reachable from cur in one step.
// The second return is false when cur is not a known state.
func UnitSuccessors(cur UnitState) (map[UnitState]struct{}, bool) {
	succ, ok := unitTransitions[cur]
	return succ, ok
}

// CargoSuccessors returns the set of states reachable from cur in one step.
func CargoSuccessors(cur CargoState) (map[CargoState]struct{}, bool) {
	succ, ok := cargoTransitions[cur]
	return succ, ok
}

// IsTerminalUnit reports whether s has no outgoing edges.
func IsTerminalUnit(s UnitState) bool {
	return len(unitTransitions[s]) == 0
}

// IsTerminalCargo reports whether s has no outgoing edges.
func IsTerminalCargo(s CargoState) bool {
	return len(cargoTransitions[s]) == 0
}

// IsInTransit reports whether the GPS side channel must be active for a trip
// whose unit machine is in s.
func IsInTransit(s UnitState) bool {
	return s == UnitTransitToOrigin || s == UnitTransitToDestination
}

var inMotionStates = map[UnitState]struct{}{
	UnitDriverConfirmed:      {},
	UnitTransitToOrigin:      {},
	UnitArrivedOrigin:        {},
	UnitWaitingBay:           {},
	UnitCalledToLoad:         {},
	UnitPositionedForLoad:    {},
	UnitLoadComplete:         {},
	UnitDepartingOrigin:      {},
	UnitTransitToDestination: {},
	UnitArrivedDestination:   {},
}

// IsInMotion reports whether s counts as an active, on-the-road state for
// dispatch triage (driver confirmation through arrival at the destination).
func IsInMotion(s UnitState) bool {
	_, ok := inMotionStates[s]
	return ok
}
