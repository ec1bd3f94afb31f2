package sim

// Scheduler is the group-dispatch policy. The engine routes every drained
// request or state-change event to exactly one of the callbacks below (a
// Shutdown event is handled by the engine itself) and invokes Tick once per
// simulation tick, after the state-machine driver has advanced the cars.
// All callbacks run on the engine goroutine.
type Scheduler interface {
	HandleHallCall(floor int, dir Direction)
	HandleCarCall(carID, floor int)

	OnElevatorArrived(carID, floor int)
	OnDoorsOpened(carID, floor int)
	OnDoorsClosed(carID int)

	Tick()

	Name() string
}

// NewScheduler builds the controller selected by kind. The choice is fixed
// for the lifetime of the engine.
func NewScheduler(kind ControllerKind, building *Building) Scheduler {
	switch kind {
	case ControllerDistributed:
		return NewDistributedController(building)
	default:
		return NewMasterController(building)
	}
}
