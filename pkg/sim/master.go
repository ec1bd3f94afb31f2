package sim

import (
	"log/slog"
	"sync"
)

// MasterController is the centralized policy: every hall call is assigned
// to exactly one car by a global cost comparison, and the assignment table
// is the single authority on who serves what.
type MasterController struct {
	building *Building
	logger   *slog.Logger

	mu          sync.Mutex
	assignments map[HallCallKey]int
}

func NewMasterController(building *Building) *MasterController {
	return &MasterController{
		building:    building,
		logger:      slog.Default().With("controller", "master"),
		assignments: make(map[HallCallKey]int),
	}
}

func (m *MasterController) Name() string { return "master" }

// HandleHallCall assigns the call to the cheapest car and dispatches it.
// A call that is already assigned is ignored, which makes repeated button
// presses idempotent.
func (m *MasterController) HandleHallCall(floor int, dir Direction) {
	key := HallCallKey{Floor: floor, Dir: dir}

	m.mu.Lock()
	if _, assigned := m.assignments[key]; assigned {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	m.building.RegisterHallCall(floor, dir)

	best := m.selectElevator(floor, dir)

	m.mu.Lock()
	m.assignments[key] = best
	m.mu.Unlock()

	m.logger.Debug("hall call assigned", "floor", floor, "dir", dir, "car", best)
	m.dispatchElevator(best)
}

// HandleCarCall records the destination and dispatches the car if it is
// currently idle.
func (m *MasterController) HandleCarCall(carID, floor int) {
	if !m.building.IsValidCar(carID) || !m.building.IsValidFloor(floor) {
		return
	}
	m.building.Car(carID).AddCarCall(floor)
	m.dispatchElevator(carID)
}

// OnElevatorArrived clears the car call for the floor and, when this car
// held the assignment for the floor in its travel direction, releases the
// assignment and the landing button. Buttons for the opposite direction are
// left pressed.
func (m *MasterController) OnElevatorArrived(carID, floor int) {
	car := m.building.Car(carID)
	dir := car.Direction()

	key := HallCallKey{Floor: floor, Dir: dir}
	m.mu.Lock()
	id, ok := m.assignments[key]
	served := ok && id == carID
	if served {
		delete(m.assignments, key)
	}
	m.mu.Unlock()

	if served {
		m.building.ClearHallCall(floor, dir)
	}
	car.RemoveCarCall(floor)
}

// OnDoorsOpened is where passenger exchange would hook in; the group
// controller itself has nothing to decide while the doors are open.
func (m *MasterController) OnDoorsOpened(carID, floor int) {}

func (m *MasterController) OnDoorsClosed(carID int) {
	m.dispatchElevator(carID)
}

// Tick re-dispatches any idle car so pending work is never stranded.
func (m *MasterController) Tick() {
	for id := 0; id < m.building.NumElevators(); id++ {
		if m.building.Car(id).State() == StateIdle {
			m.dispatchElevator(id)
		}
	}
}

// selectElevator returns the car with the lowest cost for floor/dir, ties
// broken by lowest id.
func (m *MasterController) selectElevator(floor int, dir Direction) int {
	best, bestCost := 0, -1
	for id := 0; id < m.building.NumElevators(); id++ {
		cost := m.building.Car(id).CostToServe(floor, dir, m.building.NumFloors())
		if bestCost < 0 || cost < bestCost {
			best, bestCost = id, cost
		}
	}
	return best
}

// dispatchElevator chooses the car's next destination among its car calls
// and assigned hall calls, then starts motion or opens the doors. Non-idle
// cars are left alone; they will come back through OnDoorsClosed.
func (m *MasterController) dispatchElevator(carID int) {
	car := m.building.Car(carID)
	if car.State() != StateIdle {
		return
	}

	destinations := make(map[int]bool)
	for _, f := range car.CarCalls() {
		destinations[f] = true
	}
	m.mu.Lock()
	for key, id := range m.assignments {
		if id == carID {
			destinations[key.Floor] = true
		}
	}
	m.mu.Unlock()

	if len(destinations) == 0 {
		return
	}

	current := car.CurrentFloor()
	target := nearestFloor(destinations, current)

	cfg := m.building.Config()
	if target == current {
		m.serveCurrentFloor(car, target)
		car.OpenDoors(cfg.DoorOpenTicks)
		return
	}

	dir := DirUp
	if target < current {
		dir = DirDown
	}
	car.StartMoving(dir, cfg.FloorTravelTicks)
}

// serveCurrentFloor releases all bookkeeping satisfied by opening the doors
// right here: the car call and any assignment this car holds for the floor.
// Without this the at-floor path would never emit an arrival and the call
// would stay latched.
func (m *MasterController) serveCurrentFloor(car *Elevator, floor int) {
	car.RemoveCarCall(floor)

	var servedDirs []Direction
	m.mu.Lock()
	for _, dir := range []Direction{DirUp, DirDown} {
		key := HallCallKey{Floor: floor, Dir: dir}
		if id, ok := m.assignments[key]; ok && id == car.ID() {
			delete(m.assignments, key)
			servedDirs = append(servedDirs, dir)
		}
	}
	m.mu.Unlock()

	for _, dir := range servedDirs {
		m.building.ClearHallCall(floor, dir)
	}
}

// Assignments returns a copy of the assignment table for inspection.
func (m *MasterController) Assignments() map[HallCallKey]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[HallCallKey]int, len(m.assignments))
	for k, v := range m.assignments {
		out[k] = v
	}
	return out
}

// nearestFloor picks the destination closest to current; on equal distance
// the lower floor wins.
func nearestFloor(destinations map[int]bool, current int) int {
	target, bestDist := 0, -1
	for f := range destinations {
		d := absInt(f - current)
		if bestDist < 0 || d < bestDist || (d == bestDist && f < target) {
			target, bestDist = f, d
		}
	}
	return target
}
