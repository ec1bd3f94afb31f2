package sim

import (
	"sort"
	"sync"
)

// Elevator is one car of the fleet. Every field behind the mutex is mutated
// only through the methods below; the state-machine driver is the sole
// writer of CurrentFloor.
type Elevator struct {
	mu sync.RWMutex

	id             int
	currentFloor   int
	direction      Direction
	state          CarState
	carCalls       map[int]bool
	passengerCount int
	capacity       int
	ticksRemaining int
}

// NewElevator creates a car at startFloor in the Idle state.
func NewElevator(id, capacity, startFloor int) *Elevator {
	return &Elevator{
		id:           id,
		currentFloor: startFloor,
		direction:    DirIdle,
		state:        StateIdle,
		carCalls:     make(map[int]bool),
		capacity:     capacity,
	}
}

func (e *Elevator) ID() int { return e.id }

// Capacity is immutable after construction.
func (e *Elevator) Capacity() int { return e.capacity }

func (e *Elevator) CurrentFloor() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.currentFloor
}

func (e *Elevator) Direction() Direction {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.direction
}

func (e *Elevator) State() CarState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Elevator) PassengerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.passengerCount
}

func (e *Elevator) TicksRemaining() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ticksRemaining
}

// CarCalls returns the pending destination floors in ascending order.
func (e *Elevator) CarCalls() []int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	floors := make([]int, 0, len(e.carCalls))
	for f := range e.carCalls {
		floors = append(floors, f)
	}
	sort.Ints(floors)
	return floors
}

// AddCarCall registers a destination. Idempotent: pressing the same button
// twice leaves one entry.
func (e *Elevator) AddCarCall(floor int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.carCalls[floor] = true
}

func (e *Elevator) RemoveCarCall(floor int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.carCalls, floor)
}

func (e *Elevator) HasCarCallAt(floor int) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.carCalls[floor]
}

func (e *Elevator) HasAnyCarCalls() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.carCalls) > 0
}

// StartMoving begins a single-floor transit in dir.
func (e *Elevator) StartMoving(dir Direction, ticksToArrive int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.direction = dir
	e.state = StateMoving
	e.ticksRemaining = ticksToArrive
}

// DecrementTick advances the active timer by one tick. The timer never goes
// negative.
func (e *Elevator) DecrementTick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ticksRemaining > 0 {
		e.ticksRemaining--
	}
}

// ArriveAtFloor lands the car on floor and begins opening the doors. The
// travel direction is kept so the scheduler can clear the matching landing
// button.
func (e *Elevator) ArriveAtFloor(floor, ticksToOpen int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.currentFloor = floor
	e.state = StateDoorsOpening
	e.ticksRemaining = ticksToOpen
}

// OpenDoors starts the door-opening phase at the current floor.
func (e *Elevator) OpenDoors(ticksToOpen int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateDoorsOpening
	e.ticksRemaining = ticksToOpen
}

// SetDoorsOpen holds the doors open for ticksOpen ticks.
func (e *Elevator) SetDoorsOpen(ticksOpen int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateDoorsOpen
	e.ticksRemaining = ticksOpen
}

// CloseDoors starts the door-closing phase.
func (e *Elevator) CloseDoors(ticksToClose int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateDoorsClosing
	e.ticksRemaining = ticksToClose
}

// SetIdle parks the car: Idle state, Idle direction, timer cleared.
func (e *Elevator) SetIdle() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateIdle
	e.direction = DirIdle
	e.ticksRemaining = 0
}

func (e *Elevator) HasCallsAbove() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for f := range e.carCalls {
		if f > e.currentFloor {
			return true
		}
	}
	return false
}

func (e *Elevator) HasCallsBelow() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for f := range e.carCalls {
		if f < e.currentFloor {
			return true
		}
	}
	return false
}

// NextCarCallInDirection returns the closest car call ahead of the car in
// its travel direction, falling back to the closest call overall. The
// second result is false when no car calls are pending.
func (e *Elevator) NextCarCallInDirection() (int, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.carCalls) == 0 {
		return 0, false
	}

	best, bestDist := 0, -1
	switch e.direction {
	case DirUp:
		for f := range e.carCalls {
			if f > e.currentFloor && (bestDist < 0 || f-e.currentFloor < bestDist) {
				best, bestDist = f, f-e.currentFloor
			}
		}
	case DirDown:
		for f := range e.carCalls {
			if f < e.currentFloor && (bestDist < 0 || e.currentFloor-f < bestDist) {
				best, bestDist = f, e.currentFloor-f
			}
		}
	}
	if bestDist >= 0 {
		return best, true
	}

	// No calls in the travel direction: closest one wins.
	for f := range e.carCalls {
		d := absInt(f - e.currentFloor)
		if bestDist < 0 || d < bestDist {
			best, bestDist = f, d
		}
	}
	return best, true
}

// CostToServe scores this car for a hall call at floor/dir. An idle car
// costs its distance; a busy car on the way in the same direction costs the
// same; anything else pays a 2*numFloors reversal penalty on top.
func (e *Elevator) CostToServe(floor int, dir Direction, numFloors int) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	distance := absInt(e.currentFloor - floor)

	if e.state == StateIdle {
		return distance
	}

	sameDirection := e.direction == dir
	onTheWay := (e.direction == DirUp && floor > e.currentFloor) ||
		(e.direction == DirDown && floor < e.currentFloor)

	if sameDirection && onTheWay {
		return distance
	}
	return distance + 2*numFloors
}

// CanBoard reports whether the car has room for another passenger.
func (e *Elevator) CanBoard() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.passengerCount < e.capacity
}

// BoardPassenger admits one passenger, bounded by capacity.
func (e *Elevator) BoardPassenger() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.passengerCount < e.capacity {
		e.passengerCount++
	}
}

// AlightPassenger releases one passenger, never below zero.
func (e *Elevator) AlightPassenger() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.passengerCount > 0 {
		e.passengerCount--
	}
}

// Snapshot captures the car state in one lock acquisition.
func (e *Elevator) Snapshot() CarSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	calls := make([]int, 0, len(e.carCalls))
	for f := range e.carCalls {
		calls = append(calls, f)
	}
	sort.Ints(calls)
	return CarSnapshot{
		ID:             e.id,
		Floor:          e.currentFloor,
		State:          e.state,
		Direction:      e.direction,
		PassengerCount: e.passengerCount,
		CarCalls:       calls,
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
