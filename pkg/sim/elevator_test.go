package sim

import (
	"reflect"
	"testing"
)

func TestElevator_InitialState(t *testing.T) {
	e := NewElevator(0, 6, 1)

	if e.ID() != 0 {
		t.Errorf("Expected id 0, got %d", e.ID())
	}
	if e.CurrentFloor() != 1 {
		t.Errorf("Expected floor 1, got %d", e.CurrentFloor())
	}
	if e.Direction() != DirIdle {
		t.Errorf("Expected direction Idle, got %s", e.Direction())
	}
	if e.State() != StateIdle {
		t.Errorf("Expected state Idle, got %s", e.State())
	}
	if e.PassengerCount() != 0 {
		t.Errorf("Expected 0 passengers, got %d", e.PassengerCount())
	}
	if e.Capacity() != 6 {
		t.Errorf("Expected capacity 6, got %d", e.Capacity())
	}
}

func TestElevator_CarCalls(t *testing.T) {
	e := NewElevator(0, 6, 1)

	if e.HasAnyCarCalls() {
		t.Error("New car should have no car calls")
	}

	e.AddCarCall(5)
	e.AddCarCall(3)
	e.AddCarCall(8)
	e.AddCarCall(5) // duplicate press

	if !e.HasCarCallAt(5) || e.HasCarCallAt(4) {
		t.Error("Car call membership wrong")
	}
	if got := e.CarCalls(); !reflect.DeepEqual(got, []int{3, 5, 8}) {
		t.Errorf("Expected sorted unique calls [3 5 8], got %v", got)
	}

	e.RemoveCarCall(5)
	if e.HasCarCallAt(5) {
		t.Error("Removed call still present")
	}
}

func TestElevator_StateTransitions(t *testing.T) {
	e := NewElevator(0, 6, 1)

	e.StartMoving(DirUp, 2)
	if e.State() != StateMoving || e.Direction() != DirUp || e.TicksRemaining() != 2 {
		t.Fatalf("StartMoving wrong: %s %s %d", e.State(), e.Direction(), e.TicksRemaining())
	}

	e.DecrementTick()
	e.DecrementTick()
	if e.TicksRemaining() != 0 {
		t.Fatalf("Expected timer drained, got %d", e.TicksRemaining())
	}
	e.DecrementTick() // never goes negative
	if e.TicksRemaining() != 0 {
		t.Errorf("Timer went negative")
	}

	e.ArriveAtFloor(2, 3)
	if e.CurrentFloor() != 2 || e.State() != StateDoorsOpening || e.TicksRemaining() != 3 {
		t.Fatalf("ArriveAtFloor wrong: floor %d state %s ticks %d",
			e.CurrentFloor(), e.State(), e.TicksRemaining())
	}
	// Travel direction survives the arrival for the scheduler's button clear.
	if e.Direction() != DirUp {
		t.Errorf("Expected direction preserved on arrival, got %s", e.Direction())
	}

	e.SetDoorsOpen(3)
	if e.State() != StateDoorsOpen {
		t.Errorf("Expected DoorsOpen, got %s", e.State())
	}

	e.CloseDoors(1)
	if e.State() != StateDoorsClosing || e.TicksRemaining() != 1 {
		t.Errorf("Expected DoorsClosing with 1 tick, got %s %d", e.State(), e.TicksRemaining())
	}

	e.SetIdle()
	if e.State() != StateIdle || e.Direction() != DirIdle || e.TicksRemaining() != 0 {
		t.Errorf("SetIdle invariant broken: %s %s %d", e.State(), e.Direction(), e.TicksRemaining())
	}
}

func TestElevator_DirectionQueries(t *testing.T) {
	e := NewElevator(0, 6, 5)
	e.AddCarCall(8)
	e.AddCarCall(3)

	if !e.HasCallsAbove() || !e.HasCallsBelow() {
		t.Error("Expected calls above and below floor 5")
	}

	e.StartMoving(DirUp, 1)
	if next, ok := e.NextCarCallInDirection(); !ok || next != 8 {
		t.Errorf("Expected next call 8 going up, got %d (%v)", next, ok)
	}

	e.StartMoving(DirDown, 1)
	if next, ok := e.NextCarCallInDirection(); !ok || next != 3 {
		t.Errorf("Expected next call 3 going down, got %d (%v)", next, ok)
	}

	// No calls ahead: fall back to the closest overall.
	e2 := NewElevator(1, 6, 9)
	e2.AddCarCall(2)
	e2.StartMoving(DirUp, 1)
	if next, ok := e2.NextCarCallInDirection(); !ok || next != 2 {
		t.Errorf("Expected fallback to 2, got %d (%v)", next, ok)
	}

	e3 := NewElevator(2, 6, 1)
	if _, ok := e3.NextCarCallInDirection(); ok {
		t.Error("Expected no next call for empty set")
	}
}

func TestElevator_Passengers(t *testing.T) {
	e := NewElevator(0, 3, 1)

	if !e.CanBoard() {
		t.Error("Empty car should accept passengers")
	}

	e.BoardPassenger()
	e.BoardPassenger()
	e.BoardPassenger()
	e.BoardPassenger() // over capacity, ignored

	if e.PassengerCount() != 3 {
		t.Errorf("Expected 3 passengers, got %d", e.PassengerCount())
	}
	if e.CanBoard() {
		t.Error("Full car should refuse boarding")
	}

	e.AlightPassenger()
	if e.PassengerCount() != 2 || !e.CanBoard() {
		t.Errorf("Expected 2 passengers and room, got %d", e.PassengerCount())
	}

	empty := NewElevator(1, 3, 1)
	empty.AlightPassenger() // never below zero
	if empty.PassengerCount() != 0 {
		t.Errorf("Passenger count went negative")
	}
}

func TestElevator_CostToServe(t *testing.T) {
	const numFloors = 10

	// Idle car: plain distance.
	idle := NewElevator(0, 6, 6)
	if cost := idle.CostToServe(5, DirUp, numFloors); cost != 1 {
		t.Errorf("Idle cost: expected 1, got %d", cost)
	}

	// Moving up, call above in the same direction: on the way, plain distance.
	up := NewElevator(1, 6, 2)
	up.StartMoving(DirUp, 2)
	if cost := up.CostToServe(5, DirUp, numFloors); cost != 3 {
		t.Errorf("On-the-way cost: expected 3, got %d", cost)
	}

	// Moving down instead: reversal penalty of 2*numFloors.
	down := NewElevator(2, 6, 2)
	down.StartMoving(DirDown, 2)
	if cost := down.CostToServe(5, DirUp, numFloors); cost != 3+2*numFloors {
		t.Errorf("Reversal cost: expected %d, got %d", 3+2*numFloors, cost)
	}

	// Same direction but already passed the floor: still penalized.
	passed := NewElevator(3, 6, 7)
	passed.StartMoving(DirUp, 2)
	if cost := passed.CostToServe(5, DirUp, numFloors); cost != 2+2*numFloors {
		t.Errorf("Passed-floor cost: expected %d, got %d", 2+2*numFloors, cost)
	}
}

func TestElevator_Snapshot(t *testing.T) {
	e := NewElevator(0, 6, 4)
	e.AddCarCall(9)
	e.AddCarCall(2)
	e.BoardPassenger()

	snap := e.Snapshot()
	want := CarSnapshot{
		ID:             0,
		Floor:          4,
		State:          StateIdle,
		Direction:      DirIdle,
		PassengerCount: 1,
		CarCalls:       []int{2, 9},
	}
	if !reflect.DeepEqual(snap, want) {
		t.Errorf("Snapshot mismatch: got %+v, want %+v", snap, want)
	}
}
