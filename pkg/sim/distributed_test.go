package sim

import (
	"testing"
)

func TestDistributed_PostUnclaimed(t *testing.T) {
	b := NewBuilding(testConfig(10, 2))
	d := NewDistributedController(b)

	d.HandleHallCall(5, DirUp)

	if !b.HasHallCall(5, DirUp) {
		t.Error("Landing button should be latched")
	}
	if got, ok := d.ClaimBoard()[HallCallKey{Floor: 5, Dir: DirUp}]; !ok || got != Unclaimed {
		t.Errorf("Expected unclaimed posting, got %d (%v)", got, ok)
	}
}

func TestDistributed_LowestIDClaimsFirst(t *testing.T) {
	// Scenario: both cars idle at floor 1, one posting. The tick sweep runs
	// in id order, so car 0 claims; a later posting goes to car 1 because
	// car 0 is already committed to its claim.
	b := NewBuilding(testConfig(10, 2))
	d := NewDistributedController(b)

	d.HandleHallCall(5, DirUp)
	d.Tick()

	if got := d.ClaimBoard()[HallCallKey{Floor: 5, Dir: DirUp}]; got != 0 {
		t.Errorf("Expected car 0 to claim, got %d", got)
	}
	if b.Car(0).State() != StateMoving {
		t.Errorf("Claiming car should be dispatched, got %s", b.Car(0).State())
	}

	d.HandleHallCall(6, DirUp)
	d.Tick()

	if got := d.ClaimBoard()[HallCallKey{Floor: 6, Dir: DirUp}]; got != 1 {
		t.Errorf("Expected car 1 to claim the second posting, got %d", got)
	}
}

func TestDistributed_ClaimTieBreaks(t *testing.T) {
	// Equal distance: lower floor wins, then Up before Down.
	b := NewBuilding(testConfig(10, 1))
	d := NewDistributedController(b)

	car := b.Car(0)
	car.ArriveAtFloor(4, 1)
	car.SetIdle()

	d.HandleHallCall(6, DirDown)
	d.HandleHallCall(2, DirUp)
	d.tryClaimCalls(0)

	board := d.ClaimBoard()
	if board[HallCallKey{Floor: 2, Dir: DirUp}] != 0 {
		t.Error("Expected the lower floor to win the distance tie")
	}
	if board[HallCallKey{Floor: 6, Dir: DirDown}] != Unclaimed {
		t.Error("Only one claim per sweep per car")
	}

	// Same floor, both directions posted: Up is claimed first.
	b2 := NewBuilding(testConfig(10, 1))
	d2 := NewDistributedController(b2)
	d2.HandleHallCall(3, DirDown)
	d2.HandleHallCall(3, DirUp)
	d2.tryClaimCalls(0)

	board2 := d2.ClaimBoard()
	if board2[HallCallKey{Floor: 3, Dir: DirUp}] != 0 {
		t.Error("Expected Up to win the same-floor tie")
	}
	if board2[HallCallKey{Floor: 3, Dir: DirDown}] != Unclaimed {
		t.Error("Down posting should stay unclaimed")
	}
}

func TestDistributed_CommittedCarDoesNotClaim(t *testing.T) {
	b := NewBuilding(testConfig(10, 1))
	d := NewDistributedController(b)

	car := b.Car(0)
	car.AddCarCall(8)
	car.StartMoving(DirUp, 2)

	d.HandleHallCall(3, DirUp)
	d.Tick()

	if got := d.ClaimBoard()[HallCallKey{Floor: 3, Dir: DirUp}]; got != Unclaimed {
		t.Errorf("Busy car with in-car work must not claim, got %d", got)
	}
}

func TestDistributed_RepostDoesNotStealClaim(t *testing.T) {
	b := NewBuilding(testConfig(10, 2))
	d := NewDistributedController(b)

	d.HandleHallCall(5, DirUp)
	d.Tick()
	d.HandleHallCall(5, DirUp) // repeated button press

	if got := d.ClaimBoard()[HallCallKey{Floor: 5, Dir: DirUp}]; got != 0 {
		t.Errorf("Repost must not reset the owner, got %d", got)
	}
}

func TestDistributed_ArrivalReleasesClaim(t *testing.T) {
	b := NewBuilding(testConfig(10, 1))
	d := NewDistributedController(b)

	d.HandleHallCall(5, DirUp)
	d.Tick()

	car := b.Car(0)
	car.ArriveAtFloor(5, 1)
	d.OnElevatorArrived(0, 5)

	if _, ok := d.ClaimBoard()[HallCallKey{Floor: 5, Dir: DirUp}]; ok {
		t.Error("Claim entry should be removed entirely on arrival")
	}
	if b.HasHallCall(5, DirUp) {
		t.Error("Landing button should be cleared on arrival")
	}
}

func TestDistributed_ServeAtCurrentFloor(t *testing.T) {
	b := NewBuilding(testConfig(10, 1))
	d := NewDistributedController(b)

	d.HandleHallCall(1, DirUp)
	d.Tick()

	car := b.Car(0)
	if car.State() != StateDoorsOpening {
		t.Fatalf("Expected doors opening at current floor, got %s", car.State())
	}
	if len(d.ClaimBoard()) != 0 {
		t.Error("At-floor service should drop the claim entry")
	}
	if b.HasHallCall(1, DirUp) {
		t.Error("At-floor service should clear the landing button")
	}
}

func TestDistributed_CarCallDispatch(t *testing.T) {
	b := NewBuilding(testConfig(10, 1))
	d := NewDistributedController(b)

	d.HandleCarCall(0, 7)

	car := b.Car(0)
	if !car.HasCarCallAt(7) {
		t.Error("Car call not registered")
	}
	if car.State() != StateMoving || car.Direction() != DirUp {
		t.Errorf("Idle car should be dispatched, got %s %s", car.State(), car.Direction())
	}
}
