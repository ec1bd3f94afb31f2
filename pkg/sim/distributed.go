package sim

import (
	"log/slog"
	"sort"
	"sync"
)

// DistributedController is the decentralized policy: hall calls land on a
// shared claim board unowned, and each car claims work for itself during
// the tick sweep. There is no negotiation; a claim stands until the car
// serves the landing.
type DistributedController struct {
	building *Building
	logger   *slog.Logger

	mu         sync.Mutex
	claimBoard map[HallCallKey]int
}

func NewDistributedController(building *Building) *DistributedController {
	return &DistributedController{
		building:   building,
		logger:     slog.Default().With("controller", "distributed"),
		claimBoard: make(map[HallCallKey]int),
	}
}

func (d *DistributedController) Name() string { return "distributed" }

// HandleHallCall posts the call on the claim board as unclaimed. Reposting
// an already-tracked call changes nothing.
func (d *DistributedController) HandleHallCall(floor int, dir Direction) {
	d.building.RegisterHallCall(floor, dir)

	key := HallCallKey{Floor: floor, Dir: dir}
	d.mu.Lock()
	if _, ok := d.claimBoard[key]; !ok {
		d.claimBoard[key] = Unclaimed
	}
	d.mu.Unlock()
}

func (d *DistributedController) HandleCarCall(carID, floor int) {
	if !d.building.IsValidCar(carID) || !d.building.IsValidFloor(floor) {
		return
	}
	d.building.Car(carID).AddCarCall(floor)
	d.decideNextAction(carID)
}

// OnElevatorArrived drops the claim entry entirely when this car held the
// claim for the floor in its travel direction, and clears the landing
// button. The car call for the floor is removed either way.
func (d *DistributedController) OnElevatorArrived(carID, floor int) {
	car := d.building.Car(carID)
	dir := car.Direction()

	key := HallCallKey{Floor: floor, Dir: dir}
	d.mu.Lock()
	id, ok := d.claimBoard[key]
	served := ok && id == carID
	if served {
		delete(d.claimBoard, key)
	}
	d.mu.Unlock()

	if served {
		d.building.ClearHallCall(floor, dir)
	}
	car.RemoveCarCall(floor)
}

func (d *DistributedController) OnDoorsOpened(carID, floor int) {}

func (d *DistributedController) OnDoorsClosed(carID int) {
	d.decideNextAction(carID)
}

// Tick runs the claim sweep in ascending car id order, then re-dispatches
// idle cars. Lower ids claim first each tick; the board lock means a given
// entry is taken at most once per sweep.
func (d *DistributedController) Tick() {
	for id := 0; id < d.building.NumElevators(); id++ {
		d.tryClaimCalls(id)
		if d.building.Car(id).State() == StateIdle {
			d.decideNextAction(id)
		}
	}
}

// tryClaimCalls lets one car take the nearest unclaimed posting. A busy car
// that already has work of its own, in-car calls or a standing claim, does
// not grab new landings.
func (d *DistributedController) tryClaimCalls(carID int) {
	car := d.building.Car(carID)
	busy := car.State() != StateIdle
	if busy && car.HasAnyCarCalls() {
		return
	}
	current := car.CurrentFloor()

	d.mu.Lock()
	defer d.mu.Unlock()

	if busy {
		for _, claimer := range d.claimBoard {
			if claimer == carID {
				return
			}
		}
	}

	var best HallCallKey
	bestDist := -1
	for key, claimer := range d.claimBoard {
		if claimer != Unclaimed {
			continue
		}
		dist := absInt(key.Floor - current)
		if bestDist < 0 || dist < bestDist || (dist == bestDist && claimLess(key, best)) {
			best, bestDist = key, dist
		}
	}

	if bestDist >= 0 {
		d.claimBoard[best] = carID
		d.logger.Debug("claimed", "car", carID, "floor", best.Floor, "dir", best.Dir)
	}
}

// claimLess orders tie-broken claims: lower floor first, Up before Down.
func claimLess(a, b HallCallKey) bool {
	if a.Floor != b.Floor {
		return a.Floor < b.Floor
	}
	return a.Dir == DirUp && b.Dir == DirDown
}

// decideNextAction mirrors the master dispatch, except the destination set
// is the car's own calls plus the claims it holds.
func (d *DistributedController) decideNextAction(carID int) {
	car := d.building.Car(carID)
	if car.State() != StateIdle {
		return
	}

	destinations := make(map[int]bool)
	for _, f := range car.CarCalls() {
		destinations[f] = true
	}
	for _, key := range d.claimsFor(carID) {
		destinations[key.Floor] = true
	}

	if len(destinations) == 0 {
		return
	}

	current := car.CurrentFloor()
	target := nearestFloor(destinations, current)

	cfg := d.building.Config()
	if target == current {
		d.serveCurrentFloor(car, target)
		car.OpenDoors(cfg.DoorOpenTicks)
		return
	}

	dir := DirUp
	if target < current {
		dir = DirDown
	}
	car.StartMoving(dir, cfg.FloorTravelTicks)
}

// serveCurrentFloor releases the car call and any claim this car holds for
// the floor before the doors open, since the at-floor path produces no
// arrival event.
func (d *DistributedController) serveCurrentFloor(car *Elevator, floor int) {
	car.RemoveCarCall(floor)

	var servedDirs []Direction
	d.mu.Lock()
	for _, dir := range []Direction{DirUp, DirDown} {
		key := HallCallKey{Floor: floor, Dir: dir}
		if id, ok := d.claimBoard[key]; ok && id == car.ID() {
			delete(d.claimBoard, key)
			servedDirs = append(servedDirs, dir)
		}
	}
	d.mu.Unlock()

	for _, dir := range servedDirs {
		d.building.ClearHallCall(floor, dir)
	}
}

// claimsFor returns the board entries held by one car, sorted for
// deterministic dispatch.
func (d *DistributedController) claimsFor(carID int) []HallCallKey {
	d.mu.Lock()
	defer d.mu.Unlock()
	var claims []HallCallKey
	for key, claimer := range d.claimBoard {
		if claimer == carID {
			claims = append(claims, key)
		}
	}
	sort.Slice(claims, func(i, j int) bool { return claimLess(claims[i], claims[j]) })
	return claims
}

// ClaimBoard returns a copy of the claim board for inspection.
func (d *DistributedController) ClaimBoard() map[HallCallKey]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[HallCallKey]int, len(d.claimBoard))
	for k, v := range d.claimBoard {
		out[k] = v
	}
	return out
}
