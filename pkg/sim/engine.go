package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Ingress rejection kinds. All user-visible errors are produced at the
// request boundary; nothing past it returns errors to callers.
var (
	ErrInvalidFloor     = errors.New("floor out of range")
	ErrInvalidElevator  = errors.New("elevator id out of range")
	ErrInvalidDirection = errors.New("invalid hall call direction")
	ErrCarFull          = errors.New("car at capacity")
)

// Engine runs the closed dispatch loop: producers enqueue requests, the
// single consumer goroutine advances every car's state machine once per
// tick, lets the scheduler act, and drains the event queue back into the
// scheduler. All scheduler and state-machine mutation happens on the
// consumer goroutine; external code only pushes events, reads snapshots,
// and adjusts passenger counts through Board and Alight.
type Engine struct {
	cfg       Config
	building  *Building
	queue     *EventQueue
	scheduler Scheduler
	logger    *slog.Logger

	running atomic.Bool
	tick    atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEngine validates cfg and assembles the fleet, queue and controller.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	building := NewBuilding(cfg)
	e := &Engine{
		cfg:       cfg,
		building:  building,
		queue:     NewEventQueue(),
		scheduler: NewScheduler(cfg.Controller, building),
		logger:    slog.Default().With("component", "engine"),
	}

	e.logger.Info("simulation initialized",
		"floors", cfg.NumFloors,
		"elevators", cfg.NumElevators,
		"capacity", cfg.Capacity,
		"controller", e.scheduler.Name(),
		"tick_ms", cfg.TickDurationMs,
	)
	return e, nil
}

// Building exposes the fleet for tests and read-only inspection.
func (e *Engine) Building() *Building { return e.building }

// Scheduler exposes the active controller for tests.
func (e *Engine) Scheduler() Scheduler { return e.scheduler }

// Queue exposes the event queue for external producers that bypass the
// request helpers (test harnesses).
func (e *Engine) Queue() *EventQueue { return e.queue }

// CurrentTick returns the monotonic tick counter.
func (e *Engine) CurrentTick() int {
	return int(e.tick.Load())
}

// IsRunning reports whether the loop goroutine is active.
func (e *Engine) IsRunning() bool {
	return e.running.Load()
}

// Start spawns the loop goroutine. Starting a running engine is a no-op.
// After a Stop the queue is reset, so a restart resumes from the current
// fleet state without stale events.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		return
	}

	e.queue.Reset()
	e.running.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	e.logger.Info("simulation starting")
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			e.logger.Error("simulation loop error", "error", err)
		}
	}()
}

// Stop requests cooperative shutdown and joins the loop goroutine. Cars may
// be left mid-state; a later Start resumes from that state.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel == nil {
		return
	}

	e.logger.Info("simulation stopping")
	e.running.Store(false)
	e.queue.Shutdown()
	e.cancel()
	e.cancel = nil
	e.wg.Wait()
	e.logger.Info("simulation stopped", "ticks", e.tick.Load())
}

// Run executes the paced loop until ctx is cancelled or the running flag
// drops. Tests drive the engine with Step instead.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(e.cfg.TickDurationMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !e.running.Load() {
				return nil
			}
			e.Step()
		}
	}
}

// Step performs exactly one tick: advance every car's state machine, give
// the scheduler its tick, drain the queued events, then bump the counter.
func (e *Engine) Step() {
	e.advanceCars()
	e.scheduler.Tick()

	for {
		ev, ok := e.queue.TryPop()
		if !ok {
			break
		}
		e.processEvent(ev)
	}

	e.tick.Add(1)
}

// advanceCars is the state-machine driver. It is the only writer of car
// position. Each car that completes a timed phase pushes its completion
// event for the scheduler to see during the drain.
func (e *Engine) advanceCars() {
	for id := 0; id < e.building.NumElevators(); id++ {
		car := e.building.Car(id)

		switch car.State() {
		case StateMoving:
			car.DecrementTick()
			if car.TicksRemaining() > 0 {
				continue
			}
			next := car.CurrentFloor() + 1
			if car.Direction() == DirDown {
				next = car.CurrentFloor() - 1
			}
			car.ArriveAtFloor(next, e.cfg.DoorOpenTicks)
			e.push(Event{Type: EventElevatorArrived, CarID: id, Floor: next})
			e.logger.Debug("car arrived", "tick", e.tick.Load(), "car", id, "floor", next)

		case StateDoorsOpening:
			car.DecrementTick()
			if car.TicksRemaining() > 0 {
				continue
			}
			car.SetDoorsOpen(e.cfg.DoorOpenTicks)
			e.push(Event{Type: EventDoorsOpened, CarID: id, Floor: car.CurrentFloor()})

		case StateDoorsOpen:
			car.DecrementTick()
			if car.TicksRemaining() > 0 {
				continue
			}
			// Closing is a single discrete event.
			car.CloseDoors(1)

		case StateDoorsClosing:
			car.DecrementTick()
			if car.TicksRemaining() > 0 {
				continue
			}
			hasWork := car.HasAnyCarCalls() || e.building.HasAnyHallCall()
			car.SetIdle()
			if hasWork {
				e.push(Event{Type: EventDoorsClosed, CarID: id})
			}
		}
	}
}

func (e *Engine) push(ev Event) {
	ev.Timestamp = time.Now()
	e.queue.Push(ev)
}

// processEvent routes one drained event to the scheduler.
func (e *Engine) processEvent(ev Event) {
	e.logger.Debug("event", "tick", e.tick.Load(), "type", ev.Type,
		"car", ev.CarID, "floor", ev.Floor, "dir", ev.Direction)

	switch ev.Type {
	case EventHallCall:
		e.scheduler.HandleHallCall(ev.Floor, ev.Direction)
	case EventCarCall:
		e.scheduler.HandleCarCall(ev.CarID, ev.Floor)
	case EventElevatorArrived:
		e.scheduler.OnElevatorArrived(ev.CarID, ev.Floor)
	case EventDoorsOpened:
		e.scheduler.OnDoorsOpened(ev.CarID, ev.Floor)
	case EventDoorsClosed:
		e.scheduler.OnDoorsClosed(ev.CarID)
	case EventShutdown:
		e.running.Store(false)
	}
}

// RequestHallCall validates and enqueues a landing-button press. Invalid
// requests are rejected here with a diagnostic and never reach the
// scheduler.
func (e *Engine) RequestHallCall(floor int, dir Direction) error {
	if !e.building.IsValidFloor(floor) {
		e.logger.Warn("hall call rejected", "floor", floor, "reason", "floor out of range")
		return fmt.Errorf("%w: %d", ErrInvalidFloor, floor)
	}
	if dir != DirUp && dir != DirDown {
		e.logger.Warn("hall call rejected", "floor", floor, "dir", dir, "reason", "direction must be Up or Down")
		return fmt.Errorf("%w: %s", ErrInvalidDirection, dir)
	}
	if floor == 1 && dir == DirDown {
		e.logger.Warn("hall call rejected", "floor", floor, "reason", "cannot go down from floor 1")
		return fmt.Errorf("%w: cannot go down from floor 1", ErrInvalidDirection)
	}
	if floor == e.building.NumFloors() && dir == DirUp {
		e.logger.Warn("hall call rejected", "floor", floor, "reason", "cannot go up from top floor")
		return fmt.Errorf("%w: cannot go up from floor %d", ErrInvalidDirection, floor)
	}

	e.logger.Info("hall call", "floor", floor, "dir", dir)
	e.push(Event{Type: EventHallCall, Floor: floor, Direction: dir})
	return nil
}

// RequestCarCall validates and enqueues an in-cabin destination press.
func (e *Engine) RequestCarCall(carID, floor int) error {
	if !e.building.IsValidCar(carID) {
		e.logger.Warn("car call rejected", "car", carID, "reason", "elevator id out of range")
		return fmt.Errorf("%w: %d", ErrInvalidElevator, carID)
	}
	if !e.building.IsValidFloor(floor) {
		e.logger.Warn("car call rejected", "car", carID, "floor", floor, "reason", "floor out of range")
		return fmt.Errorf("%w: %d", ErrInvalidFloor, floor)
	}

	e.logger.Info("car call", "car", carID, "floor", floor)
	e.push(Event{Type: EventCarCall, CarID: carID, Floor: floor})
	return nil
}

// Board admits one passenger into the car, bounded by capacity.
func (e *Engine) Board(carID int) error {
	if !e.building.IsValidCar(carID) {
		return fmt.Errorf("%w: %d", ErrInvalidElevator, carID)
	}
	car := e.building.Car(carID)
	if !car.CanBoard() {
		return fmt.Errorf("%w: car %d", ErrCarFull, carID)
	}
	car.BoardPassenger()
	return nil
}

// Alight releases one passenger from the car.
func (e *Engine) Alight(carID int) error {
	if !e.building.IsValidCar(carID) {
		return fmt.Errorf("%w: %d", ErrInvalidElevator, carID)
	}
	e.building.Car(carID).AlightPassenger()
	return nil
}

// CarSnapshots returns a read-only view of every car.
func (e *Engine) CarSnapshots() []CarSnapshot {
	snaps := make([]CarSnapshot, e.building.NumElevators())
	for id := 0; id < e.building.NumElevators(); id++ {
		snaps[id] = e.building.Car(id).Snapshot()
	}
	return snaps
}

// HallCalls returns every pressed landing button.
func (e *Engine) HallCalls() []HallCallKey {
	return e.building.AllHallCalls()
}
