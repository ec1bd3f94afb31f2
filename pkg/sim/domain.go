package sim

import "time"

// Direction indicates the vertical movement vector of a car, or the
// requested travel direction of a hall call. DirIdle is only valid on a car
// at rest; hall calls must be DirUp or DirDown.
type Direction string

const (
	DirUp   Direction = "Up"
	DirDown Direction = "Down"
	DirIdle Direction = "Idle"
)

// CarState is the motion/door lifecycle phase of a single car.
type CarState string

const (
	StateIdle         CarState = "Idle"
	StateMoving       CarState = "Moving"
	StateDoorsOpening CarState = "DoorsOpening"
	StateDoorsOpen    CarState = "DoorsOpen"
	StateDoorsClosing CarState = "DoorsClosing"
)

// EventType represents the category of a simulation event.
type EventType string

const (
	EventHallCall        EventType = "HallCall"
	EventCarCall         EventType = "CarCall"
	EventElevatorArrived EventType = "ElevatorArrived"
	EventDoorsOpened     EventType = "DoorsOpened"
	EventDoorsClosed     EventType = "DoorsClosed"
	EventTick            EventType = "Tick" // reserved, not pushed by the engine
	EventShutdown        EventType = "Shutdown"
)

// Event carries one unit of work through the dispatch pipeline. External
// producers push HallCall/CarCall; the state-machine driver pushes the
// completion events that feed back into the scheduler.
type Event struct {
	Type      EventType
	Floor     int
	CarID     int
	Direction Direction
	Timestamp time.Time
}

// HallCallKey identifies one landing button: a floor paired with a travel
// direction. It is the unit of group-dispatch bookkeeping for both the
// master assignment table and the distributed claim board.
type HallCallKey struct {
	Floor int
	Dir   Direction
}

// Unclaimed is the claim-board sentinel for a registered but unowned hall
// call. It is distinct from every valid car id (cars are zero-indexed).
const Unclaimed = -1

// CarSnapshot is a read-only view of one car, safe to retain across ticks.
type CarSnapshot struct {
	ID             int       `json:"id"`
	Floor          int       `json:"floor"`
	State          CarState  `json:"state"`
	Direction      Direction `json:"direction"`
	PassengerCount int       `json:"passengerCount"`
	CarCalls       []int     `json:"carCalls"`
}
