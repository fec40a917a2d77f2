package types

// ElevatorState is one elevator's slice of a state frame. The ID is the
// 0-based position of the record in the frame and is only stable for that
// tick; every record is rebuilt from the wire each tick.
type ElevatorState struct {
	ID               int
	Floor            int
	DestinationFloor int
	HasDestination   bool
	LoadFraction     float64
	PressedFloors    []int
}

// FloorState is one floor's slice of a state frame. Levels are signed and may
// be negative; the frame order is the canonical enumeration order.
type FloorState struct {
	Level    int
	CallUp   bool
	CallDown bool
}

// HasCall reports whether either call button is active on the floor.
func (f FloorState) HasCall() bool {
	return f.CallUp || f.CallDown
}

// Command tells one elevator which floor to travel to next. At most one
// command per elevator appears in a tick's command frame.
type Command struct {
	ElevatorID  int
	TargetFloor int
}
