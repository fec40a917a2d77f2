// Package sim is the driver side of the wire: a toy building that produces
// state frames and applies the controller's commands. It stands in for the
// real game host in integration tests and in the interactive mode.
package sim

import (
	"io"

	"github.com/tiendc/go-deepcopy"

	"liftvator/src/protocol"
	"liftvator/src/types"
)

// Elevator is one simulated cabin. Destination tracks the last command the
// controller issued and is reported back on every frame, which is how the
// controller observes continuity.
type Elevator struct {
	Floor          int
	Destination    int
	HasDestination bool
	Load           float64
	PressedFloors  []int
}

// Building is the simulated world: cabins plus hall call buttons.
type Building struct {
	Elevators []Elevator
	Floors    []types.FloorState
}

// NewBuilding creates a building with the given number of cabins, all parked
// at floor 0, and floors levelled 0..floorCount-1.
func NewBuilding(elevatorCount, floorCount int) *Building {
	building := &Building{
		Elevators: make([]Elevator, elevatorCount),
		Floors:    make([]types.FloorState, floorCount),
	}
	for i := range building.Floors {
		building.Floors[i].Level = i
	}
	return building
}

// Call presses a hall button. Unknown levels are ignored.
func (b *Building) Call(level int, up bool) {
	for i := range b.Floors {
		if b.Floors[i].Level != level {
			continue
		}
		if up {
			b.Floors[i].CallUp = true
		} else {
			b.Floors[i].CallDown = true
		}
		return
	}
}

// PressCab registers an in-cabin floor request.
func (b *Building) PressCab(elevator, floor int) {
	if elevator < 0 || elevator >= len(b.Elevators) {
		return
	}
	b.Elevators[elevator].PressedFloors = append(b.Elevators[elevator].PressedFloors, floor)
}

// Snapshot converts the world into the wire records for one state frame. The
// pressed-floor slices are deep-copied so the controller side can never alias
// simulator state.
func (b *Building) Snapshot() []types.ElevatorState {
	snapshot := make([]types.ElevatorState, len(b.Elevators))
	for i := range b.Elevators {
		elevator := &b.Elevators[i]
		state := types.ElevatorState{
			ID:               i,
			Floor:            elevator.Floor,
			DestinationFloor: elevator.Destination,
			HasDestination:   elevator.HasDestination,
			LoadFraction:     elevator.Load,
		}
		if err := deepcopy.Copy(&state.PressedFloors, &elevator.PressedFloors); err != nil {
			panic(err)
		}
		snapshot[i] = state
	}
	return snapshot
}

// Apply stores each command as its elevator's destination. Commands for
// unknown elevators are dropped.
func (b *Building) Apply(commands []types.Command) {
	for _, command := range commands {
		if command.ElevatorID < 0 || command.ElevatorID >= len(b.Elevators) {
			continue
		}
		elevator := &b.Elevators[command.ElevatorID]
		elevator.Destination = command.TargetFloor
		elevator.HasDestination = true
	}
}

// Step moves every cabin one floor toward its destination. On arrival the
// destination is cleared, matching cab requests are served, and the floor's
// hall buttons are released.
func (b *Building) Step() {
	for i := range b.Elevators {
		elevator := &b.Elevators[i]
		if !elevator.HasDestination {
			continue
		}
		switch {
		case elevator.Floor < elevator.Destination:
			elevator.Floor++
		case elevator.Floor > elevator.Destination:
			elevator.Floor--
		}
		if elevator.Floor != elevator.Destination {
			continue
		}

		elevator.HasDestination = false
		remaining := elevator.PressedFloors[:0]
		for _, floor := range elevator.PressedFloors {
			if floor != elevator.Floor {
				remaining = append(remaining, floor)
			}
		}
		elevator.PressedFloors = remaining
		b.clearCalls(elevator.Floor)
	}
}

func (b *Building) clearCalls(level int) {
	for i := range b.Floors {
		if b.Floors[i].Level == level {
			b.Floors[i].CallUp = false
			b.Floors[i].CallDown = false
		}
	}
}

// PendingCalls counts the active hall buttons.
func (b *Building) PendingCalls() int {
	pending := 0
	for _, floor := range b.Floors {
		if floor.CallUp {
			pending++
		}
		if floor.CallDown {
			pending++
		}
	}
	return pending
}

// Drive runs the building against a controller over the stream protocol for a
// fixed number of ticks: write a state frame, read the command frame, apply,
// step. The caller owns both ends of the stream.
func (b *Building) Drive(ticks int, w io.Writer, r io.Reader) error {
	encoder := protocol.NewEncoder(w)
	decoder := protocol.NewDecoder(r)

	for i := 0; i < ticks; i++ {
		if err := encoder.WriteState(b.Snapshot(), b.Floors); err != nil {
			return err
		}
		commands, err := decoder.ReadCommands()
		if err != nil {
			return err
		}
		b.Apply(commands)
		b.Step()
	}
	return nil
}
