// Package abi is the embedded transport variant, used when the controller is
// hosted in-process rather than behind a stream. State arrives as fixed-layout
// records in a raw memory span; commands leave through a host callback. The
// declared lengths are authoritative and nothing is ever read beyond them.
package abi

import (
	"encoding/binary"
	"fmt"
	"math"

	"liftvator/src/config"
	"liftvator/src/dispatcher"
	"liftvator/src/protocol"
	"liftvator/src/types"
)

const (
	elevatorRecordSize = 24
	floorRecordSize    = 12
)

// Memory is the host's linear memory. All record offsets and pressed-floor
// pointers are interpreted against it, bounds-checked.
type Memory []byte

func (m Memory) u32(offset uint32) uint32 {
	return binary.LittleEndian.Uint32(m[offset:])
}

func (m Memory) i32(offset uint32) int32 {
	return int32(m.u32(offset))
}

func (m Memory) f32(offset uint32) float32 {
	return math.Float32frombits(m.u32(offset))
}

func (m Memory) checkSpan(offset uint32, size int64, what string) error {
	if int64(offset)+size > int64(len(m)) {
		return fmt.Errorf("%s: span [%d, %d) exceeds memory of %d bytes", what, offset, int64(offset)+size, len(m))
	}
	return nil
}

// pressedView is a length-bounded window over a pressed-floor array in host
// memory, validated once at the boundary so reads cannot escape it.
type pressedView struct {
	mem    Memory
	base   uint32
	length uint32
}

func newPressedView(mem Memory, base, length uint32) (pressedView, error) {
	if length > 0 {
		if err := mem.checkSpan(base, int64(length)*4, "pressed floors"); err != nil {
			return pressedView{}, err
		}
	}
	return pressedView{mem: mem, base: base, length: length}, nil
}

func (v pressedView) len() int {
	return int(v.length)
}

func (v pressedView) at(i int) int {
	return int(int32(v.mem.u32(v.base + uint32(i)*4)))
}

// GoToFloor is the host callback. It is invoked at most once per elevator per
// Tick call.
type GoToFloor func(elevatorID, floor uint32)

// Session owns the engine context for one embedded host; there is no
// process-wide controller. The host must not mutate the memory span while a
// Tick call is running.
type Session struct {
	engine *dispatcher.Engine
}

func NewSession(tuning config.Tuning) *Session {
	return &Session{engine: dispatcher.New(tuning)}
}

// Tick parses the record spans, resolves every elevator, and reports new
// targets through the callback. Targets matching the cabin's current floor or
// its reported destination are suppressed: the cabin is already there, or
// already on its way. A malformed span is an error and emits no callbacks.
func (s *Session) Tick(mem Memory, elevatorsOffset, elevatorCount, floorsOffset, floorCount uint32, goToFloor GoToFloor) error {
	elevators, err := parseElevators(mem, elevatorsOffset, elevatorCount)
	if err != nil {
		return fmt.Errorf("parse elevator records: %w", err)
	}
	floors, err := parseFloors(mem, floorsOffset, floorCount)
	if err != nil {
		return fmt.Errorf("parse floor records: %w", err)
	}

	for i := range elevators {
		elevator := &elevators[i]
		target, ok := s.engine.TargetFloor(elevator, floors)
		if !ok || target == elevator.Floor {
			continue
		}
		if elevator.HasDestination && target == elevator.DestinationFloor {
			continue
		}
		goToFloor(uint32(elevator.ID), uint32(target))
	}
	s.engine.NextTick()
	return nil
}

// parseElevators copies each record out of the span into an owned state, so
// nothing downstream can alias host memory.
func parseElevators(mem Memory, offset, count uint32) ([]types.ElevatorState, error) {
	if err := mem.checkSpan(offset, int64(count)*elevatorRecordSize, "elevator records"); err != nil {
		return nil, err
	}

	elevators := make([]types.ElevatorState, 0, count)
	for i := uint32(0); i < count; i++ {
		base := offset + i*elevatorRecordSize

		elevator := types.ElevatorState{
			ID:           int(mem.u32(base)),
			Floor:        int(mem.u32(base + 4)),
			LoadFraction: float64(mem.f32(base + 20)),
		}
		if destination := mem.i32(base + 8); destination != protocol.NoDestination {
			elevator.DestinationFloor = int(destination)
			elevator.HasDestination = true
		}

		view, err := newPressedView(mem, mem.u32(base+12), mem.u32(base+16))
		if err != nil {
			return nil, err
		}
		if view.len() > 0 {
			elevator.PressedFloors = make([]int, view.len())
			for j := range elevator.PressedFloors {
				elevator.PressedFloors[j] = view.at(j)
			}
		}

		elevators = append(elevators, elevator)
	}
	return elevators, nil
}

func parseFloors(mem Memory, offset, count uint32) ([]types.FloorState, error) {
	if err := mem.checkSpan(offset, int64(count)*floorRecordSize, "floor records"); err != nil {
		return nil, err
	}

	floors := make([]types.FloorState, 0, count)
	for i := uint32(0); i < count; i++ {
		base := offset + i*floorRecordSize
		floors = append(floors, types.FloorState{
			Level:    int(mem.u32(base)),
			CallUp:   mem.u32(base+4) != 0,
			CallDown: mem.u32(base+8) != 0,
		})
	}
	return floors, nil
}
