// Package dispatcher resolves one target floor per elevator per tick.
// Elevators are resolved independently and never coordinate, so two cabins may
// legitimately target the same floor.
package dispatcher

import (
	"liftvator/src/config"
	"liftvator/src/types"
)

// Engine holds the only state that survives across ticks: the counter used to
// phase idle positioning, and the tuning in effect. Everything else is a pure
// function of the tick's input frame.
type Engine struct {
	tuning config.Tuning
	tick   int
}

func New(tuning config.Tuning) *Engine {
	return &Engine{tuning: tuning}
}

// Tick returns the current tick counter.
func (e *Engine) Tick() int {
	return e.tick
}

// NextTick advances the tick counter. The driver loop calls this once after a
// tick's command frame has been written out.
func (e *Engine) NextTick() {
	e.tick++
}

// Dispatch resolves every elevator in frame order and returns the commands to
// emit. A command is only emitted when the target differs from the elevator's
// current floor, so a correctly positioned cabin stays quiet.
func (e *Engine) Dispatch(elevators []types.ElevatorState, floors []types.FloorState) []types.Command {
	var commands []types.Command
	for i := range elevators {
		elevator := &elevators[i]
		target, ok := e.TargetFloor(elevator, floors)
		if !ok || target == elevator.Floor {
			continue
		}
		commands = append(commands, types.Command{ElevatorID: elevator.ID, TargetFloor: target})
	}
	return commands
}

// TargetFloor picks the next floor for one elevator, in strict priority order:
// in-cabin requests win over floor calls, floor calls win over idle
// positioning. Reports false when the elevator has no reason to move.
func (e *Engine) TargetFloor(elevator *types.ElevatorState, floors []types.FloorState) (int, bool) {
	if len(elevator.PressedFloors) > 0 {
		return nearestPressed(elevator), true
	}
	if target, ok := e.bestCall(elevator, floors); ok {
		return target, true
	}
	return e.idleTarget(elevator, len(floors))
}

// nearestPressed picks the pressed floor closest to the cabin. Ties keep the
// first occurrence in button-press order, not the lower floor value.
func nearestPressed(elevator *types.ElevatorState) int {
	best := elevator.PressedFloors[0]
	bestDistance := abs(elevator.Floor - best)
	for _, floor := range elevator.PressedFloors[1:] {
		if distance := abs(elevator.Floor - floor); distance < bestDistance {
			bestDistance = distance
			best = floor
		}
	}
	return best
}

// idleTarget spreads empty cabins across the building on a fixed cycle, phase
// shifted per elevator so they don't bunch up. A cabin still carrying load
// holds its floor.
func (e *Engine) idleTarget(elevator *types.ElevatorState, floorCount int) (int, bool) {
	if elevator.LoadFraction >= e.tuning.EmptyThreshold || floorCount == 0 {
		return 0, false
	}

	phase := (e.tick + elevator.ID*e.tuning.IdlePhaseStride) % e.tuning.IdleCycle
	third := e.tuning.IdleCycle / 3
	switch {
	case phase < third:
		return max(floorCount/3, 1), true
	case phase < e.tuning.IdleCycle-third:
		return floorCount / 2, true
	default:
		return min(2*floorCount/3, floorCount-1), true
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
