package dispatcher

import (
	"math"

	"liftvator/src/types"
)

// bestCall scans every floor in frame order and scores the ones with an active
// call. The whole frame is scanned; only a strictly greater score replaces the
// running best, so ties keep the earliest-enumerated floor.
func (e *Engine) bestCall(elevator *types.ElevatorState, floors []types.FloorState) (int, bool) {
	bestScore := math.Inf(-1)
	target := 0
	found := false

	for _, floor := range floors {
		if !floor.HasCall() {
			continue
		}
		if score := e.scoreCall(elevator, floor); score > bestScore {
			bestScore = score
			target = floor.Level
			found = true
		}
	}
	return target, found
}

// scoreCall rates one called floor for one elevator. The base score decays
// with distance; a call in the direction the cabin is already heading counts
// double; a nearly full cabin is discouraged from answering, but not barred.
func (e *Engine) scoreCall(elevator *types.ElevatorState, floor types.FloorState) float64 {
	distance := abs(elevator.Floor - floor.Level)
	score := 1.0 / (float64(distance) + 1.0)

	// Direction affinity reads the reported destination field, never engine
	// memory. No destination in the frame means no bonus.
	if elevator.HasDestination {
		headingUp := elevator.DestinationFloor > elevator.Floor
		if (headingUp && floor.CallUp) || (!headingUp && floor.CallDown) {
			score *= e.tuning.DirectionBonus
		}
	}

	if elevator.LoadFraction > e.tuning.OverloadThreshold {
		score *= e.tuning.OverloadPenalty
	}
	return score
}
