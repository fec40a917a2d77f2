package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/eiannone/keyboard"

	"liftvator/src/config"
	"liftvator/src/dispatcher"
	"liftvator/src/sim"
)

const (
	playElevators = 2
	playFloors    = 9
	playTickRate  = 250 * time.Millisecond
)

// runInteractive drives the dispatcher against the built-in building
// simulator, with hall calls injected from the keyboard.
func runInteractive(tuning config.Tuning) error {
	if err := keyboard.Open(); err != nil {
		return err
	}
	defer keyboard.Close()

	keys, err := keyboard.GetKeys(10)
	if err != nil {
		return err
	}

	building := sim.NewBuilding(playElevators, playFloors)
	engine := dispatcher.New(tuning)

	fmt.Printf("Keys 0-%d press an up call on that floor, d a down call on the top floor, q quits.\n", playFloors-1)

	ticker := time.NewTicker(playTickRate)
	defer ticker.Stop()

	for {
		select {
		case event := <-keys:
			if event.Err != nil {
				return event.Err
			}
			switch {
			case event.Rune == 'q' || event.Key == keyboard.KeyEsc || event.Key == keyboard.KeyCtrlC:
				fmt.Println()
				return nil
			case event.Rune == 'd':
				building.Call(playFloors-1, false)
			case event.Rune >= '0' && event.Rune <= '9':
				building.Call(int(event.Rune-'0'), true)
			}
		case <-ticker.C:
			commands := engine.Dispatch(building.Snapshot(), building.Floors)
			building.Apply(commands)
			building.Step()
			engine.NextTick()
			printBuilding(building, engine.Tick())
		}
	}
}

func printBuilding(building *sim.Building, tick int) {
	var line strings.Builder
	fmt.Fprintf(&line, "\rtick %4d | calls %d |", tick, building.PendingCalls())
	for i, elevator := range building.Elevators {
		fmt.Fprintf(&line, " E%d@%d", i, elevator.Floor)
		if elevator.HasDestination {
			fmt.Fprintf(&line, "→%d", elevator.Destination)
		} else {
			line.WriteString("  ")
		}
	}
	line.WriteString("   ")
	fmt.Print(line.String())
}
