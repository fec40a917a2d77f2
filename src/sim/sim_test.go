package sim

import (
	"io"
	"testing"

	"liftvator/src/config"
	"liftvator/src/dispatcher"
	"liftvator/src/driver"
)

func TestSnapshotDetachesPressedFloors(t *testing.T) {
	building := NewBuilding(1, 4)
	building.PressCab(0, 3)

	snapshot := building.Snapshot()
	snapshot[0].PressedFloors[0] = 99

	if building.Elevators[0].PressedFloors[0] != 3 {
		t.Errorf("mutating the snapshot changed the building: %v", building.Elevators[0].PressedFloors)
	}
}

func TestStepServesArrivalFloor(t *testing.T) {
	building := NewBuilding(1, 4)
	building.PressCab(0, 1)
	building.Call(1, true)
	building.Step() // no destination yet, nothing moves
	if building.Elevators[0].Floor != 0 {
		t.Fatalf("cabin moved without a destination: floor %d", building.Elevators[0].Floor)
	}

	building.Elevators[0].Destination = 1
	building.Elevators[0].HasDestination = true
	building.Step()

	elevator := building.Elevators[0]
	if elevator.Floor != 1 || elevator.HasDestination {
		t.Errorf("cabin state after arrival: %+v", elevator)
	}
	if len(elevator.PressedFloors) != 0 {
		t.Errorf("cab request not served on arrival: %v", elevator.PressedFloors)
	}
	if building.PendingCalls() != 0 {
		t.Errorf("hall call not released on arrival: %d pending", building.PendingCalls())
	}
}

func TestCallGetsServedByEngine(t *testing.T) {
	building := NewBuilding(1, 4)
	engine := dispatcher.New(config.Defaults())
	building.Call(3, false)

	for tick := 0; tick < 10; tick++ {
		building.Apply(engine.Dispatch(building.Snapshot(), building.Floors))
		building.Step()
		engine.NextTick()
		if building.PendingCalls() == 0 {
			return
		}
	}
	t.Errorf("call still pending after 10 ticks; cabin at %d", building.Elevators[0].Floor)
}

func TestDriveOverPipes(t *testing.T) {
	stateReader, stateWriter := io.Pipe()
	commandReader, commandWriter := io.Pipe()

	engine := dispatcher.New(config.Defaults())
	done := make(chan error, 1)
	go func() {
		done <- driver.Run(engine, stateReader, commandWriter)
	}()

	building := NewBuilding(2, 6)
	building.Call(4, true)
	building.PressCab(1, 5)

	if err := building.Drive(12, stateWriter, commandReader); err != nil {
		t.Fatalf("Drive returned error: %v", err)
	}
	stateWriter.Close()

	if err := <-done; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if building.PendingCalls() != 0 {
		t.Errorf("hall call still pending after 12 ticks")
	}
	if len(building.Elevators[1].PressedFloors) != 0 {
		t.Errorf("cab request still pending: %v", building.Elevators[1].PressedFloors)
	}
}
