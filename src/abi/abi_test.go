package abi

import (
	"encoding/binary"
	"math"
	"testing"

	"liftvator/src/config"
)

// memoryBuilder lays records into a flat span the way a host runtime would.
type memoryBuilder struct {
	mem Memory
}

func (b *memoryBuilder) u32(v uint32) *memoryBuilder {
	b.mem = binary.LittleEndian.AppendUint32(b.mem, v)
	return b
}

func (b *memoryBuilder) i32(v int32) *memoryBuilder {
	return b.u32(uint32(v))
}

func (b *memoryBuilder) f32(v float32) *memoryBuilder {
	return b.u32(math.Float32bits(v))
}

func (b *memoryBuilder) offset() uint32 {
	return uint32(len(b.mem))
}

type call struct {
	elevatorID uint32
	floor      uint32
}

func collect(calls *[]call) GoToFloor {
	return func(elevatorID, floor uint32) {
		*calls = append(*calls, call{elevatorID, floor})
	}
}

func TestTickCallsBackForPressedFloor(t *testing.T) {
	var b memoryBuilder
	pressedOffset := b.offset()
	b.u32(2) // pressed floor

	elevatorsOffset := b.offset()
	b.u32(7).u32(0).i32(-1).u32(pressedOffset).u32(1).f32(0.4)

	floorsOffset := b.offset()
	b.u32(0).u32(0).u32(0)
	b.u32(1).u32(0).u32(0)
	b.u32(2).u32(0).u32(0)

	var calls []call
	session := NewSession(config.Defaults())
	if err := session.Tick(b.mem, elevatorsOffset, 1, floorsOffset, 3, collect(&calls)); err != nil {
		t.Fatalf("Tick returned error: %v", err)
	}
	if len(calls) != 1 || calls[0] != (call{7, 2}) {
		t.Errorf("calls = %+v, want [{7 2}]", calls)
	}
}

func TestTickAnswersHallCall(t *testing.T) {
	var b memoryBuilder
	elevatorsOffset := b.offset()
	b.u32(0).u32(0).i32(-1).u32(0).u32(0).f32(0)

	floorsOffset := b.offset()
	b.u32(0).u32(0).u32(0)
	b.u32(3).u32(1).u32(0)
	b.u32(7).u32(1).u32(0)

	var calls []call
	session := NewSession(config.Defaults())
	if err := session.Tick(b.mem, elevatorsOffset, 1, floorsOffset, 3, collect(&calls)); err != nil {
		t.Fatalf("Tick returned error: %v", err)
	}
	if len(calls) != 1 || calls[0] != (call{0, 3}) {
		t.Errorf("calls = %+v, want the closer call [{0 3}]", calls)
	}
}

func TestTickSuppressesCurrentFloorAndDestination(t *testing.T) {
	var b memoryBuilder
	pressedOffset := b.offset()
	b.u32(5)

	elevatorsOffset := b.offset()
	// Cabin 0 is already at its only pressed floor.
	b.u32(0).u32(5).i32(-1).u32(pressedOffset).u32(1).f32(0.5)
	// Cabin 1 is already bound for it.
	b.u32(1).u32(0).i32(5).u32(pressedOffset).u32(1).f32(0.5)

	var calls []call
	session := NewSession(config.Defaults())
	if err := session.Tick(b.mem, elevatorsOffset, 2, 0, 0, collect(&calls)); err != nil {
		t.Fatalf("Tick returned error: %v", err)
	}
	if len(calls) != 0 {
		t.Errorf("calls = %+v, want none", calls)
	}
}

func TestTickAdvancesIdlePhase(t *testing.T) {
	var b memoryBuilder
	elevatorsOffset := b.offset()
	b.u32(0).u32(0).i32(-1).u32(0).u32(0).f32(0)

	floorsOffset := b.offset()
	for level := uint32(0); level < 9; level++ {
		b.u32(level).u32(0).u32(0)
	}

	var calls []call
	session := NewSession(config.Defaults())
	for i := 0; i < 2; i++ {
		calls = calls[:0]
		if err := session.Tick(b.mem, elevatorsOffset, 1, floorsOffset, 9, collect(&calls)); err != nil {
			t.Fatalf("Tick %d returned error: %v", i, err)
		}
		// Bottom-third parking for the whole first phase window.
		if len(calls) != 1 || calls[0] != (call{0, 3}) {
			t.Errorf("tick %d: calls = %+v, want [{0 3}]", i, calls)
		}
	}
}

func TestElevatorRecordsBoundsChecked(t *testing.T) {
	var b memoryBuilder
	b.u32(0).u32(0).i32(-1).u32(0).u32(0) // 20 bytes, one field short

	var calls []call
	session := NewSession(config.Defaults())
	err := session.Tick(b.mem, 0, 1, 0, 0, collect(&calls))
	if err == nil {
		t.Fatal("Tick accepted an elevator span past the memory end")
	}
	if len(calls) != 0 {
		t.Errorf("calls = %+v, want none on a malformed span", calls)
	}
}

func TestPressedArrayBoundsChecked(t *testing.T) {
	var b memoryBuilder
	elevatorsOffset := b.offset()
	// Pressed array claims 4 entries starting at the end of memory.
	b.u32(0).u32(0).i32(-1).u32(b.offset() + elevatorRecordSize).u32(4).f32(0)

	var calls []call
	session := NewSession(config.Defaults())
	if err := session.Tick(b.mem, elevatorsOffset, 1, 0, 0, collect(&calls)); err == nil {
		t.Fatal("Tick accepted a pressed-floor span past the memory end")
	}
}

func TestFloorRecordsBoundsChecked(t *testing.T) {
	var b memoryBuilder
	elevatorsOffset := b.offset()
	b.u32(0).u32(0).i32(-1).u32(0).u32(0).f32(0)

	session := NewSession(config.Defaults())
	if err := session.Tick(b.mem, elevatorsOffset, 1, b.offset(), 2, func(uint32, uint32) {}); err == nil {
		t.Fatal("Tick accepted a floor span past the memory end")
	}
}
