// Package protocol implements the little-endian frame codec spoken between
// the controller and the simulation driver. Both directions live here: the
// controller reads state frames and writes command frames, the driver side
// (simulator, tests) does the opposite.
package protocol

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"liftvator/src/types"
)

// NoDestination is the wire sentinel for an absent destination floor.
const NoDestination = -1

type Decoder struct {
	r   *bufio.Reader
	buf [4]byte
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// ReadState decodes one state frame. A stream that ends cleanly before the
// first field returns io.EOF; a stream that ends mid-frame is a decode error.
// Exactly the bytes the declared counts require are consumed.
func (d *Decoder) ReadState() ([]types.ElevatorState, []types.FloorState, error) {
	elevatorCount, err := d.readU32()
	if err != nil {
		if err == io.EOF {
			return nil, nil, io.EOF
		}
		return nil, nil, decodeErr("state frame", err)
	}
	floorCount, err := d.readU32()
	if err != nil {
		return nil, nil, decodeErr("state frame", err)
	}

	elevators := make([]types.ElevatorState, 0, elevatorCount)
	for id := 0; id < int(elevatorCount); id++ {
		elevator, err := d.readElevator(id)
		if err != nil {
			return nil, nil, decodeErr("elevator record", err)
		}
		elevators = append(elevators, elevator)
	}

	floors := make([]types.FloorState, 0, floorCount)
	for i := 0; i < int(floorCount); i++ {
		floor, err := d.readFloor()
		if err != nil {
			return nil, nil, decodeErr("floor record", err)
		}
		floors = append(floors, floor)
	}

	return elevators, floors, nil
}

// ReadCommands decodes one command frame; the driver side of the wire.
func (d *Decoder) ReadCommands() ([]types.Command, error) {
	count, err := d.readU32()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, decodeErr("command frame", err)
	}

	commands := make([]types.Command, 0, count)
	for i := 0; i < int(count); i++ {
		elevatorID, err := d.readU32()
		if err != nil {
			return nil, decodeErr("command record", err)
		}
		target, err := d.readI32()
		if err != nil {
			return nil, decodeErr("command record", err)
		}
		commands = append(commands, types.Command{ElevatorID: int(elevatorID), TargetFloor: int(target)})
	}
	return commands, nil
}

func (d *Decoder) readElevator(id int) (types.ElevatorState, error) {
	var elevator types.ElevatorState
	elevator.ID = id

	current, err := d.readI32()
	if err != nil {
		return elevator, err
	}
	elevator.Floor = int(current)

	destination, err := d.readI32()
	if err != nil {
		return elevator, err
	}
	if destination != NoDestination {
		elevator.DestinationFloor = int(destination)
		elevator.HasDestination = true
	}

	load, err := d.readF32()
	if err != nil {
		return elevator, err
	}
	elevator.LoadFraction = float64(load)

	pressedCount, err := d.readU32()
	if err != nil {
		return elevator, err
	}
	if pressedCount > 0 {
		elevator.PressedFloors = make([]int, 0, pressedCount)
		for i := 0; i < int(pressedCount); i++ {
			floor, err := d.readI32()
			if err != nil {
				return elevator, err
			}
			elevator.PressedFloors = append(elevator.PressedFloors, int(floor))
		}
	}

	return elevator, nil
}

func (d *Decoder) readFloor() (types.FloorState, error) {
	var floor types.FloorState

	level, err := d.readI32()
	if err != nil {
		return floor, err
	}
	floor.Level = int(level)

	if floor.CallUp, err = d.readButton(); err != nil {
		return floor, err
	}
	if floor.CallDown, err = d.readButton(); err != nil {
		return floor, err
	}
	return floor, nil
}

func (d *Decoder) readU32() (uint32, error) {
	if _, err := io.ReadFull(d.r, d.buf[:4]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(d.buf[:4]), nil
}

func (d *Decoder) readI32() (int32, error) {
	value, err := d.readU32()
	return int32(value), err
}

func (d *Decoder) readF32() (float32, error) {
	value, err := d.readU32()
	return math.Float32frombits(value), err
}

func (d *Decoder) readButton() (bool, error) {
	b, err := d.r.ReadByte()
	return b != 0, err
}

// decodeErr marks a structural framing problem. A plain EOF inside a frame
// means truncation, so it is promoted to an unexpected one before wrapping.
func decodeErr(what string, err error) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("decode %s: %w", what, err)
}

type Encoder struct {
	w   *bufio.Writer
	buf [4]byte
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// WriteCommands encodes one command frame in the order given, no reordering or
// deduplication, and flushes it fully before returning.
func (e *Encoder) WriteCommands(commands []types.Command) error {
	if err := e.writeU32(uint32(len(commands))); err != nil {
		return err
	}
	for _, command := range commands {
		if err := e.writeU32(uint32(command.ElevatorID)); err != nil {
			return err
		}
		if err := e.writeI32(int32(command.TargetFloor)); err != nil {
			return err
		}
	}
	return e.w.Flush()
}

// WriteState encodes one state frame; the driver side of the wire.
func (e *Encoder) WriteState(elevators []types.ElevatorState, floors []types.FloorState) error {
	if err := e.writeU32(uint32(len(elevators))); err != nil {
		return err
	}
	if err := e.writeU32(uint32(len(floors))); err != nil {
		return err
	}
	for i := range elevators {
		if err := e.writeElevator(&elevators[i]); err != nil {
			return err
		}
	}
	for _, floor := range floors {
		if err := e.writeFloor(floor); err != nil {
			return err
		}
	}
	return e.w.Flush()
}

func (e *Encoder) writeElevator(elevator *types.ElevatorState) error {
	if err := e.writeI32(int32(elevator.Floor)); err != nil {
		return err
	}
	destination := int32(NoDestination)
	if elevator.HasDestination {
		destination = int32(elevator.DestinationFloor)
	}
	if err := e.writeI32(destination); err != nil {
		return err
	}
	if err := e.writeF32(float32(elevator.LoadFraction)); err != nil {
		return err
	}
	if err := e.writeU32(uint32(len(elevator.PressedFloors))); err != nil {
		return err
	}
	for _, floor := range elevator.PressedFloors {
		if err := e.writeI32(int32(floor)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) writeFloor(floor types.FloorState) error {
	if err := e.writeI32(int32(floor.Level)); err != nil {
		return err
	}
	if err := e.writeButton(floor.CallUp); err != nil {
		return err
	}
	return e.writeButton(floor.CallDown)
}

func (e *Encoder) writeU32(value uint32) error {
	binary.LittleEndian.PutUint32(e.buf[:4], value)
	_, err := e.w.Write(e.buf[:4])
	return err
}

func (e *Encoder) writeI32(value int32) error {
	return e.writeU32(uint32(value))
}

func (e *Encoder) writeF32(value float32) error {
	return e.writeU32(math.Float32bits(value))
}

func (e *Encoder) writeButton(pressed bool) error {
	var b byte
	if pressed {
		b = 1
	}
	return e.w.WriteByte(b)
}
