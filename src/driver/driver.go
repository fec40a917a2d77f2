// Package driver owns the read/tick/write cycle against the simulation
// driver's stream. Strictly alternating: tick N's commands are fully written
// and flushed before any byte of tick N+1's input is read.
package driver

import (
	"errors"
	"io"
	"log/slog"

	"liftvator/src/dispatcher"
	"liftvator/src/protocol"
)

// Run serves the frame protocol until the stream ends. A clean end of input
// returns nil; a mid-frame truncation or a write failure terminates the loop
// and returns the error. No partial frame is ever acted upon, and there are
// no retries on either side.
func Run(engine *dispatcher.Engine, r io.Reader, w io.Writer) error {
	decoder := protocol.NewDecoder(r)
	encoder := protocol.NewEncoder(w)

	for {
		elevators, floors, err := decoder.ReadState()
		if err != nil {
			if errors.Is(err, io.EOF) {
				slog.Info("State stream closed", "ticks", engine.Tick())
				return nil
			}
			slog.Error("Malformed state frame", "tick", engine.Tick(), "error", err)
			return err
		}

		commands := engine.Dispatch(elevators, floors)
		if err := encoder.WriteCommands(commands); err != nil {
			slog.Error("Command frame write failed", "tick", engine.Tick(), "error", err)
			return err
		}
		engine.NextTick()

		slog.Debug("Tick served",
			"tick", engine.Tick(),
			"elevators", len(elevators),
			"floors", len(floors),
			"commands", len(commands))
	}
}
