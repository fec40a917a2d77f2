// Package network serves the frame protocol over WebSocket, for hosts that
// embed the controller behind a browser game rather than a pipe. One binary
// message carries exactly one frame; each connection gets its own engine
// context, so tick phasing is per host.
package network

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"liftvator/src/config"
	"liftvator/src/dispatcher"
	"liftvator/src/protocol"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Handler upgrades each request and serves the dispatch protocol on the
// resulting connection.
func Handler(tuning config.Tuning) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		defer conn.Close()
		serve(conn, dispatcher.New(tuning))
	})
}

// serve mirrors the stream loop per connection: a closed connection or a
// malformed state message terminates it, and no partial frame is acted upon.
func serve(conn *websocket.Conn, engine *dispatcher.Engine) {
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			slog.Info("Connection closed", "remote", conn.RemoteAddr(), "ticks", engine.Tick())
			return
		}
		if messageType != websocket.BinaryMessage {
			slog.Error("Non-binary message on dispatch connection", "remote", conn.RemoteAddr())
			return
		}

		decoder := protocol.NewDecoder(bytes.NewReader(data))
		elevators, floors, err := decoder.ReadState()
		if err != nil {
			slog.Error("Malformed state message", "tick", engine.Tick(), "error", err)
			return
		}

		var frame bytes.Buffer
		encoder := protocol.NewEncoder(&frame)
		if err := encoder.WriteCommands(engine.Dispatch(elevators, floors)); err != nil {
			slog.Error("Command frame encode failed", "tick", engine.Tick(), "error", err)
			return
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, frame.Bytes()); err != nil {
			slog.Error("Command frame write failed", "tick", engine.Tick(), "error", err)
			return
		}
		engine.NextTick()
	}
}

// ListenAndServe serves the dispatch protocol over WebSocket on addr.
func ListenAndServe(addr string, tuning config.Tuning) error {
	slog.Info("Serving dispatch protocol over WebSocket", "addr", addr)
	return http.ListenAndServe(addr, Handler(tuning))
}
