package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"liftvator/src/config"
	"liftvator/src/dispatcher"
	"liftvator/src/driver"
	"liftvator/src/network"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML tuning override")
	wsAddr := flag.String("ws", "", "Serve the protocol over WebSocket on this address instead of stdio")
	play := flag.Bool("play", false, "Run the interactive building simulator")
	flag.Parse()

	InitLogger()

	tuning, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load tuning config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	switch {
	case *play:
		if err := runInteractive(tuning); err != nil {
			slog.Error("Interactive simulator failed", "error", err)
			os.Exit(1)
		}
	case *wsAddr != "":
		if err := network.ListenAndServe(*wsAddr, tuning); err != nil {
			slog.Error("WebSocket server failed", "error", err)
			os.Exit(1)
		}
	default:
		engine := dispatcher.New(tuning)
		if err := driver.Run(engine, os.Stdin, os.Stdout); err != nil {
			slog.Error("Protocol loop terminated", "error", err)
			os.Exit(1)
		}
	}
}

// InitLogger sets up global logging configuration with compact time format.
// Logs go to stderr: stdout carries the command frames.
func InitLogger() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format("15:04:05"))
				}
			}

			// Format source information as file:line
			if a.Key == slog.SourceKey {
				if source, ok := a.Value.Any().(*slog.Source); ok {
					file := source.File
					if lastSlash := strings.LastIndexByte(file, '/'); lastSlash >= 0 {
						file = file[lastSlash+1:]
					}
					a.Value = slog.StringValue(fmt.Sprintf("%s:%d", file, source.Line))
				}
			}

			return a
		},
	})

	slog.SetDefault(slog.New(handler))
}
