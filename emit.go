package main

import (
	"errors"
	"errorwatch/config"
	"errorwatch/core"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// mainEmit captures one error carrying message through a Window, delivers it
// to the collector at config.Settings.CLIServer and returns the exit code.
func mainEmit(message string) int {
	endpoint := strings.TrimRight(config.Settings.CLIServer, "/") + "/api/errors"

	client := &http.Client{}
	if config.Settings.EmitTimeoutSeconds > 0 {
		client.Timeout = time.Duration(config.Settings.EmitTimeoutSeconds) * time.Second
	}

	w := core.NewWindow()
	w.SetViewport(terminalSize())
	rep := core.New(w, core.WithHTTPClient(client), core.WithConsoleOutput(os.Stderr))
	defer rep.Close()

	var delivered atomic.Bool
	rep.Init(config.Overrides{
		RemoteLogging: &config.RemoteLogging{
			Enable:          true,
			URL:             endpoint,
			SuccessCallback: func() { delivered.Store(true) },
			ErrorCallback:   func() { log.Printf("Delivery to %s failed", endpoint) },
		},
	})

	if err := w.ReportError(errors.New(message)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	rep.Wait()

	if !delivered.Load() {
		fmt.Fprintf(os.Stderr, "✗ Error report was not accepted by %s\n", endpoint)
		return 1
	}
	fmt.Fprintf(os.Stderr, "✓ Error report delivered to %s\n", endpoint)
	return 0
}

// terminalSize reads COLUMNS and LINES as the emitting "window"
func terminalSize() (document, window core.Size) {
	var s core.Size
	fmt.Sscan(os.Getenv("COLUMNS"), &s.Width)
	fmt.Sscan(os.Getenv("LINES"), &s.Height)
	return s, s
}
