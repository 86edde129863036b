package main

import (
	"fmt"
	"io"
	"log"
	"os"
)

// setupLogging points the std logger at path, keeping one rotated backup.
// With mirror set, log lines are also written to stderr.
// It returns the opened log file so callers can close it on shutdown.
func setupLogging(path string, mirror bool) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("log file path is empty")
	}

	if err := rotateLog(path); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	var out io.Writer = f
	if mirror {
		out = io.MultiWriter(f, os.Stderr)
	}
	log.SetOutput(out)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	return f, nil
}

// rotateLog moves path to path.1, replacing any older backup
func rotateLog(path string) error {
	_ = os.Remove(path + ".1")

	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".1"); err != nil {
			return fmt.Errorf("failed to rotate existing log: %w", err)
		}
	}
	return nil
}
