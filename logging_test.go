package main

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupLoggingRotatesOneBackup(t *testing.T) {
	prevOut, prevFlags := log.Writer(), log.Flags()
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})

	path := filepath.Join(t.TempDir(), "errorwatch.log")
	if err := os.WriteFile(path, []byte("first run\n"), 0644); err != nil {
		t.Fatalf("seed log: %v", err)
	}
	if err := os.WriteFile(path+".1", []byte("ancient\n"), 0644); err != nil {
		t.Fatalf("seed backup: %v", err)
	}

	f, err := setupLogging(path, false)
	if err != nil {
		t.Fatalf("setupLogging: %v", err)
	}
	log.Print("second run")
	f.Close()

	backup, _ := os.ReadFile(path + ".1")
	if string(backup) != "first run\n" {
		t.Fatalf("expected previous log in backup, got %q", backup)
	}
	current, _ := os.ReadFile(path)
	if !strings.Contains(string(current), "second run") || strings.Contains(string(current), "first run") {
		t.Fatalf("unexpected current log: %q", current)
	}
}

func TestSetupLoggingRejectsEmptyPath(t *testing.T) {
	if _, err := setupLogging("", false); err == nil {
		t.Fatal("expected error for empty path")
	}
}
