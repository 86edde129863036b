package core

import (
	"bytes"
	"errorwatch/models"
	"strings"
	"testing"
)

func TestConsoleSink_WritesFixedBlock(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleSink(&buf).Write(&models.ErrorRecord{
		Type:       "error",
		Message:    "x is undefined",
		Path:       "app.js",
		Line:       10,
		Column:     2,
		StackTrace: "at f (app.js:10:2)\nat g (app.js:20:1)",
		Viewport:   "1024x768",
		TimeSpend:  61000,
		Datetime:   "Sat Mar 09 2024 14:06:08 GMT+0000 (UTC)",
	})
	out := buf.String()

	want := []string{
		"Uncaught error: x is undefined",
		"Type:        error",
		"Message:     x is undefined",
		"  at f (app.js:10:2)\n  at g (app.js:20:1)\n",
		"Path:        app.js",
		"Line:        10",
		"Column:      2",
		"Debug:       app.js:10",
		"Viewport:    1024x768",
		"Time spent:  1 minute, 1 second",
		"Datetime:    Sat Mar 09 2024",
	}
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Fatalf("expected output to contain %q, got:\n%s", w, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no colour codes for a non-terminal writer")
	}
}

func TestConsoleSink_EmptyStack(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleSink(&buf).Write(&models.ErrorRecord{Type: "error"})
	if !strings.Contains(buf.String(), "(none)") {
		t.Fatalf("expected placeholder for empty stack, got:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "Time spent:  0 milliseconds") {
		t.Fatalf("expected zero duration fallback, got:\n%s", buf.String())
	}
}
