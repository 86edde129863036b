package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSplitStack(t *testing.T) {
	if got := SplitStack(""); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
	if got := SplitStack("at a\nat b"); len(got) != 2 || got[1] != "at b" {
		t.Fatalf("unexpected frames: %#v", got)
	}
}

func TestNewErrorPayloadEmptyStackEncodesAsArray(t *testing.T) {
	p := NewErrorPayload(&ErrorRecord{Type: "error", Message: "boom", Viewport: "1x1"})
	body, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(body), `"stackTrace":[]`) {
		t.Fatalf("expected empty array stack, got %s", body)
	}
}

func TestNormalize(t *testing.T) {
	p := ErrorPayload{Message: "  boom \n", Path: " app.js "}
	p.Normalize()
	if p.Type != "error" || p.Message != "boom" || p.Path != "app.js" {
		t.Fatalf("unexpected normalized payload: %+v", p)
	}
	if p.StackTrace == nil {
		t.Fatalf("expected non-nil stack")
	}
}

func TestStoredErrorRoundTripsStack(t *testing.T) {
	row := NewStoredError(ErrorPayload{Message: "boom", StackTrace: []string{"at f", "at g"}}, "10.0.0.1")
	read := row.Read()
	if read.RemoteAddr != "10.0.0.1" || len(read.StackTrace) != 2 || read.StackTrace[0] != "at f" {
		t.Fatalf("unexpected read model: %+v", read)
	}

	row.SetStackTrace(nil)
	if row.StackJSON != "[]" || len(row.GetStackTrace()) != 0 {
		t.Fatalf("expected empty stack stored as [], got %q", row.StackJSON)
	}
}
