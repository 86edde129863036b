package models

import "strings"

// EventError is the optional error object attached to a raised error event
type EventError struct {
	Stack string `json:"stack"`
}

// ErrorEvent is a raw uncaught-error notification delivered by a host
type ErrorEvent struct {
	Type     string      `json:"type"`     // Event category, usually "error"
	Message  string      `json:"message"`  // Human-readable message
	Filename string      `json:"filename"` // Source file or URL
	Lineno   int         `json:"lineno"`   // 1-based line
	Colno    int         `json:"colno"`    // 1-based column
	Error    *EventError `json:"error,omitempty"`
}

// ErrorRecord is an error event enriched with page context
type ErrorRecord struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Path       string `json:"path"`
	Line       int    `json:"line"`
	Column     int    `json:"column"`
	StackTrace string `json:"stackTrace"` // Newline-delimited frames
	Viewport   string `json:"viewport"`   // "<width>x<height>"
	TimeSpend  int64  `json:"timeSpend"`  // Milliseconds since session start
	Datetime   string `json:"datetime"`
}

// ErrorPayload is the JSON body posted to a remote collector.
// Field names are part of the wire contract.
type ErrorPayload struct {
	Type       string   `json:"type"`
	Message    string   `json:"message"`
	Path       string   `json:"path"`
	Line       int      `json:"line"`
	Column     int      `json:"column"`
	StackTrace []string `json:"stackTrace"`
	Viewport   string   `json:"viewport"`
	TimeSpend  int64    `json:"timeSpend"`
	Datetime   string   `json:"datetime"`
}

// NewErrorPayload converts a record into its wire form, splitting the raw
// stack trace into one entry per line
func NewErrorPayload(rec *ErrorRecord) ErrorPayload {
	return ErrorPayload{
		Type:       rec.Type,
		Message:    rec.Message,
		Path:       rec.Path,
		Line:       rec.Line,
		Column:     rec.Column,
		StackTrace: SplitStack(rec.StackTrace),
		Viewport:   rec.Viewport,
		TimeSpend:  rec.TimeSpend,
		Datetime:   rec.Datetime,
	}
}

// SplitStack splits a newline-delimited stack trace into frames.
// An empty stack yields an empty, non-nil slice.
func SplitStack(stack string) []string {
	if stack == "" {
		return []string{}
	}
	return strings.Split(stack, "\n")
}

// Normalize trims whitespace from free-form fields and guarantees a non-nil stack
func (p *ErrorPayload) Normalize() {
	p.Type = strings.TrimSpace(p.Type)
	p.Message = strings.TrimSpace(p.Message)
	p.Path = strings.TrimSpace(p.Path)
	p.Viewport = strings.TrimSpace(p.Viewport)
	p.Datetime = strings.TrimSpace(p.Datetime)
	if p.Type == "" {
		p.Type = "error"
	}
	if p.StackTrace == nil {
		p.StackTrace = []string{}
	}
}
