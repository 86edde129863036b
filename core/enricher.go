package core

import (
	"errorwatch/models"
	"time"
)

// DatetimeLayout mirrors the browser Date.toString() rendering
const DatetimeLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"

// Enricher turns raw error events into error records
type Enricher struct {
	clock    *SessionClock
	viewport ViewportSource
	now      func() time.Time
}

// NewEnricher creates an enricher. viewport may be nil, in which case the
// viewport renders as "0x0". A nil now uses time.Now.
func NewEnricher(clock *SessionClock, viewport ViewportSource, now func() time.Time) *Enricher {
	if now == nil {
		now = time.Now
	}
	return &Enricher{clock: clock, viewport: viewport, now: now}
}

// Enrich builds a record from ev. The only failure is a clock that was never started.
func (e *Enricher) Enrich(ev models.ErrorEvent) (*models.ErrorRecord, error) {
	elapsed, err := e.clock.Elapsed()
	if err != nil {
		return nil, err
	}

	var document, window Size
	if e.viewport != nil {
		document, window = e.viewport.Viewport()
	}

	return &models.ErrorRecord{
		Type:       ev.Type,
		Message:    ev.Message,
		Path:       ev.Filename,
		Line:       ev.Lineno,
		Column:     ev.Colno,
		StackTrace: stackOf(ev),
		Viewport:   ViewportString(document, window),
		TimeSpend:  elapsed.Milliseconds(),
		Datetime:   e.now().Format(DatetimeLayout),
	}, nil
}

// stackOf returns the attached error's stack verbatim, or "" when the event has none
func stackOf(ev models.ErrorEvent) string {
	if ev.Error == nil {
		return ""
	}
	return ev.Error.Stack
}
