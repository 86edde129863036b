package core

import (
	"errorwatch/models"
	"fmt"
	"log"
	"reflect"
	"runtime"
	"strings"
	"sync"
)

// ErrorListener receives uncaught error events from a host
type ErrorListener interface {
	HandleError(ev models.ErrorEvent) error
}

// Host is the environment errors are raised in
type Host interface {
	ViewportSource
	AddErrorListener(l ErrorListener)
	RemoveErrorListener(l ErrorListener)
}

// Window is an in-process Host. Events are delivered one at a time, in
// arrival order, to listeners in registration order. Listeners must not
// call Raise themselves.
type Window struct {
	mu        sync.RWMutex
	listeners []ErrorListener
	document  Size
	window    Size
	logger    *log.Logger

	deliverMu sync.Mutex
}

// NewWindow creates a host with a zero viewport that logs to the standard logger
func NewWindow() *Window {
	return &Window{logger: log.Default()}
}

// SetViewport sets the sizes reported to listeners
func (w *Window) SetViewport(document, window Size) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.document = document
	w.window = window
}

// SetLogger sets where errors from Recover and Go are logged
func (w *Window) SetLogger(l *log.Logger) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.logger = l
}

func (w *Window) Viewport() (document, window Size) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.document, w.window
}

// AddErrorListener registers l. Registering the same listener twice is a no-op.
// Listeners whose values cannot be compared are always treated as distinct.
func (w *Window) AddErrorListener(l ErrorListener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, existing := range w.listeners {
		if sameListener(existing, l) {
			return
		}
	}
	w.listeners = append(w.listeners, l)
}

// RemoveErrorListener unregisters l if present. A listener whose value
// cannot be compared is never matched, so use a pointer to remove one.
func (w *Window) RemoveErrorListener(l ErrorListener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, existing := range w.listeners {
		if sameListener(existing, l) {
			w.listeners = append(w.listeners[:i], w.listeners[i+1:]...)
			return
		}
	}
}

// sameListener reports whether a and b are the same listener without
// panicking on values that hold slices, maps or funcs.
func sameListener(a, b ErrorListener) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if !reflect.ValueOf(a).Comparable() || !reflect.ValueOf(b).Comparable() {
		return false
	}
	return a == b
}

// ListenerCount returns the number of registered listeners
func (w *Window) ListenerCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.listeners)
}

// Raise delivers ev to every listener and returns the first error a listener returned
func (w *Window) Raise(ev models.ErrorEvent) error {
	if ev.Type == "" {
		ev.Type = "error"
	}

	w.deliverMu.Lock()
	defer w.deliverMu.Unlock()

	w.mu.RLock()
	listeners := append([]ErrorListener(nil), w.listeners...)
	w.mu.RUnlock()

	var first error
	for _, l := range listeners {
		if err := l.HandleError(ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ReportError raises err as an uncaught error located at the caller
func (w *Window) ReportError(err error) error {
	if err == nil {
		return nil
	}
	ev := models.ErrorEvent{
		Type:    "error",
		Message: err.Error(),
		Error:   &models.EventError{Stack: getStackTrace(3)},
	}
	if _, file, line, ok := runtime.Caller(1); ok {
		ev.Filename = file
		ev.Lineno = line
	}
	return w.Raise(ev)
}

// Recover turns a panic into a "panic" error event. It must be deferred directly.
func (w *Window) Recover() {
	r := recover()
	if r == nil {
		return
	}

	ev := models.ErrorEvent{
		Type:    "panic",
		Message: panicMessage(r),
	}
	frames := panicFrames()
	if len(frames) > 0 {
		ev.Filename = frames[0].File
		ev.Lineno = frames[0].Line
	}
	ev.Error = &models.EventError{Stack: formatFrames(frames)}

	if err := w.Raise(ev); err != nil {
		w.logf("failed to report panic %q: %v", ev.Message, err)
	}
}

// Go runs fn on a new goroutine, reporting a panic instead of crashing
func (w *Window) Go(fn func()) {
	go func() {
		defer w.Recover()
		fn()
	}()
}

func (w *Window) logf(format string, args ...any) {
	w.mu.RLock()
	l := w.logger
	w.mu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}

func panicMessage(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(r)
}

// panicFrames returns the frames of the panicking goroutine starting at the
// function that panicked. Must be called from the deferred Recover.
func panicFrames() []runtime.Frame {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(1, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var out []runtime.Frame
	seenPanic := false
	for {
		f, more := frames.Next()
		if seenPanic && !strings.HasPrefix(f.Function, "runtime.") {
			out = append(out, f)
		}
		if f.Function == "runtime.gopanic" {
			seenPanic = true
		}
		if !more || len(out) >= maxStackDepth {
			break
		}
	}
	return out
}

const maxStackDepth = 10

// getStackTrace captures up to maxStackDepth frames above skip as
// "file:line function" lines
func getStackTrace(skip int) string {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])

	var out []runtime.Frame
	for {
		f, more := frames.Next()
		out = append(out, f)
		if !more {
			break
		}
	}
	return formatFrames(out)
}

func formatFrames(frames []runtime.Frame) string {
	lines := make([]string, 0, len(frames))
	for _, f := range frames {
		funcName := f.Function
		if funcName == "" {
			funcName = "unknown"
		}
		lines = append(lines, fmt.Sprintf("%s:%d %s", f.File, f.Line, funcName))
	}
	return strings.Join(lines, "\n")
}
