package core

import (
	"errorwatch/models"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// ConsoleSink prints a fixed multi-line report for each record
type ConsoleSink struct {
	out    io.Writer
	header *color.Color
	label  *color.Color
}

// NewConsoleSink writes to out, or os.Stderr when out is nil.
// Colours are only used on the process's own terminal streams.
func NewConsoleSink(out io.Writer) *ConsoleSink {
	if out == nil {
		out = os.Stderr
	}
	s := &ConsoleSink{
		out:    out,
		header: color.New(color.FgRed, color.Bold),
		label:  color.New(color.FgYellow),
	}
	if out != os.Stderr && out != os.Stdout {
		s.header.DisableColor()
		s.label.DisableColor()
	}
	return s
}

// Write prints rec. Output errors are ignored.
func (s *ConsoleSink) Write(rec *models.ErrorRecord) {
	var b strings.Builder

	s.header.Fprintf(&b, "[errorwatch] Uncaught %s: %s\n", rec.Type, rec.Message)
	s.field(&b, "Type", rec.Type)
	s.field(&b, "Message", rec.Message)
	s.label.Fprintf(&b, "%-12s\n", "Stack trace:")
	if rec.StackTrace == "" {
		b.WriteString("  (none)\n")
	} else {
		for _, frame := range strings.Split(rec.StackTrace, "\n") {
			b.WriteString("  " + frame + "\n")
		}
	}
	s.field(&b, "Path", rec.Path)
	s.field(&b, "Line", fmt.Sprint(rec.Line))
	s.field(&b, "Column", fmt.Sprint(rec.Column))
	s.field(&b, "Debug", fmt.Sprintf("%s:%d", rec.Path, rec.Line))
	s.field(&b, "Viewport", rec.Viewport)
	s.field(&b, "Time spent", FormatDuration(rec.TimeSpend))
	s.field(&b, "Datetime", rec.Datetime)

	_, _ = io.WriteString(s.out, b.String())
}

func (s *ConsoleSink) field(b *strings.Builder, name, value string) {
	s.label.Fprintf(b, "%-12s", name+":")
	b.WriteString(" " + value + "\n")
}
