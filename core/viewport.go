package core

import "fmt"

// Size is a width/height pair in CSS pixels
type Size struct {
	Width  int
	Height int
}

// ViewportSource reports the document element and window sizes
type ViewportSource interface {
	Viewport() (document, window Size)
}

// ViewportString picks the larger of the two sizes on each axis and renders
// it as "<width>x<height>". Either source may report zero when unavailable.
func ViewportString(document, window Size) string {
	return fmt.Sprintf("%dx%d", maxInt(document.Width, window.Width), maxInt(document.Height, window.Height))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
