package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
)

const bannerDefaultWidth = 60

// PrintBanner renders a box-drawing banner around a title using the default width.
func PrintBanner(title string) {
	writeBanner(os.Stdout, title, bannerDefaultWidth)
}

// writeBanner renders the banner to w. If the title is wider than the inner
// width, the banner grows to fit it.
func writeBanner(w io.Writer, title string, width int) {
	if width < 10 {
		width = bannerDefaultWidth
	}

	inner := width - 2
	if len(title)+2 > inner {
		inner = len(title) + 2
	}

	edge := strings.Repeat("═", inner)
	fmt.Fprintf(w, "╔%s╗\n", edge)
	fmt.Fprintf(w, "║%s║\n", padCenter(title, inner))
	fmt.Fprintf(w, "╚%s╝\n", edge)
}

func padCenter(text string, width int) string {
	if len(text) >= width {
		return text[:width]
	}
	padTotal := width - len(text)
	left := padTotal / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", padTotal-left)
}
