package core

import (
	"strconv"
	"strings"
)

type durationUnit struct {
	label   string
	modulus int64
}

// Smallest first; the last unit is not reduced by its modulus.
var durationUnits = []durationUnit{
	{"milliseconds", 1000},
	{"seconds", 60},
	{"minutes", 60},
	{"hours", 24},
	{"days", 31},
}

const zeroDuration = "0 milliseconds"

// splitDuration breaks ms into per-unit components, smallest unit first
func splitDuration(ms int64) []int64 {
	if ms < 0 {
		ms = 0
	}
	parts := make([]int64, len(durationUnits))
	rest := ms
	for i, u := range durationUnits {
		if i == len(durationUnits)-1 {
			parts[i] = rest
			break
		}
		parts[i] = rest % u.modulus
		rest /= u.modulus
	}
	return parts
}

// FormatDuration renders a millisecond count as e.g. "1 day, 2 hours, 1 second".
// Zero components are omitted; a zero duration renders as "0 milliseconds".
func FormatDuration(ms int64) string {
	parts := splitDuration(ms)

	rendered := make([]string, 0, len(parts))
	for i := len(parts) - 1; i >= 0; i-- {
		v := parts[i]
		if v == 0 {
			continue
		}
		label := durationUnits[i].label
		if v == 1 {
			label = label[:len(label)-1]
		}
		rendered = append(rendered, strconv.FormatInt(v, 10)+" "+label)
	}

	if len(rendered) == 0 {
		return zeroDuration
	}
	return strings.Join(rendered, ", ")
}
