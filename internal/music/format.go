package music

import (
	"math"
	"strconv"
	"strings"
)

// formatBeats renders a beat count the way the reference diagnostics do:
// integral values keep a trailing ".0", others use the shortest
// round-tripping decimal, and very small or large magnitudes switch to
// an "E" exponent.
func formatBeats(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if f == 0 || (abs >= 1e-3 && abs < 1e7) {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.ContainsRune(s, '.') {
			s += ".0"
		}
		return s
	}
	s := strconv.FormatFloat(f, 'E', -1, 64)
	mant, exp, _ := strings.Cut(s, "E")
	if !strings.ContainsRune(mant, '.') {
		mant += ".0"
	}
	e, _ := strconv.Atoi(exp)
	return mant + "E" + strconv.Itoa(e)
}

func formatList(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}
