// Package indicators computes technical indicator series over bar data.
//
// Every function returns a slice aligned 1:1 with its input. Values that are
// not yet defined because the warmup window is incomplete are NaN; callers
// should check with math.IsNaN (or Ready) before comparing.
package indicators

import (
	"fmt"
	"math"
)

// Ready reports whether v holds a computed value.
func Ready(v float64) bool { return !math.IsNaN(v) }

func checkPeriod(name string, period int) error {
	if period <= 0 {
		return fmt.Errorf("%s: period must be positive, got %d", name, period)
	}
	return nil
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// CrossedAbove reports whether a moved from below b at i-1 to at-or-above b at i.
func CrossedAbove(a, b []float64, i int) bool {
	if i < 1 || !ready4(a[i-1], b[i-1], a[i], b[i]) {
		return false
	}
	return a[i-1] < b[i-1] && a[i] >= b[i]
}

// CrossedBelow reports whether a moved from above b at i-1 to at-or-below b at i.
func CrossedBelow(a, b []float64, i int) bool {
	if i < 1 || !ready4(a[i-1], b[i-1], a[i], b[i]) {
		return false
	}
	return a[i-1] > b[i-1] && a[i] <= b[i]
}

func ready4(a, b, c, d float64) bool {
	return Ready(a) && Ready(b) && Ready(c) && Ready(d)
}
