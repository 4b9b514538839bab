// Package indicators computes the derived columns carried on every daily bar:
// simple moving averages and a rolling-mean RSI.
//
// All functions take a close series in chronological order and return a slice
// of the same length. Positions inside the warm-up window hold NaN so callers
// can drop them, the way the series loader does.
package indicators

import "math"

// MAPeriods are the moving averages attached to every bar.
var MAPeriods = []int{5, 10, 20, 60, 120}

// RSIWindow is the look-back of the RSI column.
const RSIWindow = 14

// Ready reports whether every value is a real number.
func Ready(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
