package indicators

import (
	"fmt"
	"math"
)

// RSI returns the relative strength index of closes using plain rolling means
// of gains and losses (not Wilder smoothing). The first close has no change
// and counts as a zero move.
//
// A window with no losses reads 100; a window with no movement at all is NaN.
func RSI(closes []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, fmt.Errorf("window must be positive, got %d", window)
	}

	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains[i] = d
		} else if d < 0 {
			losses[i] = -d
		}
	}

	avgGain, err := SMA(gains, window)
	if err != nil {
		return nil, err
	}
	avgLoss, err := SMA(losses, window)
	if err != nil {
		return nil, err
	}

	out := nanSlice(n)
	for i := range out {
		g, l := avgGain[i], avgLoss[i]
		switch {
		case math.IsNaN(g) || math.IsNaN(l):
		case l == 0 && g == 0:
		case l == 0:
			out[i] = 100
		default:
			out[i] = 100 - 100/(1+g/l)
		}
	}
	return out, nil
}
