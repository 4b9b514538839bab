package market

import (
	"fmt"
	"math/rand"
)

// Window positions a run inside a series: ViewStart is the first bar shown as
// history and SimStart is the bar the simulation begins on.
type Window struct {
	ViewStart int
	SimStart  int
}

// PickStart chooses a window uniformly among the offsets that leave viewLen
// bars of history followed by minSimLen simulated bars. When the series is
// shorter than that it falls back to the earliest window. A series that cannot
// hold any simulated bar after the history fails with ErrInsufficientHistory.
func PickStart(n, viewLen, minSimLen int, rng *rand.Rand) (Window, error) {
	if viewLen < 0 || minSimLen < 0 {
		return Window{}, fmt.Errorf("negative window (view %d, sim %d)", viewLen, minSimLen)
	}
	if n <= viewLen {
		return Window{}, fmt.Errorf("%d bars, need more than %d: %w", n, viewLen, ErrInsufficientHistory)
	}

	required := viewLen + minSimLen
	if n < required {
		return Window{ViewStart: 0, SimStart: viewLen}, nil
	}

	start := rng.Intn(n - required + 1)
	return Window{ViewStart: start, SimStart: start + viewLen}, nil
}

// PrepareRun picks a window and cuts the series down to it. The returned
// series starts at the window's history and the returned index is the first
// simulated bar within it.
func PrepareRun(s *Series, viewLen, minSimLen int, rng *rand.Rand) (*Series, int, error) {
	w, err := PickStart(s.Len(), viewLen, minSimLen, rng)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", s.Ticker, err)
	}
	cut := s.Slice(w.ViewStart, w.ViewStart+viewLen+minSimLen)
	return cut, w.SimStart - w.ViewStart, nil
}
