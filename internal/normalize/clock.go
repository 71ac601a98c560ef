package normalize

import "github.com/jonboulle/clockwork"

// clock is the package time source, used for the "no year printed on the
// calendar" heuristic. Tests freeze it via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
