// internal/game/types.go
//
// Core type definitions for the hi-lo guessing engine.
// Defines:
//   - Range: the current half-open search interval.
//   - Tracker: state for a single in-progress or finished round.
//   - RangeConflictError: signalled when player feedback empties the interval.

package game

import (
	"fmt"
	"math/rand/v2"
)

// Range is the current search interval: Low inclusive, High exclusive.
// A valid range always satisfies Low < High.
type Range struct {
	Low  int // smallest value still possible
	High int // one past the largest value still possible
}

// Width reports how many candidate values remain.
func (r Range) Width() int { return r.High - r.Low }

// Tracker holds the state of a single guessing round.
// It is pure bookkeeping: no I/O, no clock, no logging.
type Tracker struct {
	bounds  Range
	rng     *rand.Rand // nil means the package-global generator
	Guess   int        // most recent guess drawn from bounds
	Attempt int        // number of guesses drawn so far
	Over    bool       // true once the player confirmed a correct guess
}

// RangeConflictError reports contradictory feedback: accepting the answer
// would leave no candidate values. The bounds it carries are the last valid
// ones, which remain in effect.
type RangeConflictError struct {
	Low  int
	High int
}

func (e *RangeConflictError) Error() string {
	return fmt.Sprintf("range conflict: feedback empties interval [%d,%d)", e.Low, e.High)
}
