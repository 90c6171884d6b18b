// internal/game/engine.go
//
// Search-range engine for a single hi-lo round.
// Responsibilities:
//   - Track the half-open candidate interval [low, high).
//   - Draw uniform guesses from the interval and count attempts.
//   - Apply "higher"/"lower" feedback, rejecting contradictions without
//     corrupting the last valid bounds.
//   - Track the terminal game-over flag (set once, on a confirmed guess).
//
// Notes:
//   - The inclusive configuration bounds [min, max] map to [min, max+1).
//   - A RangeConflictError means the player's answers rule out every number;
//     the caller decides how to surface that (the orchestrator narrates it).

package game

import (
	"errors"
	"math/rand/v2"
)

// ErrRoundOver is returned when feedback arrives after the round concluded.
var ErrRoundOver = errors.New("round is over")

// New constructs a tracker for the inclusive range [min, max].
// Callers must guarantee min <= max; config validation enforces min < max.
func New(min, max int) *Tracker {
	return &Tracker{bounds: Range{Low: min, High: max + 1}}
}

// WithRand swaps in a deterministic generator. Tests use this; production
// code leaves the default source in place.
func (t *Tracker) WithRand(r *rand.Rand) *Tracker {
	t.rng = r
	return t
}

// Bounds returns the current search interval.
func (t *Tracker) Bounds() Range { return t.bounds }

// Reset restores the tracker to its initial state over [min, max].
func (t *Tracker) Reset(min, max int) {
	t.bounds = Range{Low: min, High: max + 1}
	t.Guess = 0
	t.Attempt = 0
	t.Over = false
}

// ApplyHigher narrows the interval to (guess, high) after the player said the
// secret is higher than the current guess. If that would empty the interval
// the bounds are left untouched and a RangeConflictError is returned.
func (t *Tracker) ApplyHigher() error {
	if t.Over {
		return ErrRoundOver
	}
	next := t.Guess + 1
	if next >= t.bounds.High {
		return &RangeConflictError{Low: t.bounds.Low, High: t.bounds.High}
	}
	t.bounds.Low = next
	return nil
}

// ApplyLower narrows the interval to [low, guess) after the player said the
// secret is lower than the current guess. Contradictions behave as in
// ApplyHigher: bounds unchanged, RangeConflictError returned.
func (t *Tracker) ApplyLower() error {
	if t.Over {
		return ErrRoundOver
	}
	if t.bounds.Low >= t.Guess {
		return &RangeConflictError{Low: t.bounds.Low, High: t.bounds.High}
	}
	t.bounds.High = t.Guess
	return nil
}

// NextGuess draws a value uniformly from [low, high) and bumps the attempt
// counter. Must not be called once the round is over; callers gate on Over.
func (t *Tracker) NextGuess() int {
	t.Guess = t.bounds.Low + t.intN(t.bounds.Width())
	t.Attempt++
	return t.Guess
}

// Conclude marks the round finished after a confirmed correct guess.
// Terminal until Reset.
func (t *Tracker) Conclude() { t.Over = true }

// intN draws from the injected generator if present, else the global one.
func (t *Tracker) intN(n int) int {
	if t.rng != nil {
		return t.rng.IntN(n)
	}
	return rand.IntN(n)
}
