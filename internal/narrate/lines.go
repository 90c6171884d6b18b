// internal/narrate/lines.go — centralises every fallback line.
// These are the deterministic strings shown whenever generation is skipped or
// fails. Edit this file to change the offline personality; keep lines short,
// the TTS engine handles inflection.

package narrate

import "fmt"

func LineIntro() string {
	return "I'm thinking of your number. Answer higher, lower, or correct."
}

func LineAsk(guess, attempt int) string {
	return fmt.Sprintf("Guess %d: is it %d?", attempt, guess)
}

func LineWin(guess, attempt int) string {
	return fmt.Sprintf("It's %d. Solved on try %d.", guess, attempt)
}

func LineError() string {
	return "Your answers rule out every number. Answer that one again."
}

// Fallback returns the deterministic line for a phase using the given state.
func Fallback(phase Phase, guess, attempt int) string {
	switch phase {
	case PhaseIntro:
		return LineIntro()
	case PhaseAsk:
		return LineAsk(guess, attempt)
	case PhaseWin:
		return LineWin(guess, attempt)
	default:
		return LineError()
	}
}
