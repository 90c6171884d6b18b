// internal/narrate/payload.go
//
// Phase payload construction for the generation backend.
// Maps a narrative phase plus the current guess state to the exact JSON shape
// the backend expects, including the "spice" tone tag that escalates once the
// round drags past a configured attempt threshold.

package narrate

// Phase names a point in the round's narrative lifecycle.
type Phase string

const (
	PhaseIntro Phase = "intro"
	PhaseAsk   Phase = "ask"
	PhaseWin   Phase = "win"
	PhaseError Phase = "error"
)

// SpiceHot is the escalated tone used after too many attempts.
const SpiceHot = "hot"

// Payload is the structured prompt for one phase. Guess and Attempt are
// pointers because the intro and error shapes omit them entirely (the backend
// distinguishes absent from zero).
type Payload struct {
	Mode    string `json:"mode"`
	Guess   *int   `json:"guess,omitempty"`
	Attempt *int   `json:"attempt,omitempty"`
	Spice   string `json:"spice"`
}

// Options carries the tone configuration for payload building.
type Options struct {
	DefaultSpice string // tone tag used below the threshold
	HotAfter     int    // attempt count at which the tone flips to hot
}

// Build is a total pure function from phase + state to payload.
// Ask and win carry guess/attempt; intro and error carry only the tone.
func Build(phase Phase, guess, attempt int, opt Options) Payload {
	p := Payload{Mode: string(phase), Spice: spiceFor(attempt, opt)}
	switch phase {
	case PhaseAsk, PhaseWin:
		g, a := guess, attempt
		p.Guess = &g
		p.Attempt = &a
	}
	return p
}

// spiceFor picks the tone tag for the given attempt count.
func spiceFor(attempt int, opt Options) string {
	if opt.HotAfter > 0 && attempt >= opt.HotAfter {
		return SpiceHot
	}
	return opt.DefaultSpice
}
