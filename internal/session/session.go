// internal/session/session.go
//
// Narration orchestrator for a single hi-lo round.
// Responsibilities:
//   - Drive the state machine: idle → introducing → awaiting feedback →
//     (higher | lower | correct) → awaiting feedback | concluded, with an
//     error-recovery detour when feedback empties the search range.
//   - On every phase entry, publish exactly one narration string: generated
//     text when the backend probe said it was reachable and the call
//     succeeds, the phase's fallback line otherwise. Never zero, never two.
//   - Cache the preflight verdict for the whole round: once the probe fails,
//     no further generation calls are made until replay.
//   - Hand each narration to the speaker on its own goroutine so a slow or
//     broken audio path never stalls the visible game text.
//   - Replay: cancel the previous round's in-flight speech, reset all state,
//     and run a fresh preflight probe exactly once.
//
// Notes:
//   - All control-surface methods serialize on one mutex; narration for
//     phase N is always emitted before the state for phase N+1 is computed.
//   - There are no fatal errors here: generation failures are logged and
//     recovered with fallback lines, range conflicts are narrated and leave
//     the bounds untouched.

package session

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pcarver/hilo/internal/game"
	"github.com/pcarver/hilo/internal/narrate"
)

// State names the orchestrator's position in the round lifecycle.
type State string

const (
	StateIdle          State = "idle"
	StateIntroducing   State = "introducing"
	StateAwaiting      State = "awaiting_feedback"
	StateErrorRecovery State = "error_recovery"
	StateConcluded     State = "concluded"
)

var (
	// ErrNotStarted is returned for feedback before the first Start.
	ErrNotStarted = errors.New("session not started")
	// ErrConcluded is returned for feedback after a win; replay to continue.
	ErrConcluded = errors.New("round concluded")
)

// Generator is the narration backend: one generation call plus the preflight
// probe. Satisfied by *narrate.Client; tests substitute fakes.
type Generator interface {
	Generate(ctx context.Context, p narrate.Payload) (string, error)
	Probe(ctx context.Context, p narrate.Payload) bool
}

// Speaker voices a narration line, returning when playback completes.
// Satisfied by *speech.Player.
type Speaker interface {
	Speak(ctx context.Context, text string)
}

// Publisher receives every narration emission, e.g. for a websocket feed.
type Publisher interface {
	Publish(ev Event)
}

// Event is one narration emission as seen by presentation clients.
type Event struct {
	Session string         `json:"session"`
	Phase   narrate.Phase  `json:"phase"`
	Text    string         `json:"text"`
	Source  narrate.Source `json:"source"`
	Guess   int            `json:"guess"`
	Attempt int            `json:"attempt"`
	State   State          `json:"state"`
}

// Outcome is what a control-surface call returns: the narrations emitted by
// that transition, in order, plus the resulting guess state.
type Outcome struct {
	Narrations []narrate.Result `json:"narrations"`
	Guess      int              `json:"guess"`
	Attempt    int              `json:"attempt"`
	State      State            `json:"state"`
}

// Options configures a session.
type Options struct {
	Min          int    // inclusive lower bound
	Max          int    // inclusive upper bound
	DefaultSpice string // tone below the attempt threshold
	HotAfter     int    // attempts before the tone escalates

	// Rand, when set, makes guess draws deterministic (tests).
	Rand *rand.Rand
}

// Session is the orchestrator for one round at a time. A replay abandons the
// previous round entirely; concurrent rounds are out of scope.
type Session struct {
	mu      sync.Mutex
	gen     Generator
	speaker Speaker
	pub     Publisher
	opts    Options

	id        string // epoch ID, fresh per start/replay
	tracker   *game.Tracker
	available bool // cached preflight verdict, written once per round
	state     State
	ctx       context.Context // round-scoped; cancelled on replay/close
	cancel    context.CancelFunc
}

// New constructs an idle session. Start begins the first round.
func New(gen Generator, speaker Speaker, pub Publisher, opts Options) *Session {
	t := game.New(opts.Min, opts.Max)
	if opts.Rand != nil {
		t.WithRand(opts.Rand)
	}
	return &Session{
		gen:     gen,
		speaker: speaker,
		pub:     pub,
		opts:    opts,
		tracker: t,
		state:   StateIdle,
	}
}

// Start begins a round: preflight probe, intro narration, first guess, first
// ask narration. Calling Start on a live round restarts it, like Replay.
func (s *Session) Start(ctx context.Context) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restart(ctx)
}

// Replay abandons the current round (cancelling any in-flight speech), resets
// every piece of round state, re-runs the preflight probe exactly once, and
// opens a fresh round.
func (s *Session) Replay(ctx context.Context) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.Info().Str("session", s.id).Msg("replay requested")
	return s.restart(ctx)
}

// restart implements Start/Replay under the session lock.
func (s *Session) restart(ctx context.Context) Outcome {
	if s.cancel != nil {
		// Abandon the previous round's pending speech. A late completion
		// only ever observes the cancelled context, never the new round.
		s.cancel()
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.id = uuid.NewString()
	s.tracker.Reset(s.opts.Min, s.opts.Max)

	s.state = StateIntroducing
	s.available = s.gen.Probe(ctx, narrate.Build(narrate.PhaseIntro, 0, 0, s.promptOptions()))
	log.Info().Str("session", s.id).Bool("backendAvailable", s.available).Msg("round started")

	intro := s.emit(ctx, narrate.PhaseIntro)
	s.tracker.NextGuess()
	s.state = StateAwaiting
	ask := s.emit(ctx, narrate.PhaseAsk)
	return s.outcome(intro, ask)
}

// ApplyHigher records that the secret is above the current guess.
func (s *Session) ApplyHigher(ctx context.Context) (Outcome, error) {
	return s.feedback(ctx, func() error { return s.tracker.ApplyHigher() })
}

// ApplyLower records that the secret is below the current guess.
func (s *Session) ApplyLower(ctx context.Context) (Outcome, error) {
	return s.feedback(ctx, func() error { return s.tracker.ApplyLower() })
}

// feedback applies a range mutation and narrates the consequence: the next
// ask on success, the error phase on a conflict (bounds held so the player
// can correct their previous answer).
func (s *Session) feedback(ctx context.Context, apply func() error) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gate(); err != nil {
		return Outcome{}, err
	}

	if err := apply(); err != nil {
		var conflict *game.RangeConflictError
		if errors.As(err, &conflict) {
			log.Warn().Str("session", s.id).Int("low", conflict.Low).Int("high", conflict.High).
				Msg("contradictory feedback, holding range")
			s.state = StateErrorRecovery
			res := s.emit(ctx, narrate.PhaseError)
			s.state = StateAwaiting
			return s.outcome(res), nil
		}
		return Outcome{}, err
	}

	s.tracker.NextGuess()
	res := s.emit(ctx, narrate.PhaseAsk)
	return s.outcome(res), nil
}

// ConfirmCorrect ends the round: win narration, then game over. No further
// guesses are drawn until replay.
func (s *Session) ConfirmCorrect(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gate(); err != nil {
		return Outcome{}, err
	}
	res := s.emit(ctx, narrate.PhaseWin)
	s.tracker.Conclude()
	s.state = StateConcluded
	log.Info().Str("session", s.id).Int("attempts", s.tracker.Attempt).Msg("round won")
	return s.outcome(res), nil
}

// Snapshot is a read-only view for the state endpoint.
type Snapshot struct {
	Session   string `json:"session"`
	State     State  `json:"state"`
	Guess     int    `json:"guess"`
	Attempt   int    `json:"attempt"`
	Available bool   `json:"backendAvailable"`
}

// Current returns the session's current view.
func (s *Session) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Session:   s.id,
		State:     s.state,
		Guess:     s.tracker.Guess,
		Attempt:   s.tracker.Attempt,
		Available: s.available,
	}
}

// Close abandons the round and any in-flight speech.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.state = StateIdle
}

// gate rejects feedback outside a live round.
func (s *Session) gate() error {
	switch s.state {
	case StateIdle:
		return ErrNotStarted
	case StateConcluded:
		return ErrConcluded
	}
	return nil
}

// emit produces the single narration for the current phase entry. Generation
// is attempted only when the cached preflight verdict allows it; any failure
// falls back to the phase's deterministic line. The result is published to
// the event feed and voiced asynchronously before being returned.
func (s *Session) emit(ctx context.Context, phase narrate.Phase) narrate.Result {
	guess, attempt := s.tracker.Guess, s.tracker.Attempt

	res := narrate.Result{
		Text:   narrate.Fallback(phase, guess, attempt),
		Source: narrate.SourceFallback,
	}
	if s.available {
		text, err := s.gen.Generate(ctx, narrate.Build(phase, guess, attempt, s.promptOptions()))
		if err != nil {
			log.Warn().Err(err).Str("session", s.id).Str("phase", string(phase)).
				Msg("generation failed, narrating fallback")
		} else {
			res = narrate.Result{Text: text, Source: narrate.SourceGenerated}
		}
	}

	if s.pub != nil {
		s.pub.Publish(Event{
			Session: s.id,
			Phase:   phase,
			Text:    res.Text,
			Source:  res.Source,
			Guess:   guess,
			Attempt: attempt,
			State:   s.state,
		})
	}

	if s.speaker != nil {
		// Fire and forget on the round context: playback never blocks the
		// game, and replay cancels whatever is still in flight.
		roundCtx, text := s.ctx, res.Text
		go s.speaker.Speak(roundCtx, text)
	}
	return res
}

// promptOptions adapts session config to the payload builder.
func (s *Session) promptOptions() narrate.Options {
	return narrate.Options{DefaultSpice: s.opts.DefaultSpice, HotAfter: s.opts.HotAfter}
}

// outcome snapshots the post-transition state alongside the emissions.
func (s *Session) outcome(narrations ...narrate.Result) Outcome {
	return Outcome{
		Narrations: narrations,
		Guess:      s.tracker.Guess,
		Attempt:    s.tracker.Attempt,
		State:      s.state,
	}
}
