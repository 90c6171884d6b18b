// internal/speech/sink.go
//
// Output sink abstraction. The actual audio device driver is an external
// collaborator; the engine only needs a blocking "play until done" call.

package speech

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Sink renders decoded audio. Play must return once playback has finished
// (or ctx is cancelled); the Player relies on that for completion ordering.
type Sink interface {
	Play(ctx context.Context, audio []byte, volume float64) error
}

// logSink is the default sink: it acknowledges the payload and discards it.
// Useful for headless deployments and tests; a real deployment wires a sink
// backed by the host's audio device.
type logSink struct{}

// NewLogSink returns the discarding sink.
func NewLogSink() Sink {
	return logSink{}
}

func (logSink) Play(ctx context.Context, audio []byte, volume float64) error {
	log.Debug().Int("bytes", len(audio)).Float64("volume", volume).Msg("discarding audio payload (no output device)")
	return nil
}
