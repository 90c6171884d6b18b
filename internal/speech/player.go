// internal/speech/player.go
//
// Best-effort speech playback for narration lines.
// Responsibilities:
//   - Fetch synthesized audio from a local TTS endpoint (GET ?text=...).
//   - Sniff the payload for a playable WAV container before handing it to
//     the output sink.
//   - Swallow every failure: speech never surfaces an error to the game and
//     never touches game state. Failures are logged and the call completes
//     as a no-op.
//   - Speak returns only once playback finishes, so callers that want strict
//     sequencing can wait on it; callers that don't simply run it on its own
//     goroutine.
//   - Ping offers a short-timeout reachability check (fetch + sniff, no
//     playback) for callers that want to know before committing.

package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// AudioDecodeError reports a payload that arrived intact but is not playable.
type AudioDecodeError struct {
	Reason string
}

func (e *AudioDecodeError) Error() string {
	return fmt.Sprintf("audio decode error: %s", e.Reason)
}

// Player fetches and plays synthesized speech.
type Player struct {
	url         string
	volume      float64
	httpClient  *http.Client
	pingTimeout time.Duration
	sink        Sink
}

// NewPlayer constructs a Player. timeout bounds full speak calls; pingTimeout
// bounds reachability checks. A nil sink falls back to the logging sink.
func NewPlayer(endpoint string, volume float64, timeout, pingTimeout time.Duration, sink Sink) *Player {
	if sink == nil {
		sink = NewLogSink()
	}
	return &Player{
		url:         endpoint,
		volume:      volume,
		httpClient:  &http.Client{Timeout: timeout},
		pingTimeout: pingTimeout,
		sink:        sink,
	}
}

// Speak fetches audio for text and plays it through the sink, returning when
// playback completes. Blank text is a no-op that completes immediately.
// Failures anywhere on the path are logged and swallowed.
func (p *Player) Speak(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	audio, err := p.fetch(ctx, text)
	if err != nil {
		log.Warn().Err(err).Msg("speech fetch failed, skipping playback")
		return
	}
	if err := p.sink.Play(ctx, audio, p.volume); err != nil {
		log.Warn().Err(err).Msg("speech playback failed")
	}
}

// Ping reports whether the TTS endpoint answers with playable audio within
// the short ping timeout. The audio is fetched and sniffed but not played.
func (p *Player) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.pingTimeout)
	defer cancel()
	_, err := p.fetch(ctx, "ready")
	return err == nil
}

// fetch retrieves and validates the audio payload for text.
func (p *Player) fetch(ctx context.Context, text string) ([]byte, error) {
	u := p.url + "?text=" + url.QueryEscape(text)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("tts status %d", resp.StatusCode)
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if !isWAV(audio) {
		return nil, &AudioDecodeError{Reason: "payload is not a RIFF/WAVE container"}
	}
	return audio, nil
}

// isWAV sniffs the RIFF/WAVE container magic.
func isWAV(b []byte) bool {
	return len(b) >= 12 && string(b[0:4]) == "RIFF" && string(b[8:12]) == "WAVE"
}
