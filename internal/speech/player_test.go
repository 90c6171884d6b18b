package speech_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pcarver/hilo/internal/speech"
)

// wavBytes is a minimal RIFF/WAVE container: enough for the sniffer.
func wavBytes() []byte {
	return append([]byte("RIFF\x24\x00\x00\x00WAVE"), []byte("fmt ")...)
}

// recordSink captures playback calls.
type recordSink struct {
	mu     sync.Mutex
	audio  [][]byte
	volume float64
}

func (s *recordSink) Play(ctx context.Context, audio []byte, volume float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audio = append(s.audio, audio)
	s.volume = volume
	return nil
}

func (s *recordSink) plays() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.audio)
}

func newPlayer(url string, sink speech.Sink) *speech.Player {
	return speech.NewPlayer(url, 0.8, 2*time.Second, 200*time.Millisecond, sink)
}

func TestSpeakBlankTextIsNoop(t *testing.T) {
	hits := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer ts.Close()

	sink := &recordSink{}
	p := newPlayer(ts.URL, sink)
	p.Speak(context.Background(), "")
	p.Speak(context.Background(), "   \t ")
	require.Zero(t, hits)
	require.Zero(t, sink.plays())
}

func TestSpeakFetchesEscapedTextAndPlays(t *testing.T) {
	var gotText string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotText = r.URL.Query().Get("text")
		_, _ = w.Write(wavBytes())
	}))
	defer ts.Close()

	sink := &recordSink{}
	p := newPlayer(ts.URL, sink)
	p.Speak(context.Background(), "Is it 42? Higher & lower welcome.")

	require.Equal(t, "Is it 42? Higher & lower welcome.", gotText)
	require.Equal(t, 1, sink.plays())
	require.Equal(t, 0.8, sink.volume)
}

func TestSpeakSwallowsTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no voice today", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	sink := &recordSink{}
	p := newPlayer(ts.URL, sink)
	p.Speak(context.Background(), "hello") // must not panic or error
	require.Zero(t, sink.plays())
}

func TestSpeakSwallowsUndecodableAudio(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not audio</html>"))
	}))
	defer ts.Close()

	sink := &recordSink{}
	p := newPlayer(ts.URL, sink)
	p.Speak(context.Background(), "hello")
	require.Zero(t, sink.plays())
}

func TestPingVerdicts(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(wavBytes())
	}))
	defer good.Close()
	require.True(t, newPlayer(good.URL, &recordSink{}).Ping(context.Background()))

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()
	require.False(t, newPlayer(dead.URL, &recordSink{}).Ping(context.Background()))
}

func TestPingFailsFastOnSlowBackend(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
			return
		}
		_, _ = w.Write(wavBytes())
	}))
	defer slow.Close()

	start := time.Now()
	require.False(t, newPlayer(slow.URL, &recordSink{}).Ping(context.Background()))
	require.Less(t, time.Since(start), time.Second)
}
