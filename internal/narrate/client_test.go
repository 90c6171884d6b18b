package narrate_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pcarver/hilo/internal/narrate"
)

func newTestClient(url string) *narrate.Client {
	return narrate.NewClient(url, "test-model", 2*time.Second, 200*time.Millisecond)
}

func TestGenerateSuccessPreservesDoubleEncoding(t *testing.T) {
	var captured struct {
		Model  string `json:"model"`
		Prompt string `json:"prompt"`
		Stream bool   `json:"stream"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"response":"  A bold move.  "}`))
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	p := narrate.Build(narrate.PhaseAsk, 42, 3, narrate.Options{DefaultSpice: "dry", HotAfter: 6})
	text, err := c.Generate(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, "A bold move.", text)

	// Outer envelope.
	require.Equal(t, "test-model", captured.Model)
	require.False(t, captured.Stream)

	// The prompt field is itself a JSON document, not a flattened body.
	var inner narrate.Payload
	require.NoError(t, json.Unmarshal([]byte(captured.Prompt), &inner))
	require.Equal(t, "ask", inner.Mode)
	require.NotNil(t, inner.Guess)
	require.Equal(t, 42, *inner.Guess)
	require.NotNil(t, inner.Attempt)
	require.Equal(t, 3, *inner.Attempt)
	require.Equal(t, "dry", inner.Spice)
}

func TestGenerateNonSuccessStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Generate(context.Background(), narrate.Payload{Mode: "intro", Spice: "dry"})
	var te *narrate.TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, http.StatusInternalServerError, te.Status)
}

func TestGenerateMalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`this is not json`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Generate(context.Background(), narrate.Payload{Mode: "intro", Spice: "dry"})
	var me *narrate.MalformedResponseError
	require.ErrorAs(t, err, &me)
}

func TestGenerateBlankNarration(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"   "}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Generate(context.Background(), narrate.Payload{Mode: "intro", Spice: "dry"})
	var me *narrate.MalformedResponseError
	require.ErrorAs(t, err, &me)
}

func TestGenerateUnreachableBackend(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // nothing listening any more

	_, err := newTestClient(ts.URL).Generate(context.Background(), narrate.Payload{Mode: "intro", Spice: "dry"})
	var te *narrate.TransportError
	require.ErrorAs(t, err, &te)
	require.Zero(t, te.Status)
}

func TestGenerateTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()

	c := narrate.NewClient(ts.URL, "test-model", 100*time.Millisecond, 50*time.Millisecond)
	_, err := c.Generate(context.Background(), narrate.Payload{Mode: "intro", Spice: "dry"})
	var te *narrate.TransportError
	require.ErrorAs(t, err, &te)
}

func TestProbeVerdicts(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"ready"}`))
	}))
	defer good.Close()
	require.True(t, newTestClient(good.URL).Probe(context.Background(), narrate.Payload{Mode: "intro", Spice: "dry"}))

	blank := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":""}`))
	}))
	defer blank.Close()
	require.False(t, newTestClient(blank.URL).Probe(context.Background(), narrate.Payload{Mode: "intro", Spice: "dry"}))
}

// The probe must fail fast on a slow backend: its timeout is its own, shorter
// than the in-game one.
func TestProbeUsesShortTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
			return
		}
		_, _ = w.Write([]byte(`{"response":"late"}`))
	}))
	defer slow.Close()

	c := narrate.NewClient(slow.URL, "test-model", 5*time.Second, 100*time.Millisecond)
	start := time.Now()
	require.False(t, c.Probe(context.Background(), narrate.Payload{Mode: "intro", Spice: "dry"}))
	require.Less(t, time.Since(start), time.Second)
}
