// internal/narrate/client.go
//
// HTTP client for the local text-generation backend.
// Responsibilities:
//   - One request/response exchange per call, no retries.
//   - Preserve the backend's prompt-of-JSON convention: the phase payload is
//     marshalled to a JSON string and nested as the "prompt" field of the
//     outer request body. The double encoding is the backend's contract;
//     do not flatten it.
//   - Normalize every failure into TransportError / MalformedResponseError.
//   - One-shot preflight probe with its own (shorter) timeout.

package narrate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Client issues generation calls against an Ollama-style /api/generate
// endpoint. Safe for use from a single session flow; it holds no mutable
// state beyond the shared http.Client.
type Client struct {
	url          string
	model        string
	httpClient   *http.Client
	probeTimeout time.Duration
}

// NewClient constructs a generation client. timeout bounds in-game calls;
// probeTimeout bounds the preflight check and should be strictly shorter.
func NewClient(url, model string, timeout, probeTimeout time.Duration) *Client {
	return &Client{
		url:          url,
		model:        model,
		httpClient:   &http.Client{Timeout: timeout},
		probeTimeout: probeTimeout,
	}
}

// generateRequest is the outer request body. Prompt holds the JSON-encoded
// phase payload as a plain string.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is the backend's reply body.
type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends one phase payload and returns the trimmed narration text.
// Exactly one attempt; every failure comes back as a TransportError or a
// MalformedResponseError for the caller to recover from.
func (c *Client) Generate(ctx context.Context, p Payload) (string, error) {
	prompt, err := json.Marshal(p)
	if err != nil {
		// Payload is plain data; this cannot happen with valid inputs.
		return "", &MalformedResponseError{Reason: "encode payload", Err: err}
	}

	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: string(prompt),
		Stream: false,
	})
	if err != nil {
		return "", &MalformedResponseError{Reason: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &TransportError{Status: resp.StatusCode}
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", &MalformedResponseError{Reason: "decode response", Err: err}
	}
	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", &MalformedResponseError{Reason: "blank narration"}
	}
	return text, nil
}

// Probe classifies the backend as available or not with a single short-timeout
// exchange using the given minimal payload. Any failure, of any class, means
// unavailable; the caller caches the verdict for the whole session.
func (c *Client) Probe(ctx context.Context, p Payload) bool {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	if _, err := c.Generate(ctx, p); err != nil {
		log.Warn().Err(err).Str("url", c.url).Msg("generation backend unavailable, narration will use fallback lines")
		return false
	}
	return true
}
