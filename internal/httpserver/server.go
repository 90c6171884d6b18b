// internal/httpserver/server.go
//
// HTTP wiring for the hi-lo narration backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Game endpoints: POST /game/new, POST /game/feedback, POST /game/replay,
//     GET /game/state.
//   - Websocket narration feed: GET /game/events.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled so a browser client works.
//   - The engine owns all game rules; handlers only translate HTTP to the
//     session's control surface and map its sentinel errors to statuses.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pcarver/hilo/internal/session"
)

// Server bundles the router, the single game session, and the event hub.
type Server struct {
	r    *chi.Mux
	sess *session.Session
	hub  *Hub
}

// New constructs a Server, installs middleware, and registers routes.
// The hub must be the same one the session publishes to.
func New(sess *session.Session, hub *Hub) *Server {
	s := &Server{r: chi.NewRouter(), sess: sess, hub: hub}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(30 * time.Second)) // bound handler time (generation can be slow)
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFromEnv)                     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"hilo","endpoints":["/health","POST /game/new","POST /game/feedback","POST /game/replay","GET /game/state","GET /game/events"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// --- game ---
	s.r.Post("/game/new", s.handleNew)
	s.r.Post("/game/feedback", s.handleFeedback)
	s.r.Post("/game/replay", s.handleReplay)
	s.r.Get("/game/state", s.handleState)
	s.r.Get("/game/events", s.handleEvents)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ GAME ---------------------------------------

// handleNew starts (or restarts) the round and returns the opening narrations.
func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	out := s.sess.Start(r.Context())
	_ = json.NewEncoder(w).Encode(out)
}

// feedbackReq is the payload for POST /game/feedback.
type feedbackReq struct {
	Signal string `json:"signal"` // "higher" | "lower" | "correct"
}

// handleFeedback applies one player answer and returns the narration it
// produced (ask, win, or the error phase on contradictory feedback).
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}

	var (
		out session.Outcome
		err error
	)
	switch strings.ToLower(strings.TrimSpace(req.Signal)) {
	case "higher":
		out, err = s.sess.ApplyHigher(r.Context())
	case "lower":
		out, err = s.sess.ApplyLower(r.Context())
	case "correct":
		out, err = s.sess.ConfirmCorrect(r.Context())
	default:
		http.Error(w, `{"error":"unknown_signal"}`, http.StatusBadRequest)
		return
	}
	if err != nil {
		if errors.Is(err, session.ErrNotStarted) || errors.Is(err, session.ErrConcluded) {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusConflict)
			return
		}
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(out)
}

// handleReplay resets the round and re-runs the preflight probe.
func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	out := s.sess.Replay(r.Context())
	_ = json.NewEncoder(w).Encode(out)
}

// handleState reports the current session view.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(s.sess.Current())
}
