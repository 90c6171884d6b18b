// internal/config/config.go
//
// Configuration surface for the hi-lo narration server.
// Every knob is supplied through the environment (optionally via a .env file
// loaded in main). Defaults target a local Ollama instance and a local TTS
// server, so `go run .` works with no configuration at all.

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every externally supplied setting.
type Config struct {
	// HTTP surface
	Port         string `env:"PORT" envDefault:"5175"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`

	// Generation backend (Ollama-style /api/generate)
	GenerateURL     string        `env:"GENERATE_URL" envDefault:"http://127.0.0.1:11434/api/generate"`
	Model           string        `env:"MODEL" envDefault:"llama3.2"`
	GenerateTimeout time.Duration `env:"GENERATE_TIMEOUT" envDefault:"15s"`
	// Probe timeout is deliberately shorter than the in-game timeout so the
	// preflight reachability check fails fast.
	ProbeTimeout time.Duration `env:"PROBE_TIMEOUT" envDefault:"2s"`

	// Narrative tone
	DefaultSpice     string `env:"DEFAULT_SPICE" envDefault:"dry"`
	HotAfterAttempts int    `env:"HOT_AFTER_ATTEMPTS" envDefault:"6"`

	// Guessing range, inclusive on both ends.
	MinValue int `env:"MIN_VALUE" envDefault:"0"`
	MaxValue int `env:"MAX_VALUE" envDefault:"100"`

	// Speech backend
	SpeechURL     string        `env:"SPEECH_URL" envDefault:"http://127.0.0.1:5002/api/tts"`
	SpeechVolume  float64       `env:"SPEECH_VOLUME" envDefault:"0.8"`
	SpeechTimeout time.Duration `env:"SPEECH_TIMEOUT" envDefault:"10s"`
	PingTimeout   time.Duration `env:"PING_TIMEOUT" envDefault:"2s"`
}

// Load parses the environment into a Config and validates the range bounds.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MinValue >= cfg.MaxValue {
		return Config{}, fmt.Errorf("MIN_VALUE (%d) must be below MAX_VALUE (%d)", cfg.MinValue, cfg.MaxValue)
	}
	return cfg, nil
}
