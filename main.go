package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pcarver/hilo/internal/config"
	"github.com/pcarver/hilo/internal/httpserver"
	"github.com/pcarver/hilo/internal/narrate"
	"github.com/pcarver/hilo/internal/session"
	"github.com/pcarver/hilo/internal/speech"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	gen := narrate.NewClient(cfg.GenerateURL, cfg.Model, cfg.GenerateTimeout, cfg.ProbeTimeout)
	player := speech.NewPlayer(cfg.SpeechURL, cfg.SpeechVolume, cfg.SpeechTimeout, cfg.PingTimeout, nil)

	// Speech is best-effort; the ping is informational only.
	if player.Ping(context.Background()) {
		log.Info().Str("url", cfg.SpeechURL).Msg("speech backend reachable")
	} else {
		log.Warn().Str("url", cfg.SpeechURL).Msg("speech backend unreachable, narration will be silent")
	}

	hub := httpserver.NewHub()
	sess := session.New(gen, player, hub, session.Options{
		Min:          cfg.MinValue,
		Max:          cfg.MaxValue,
		DefaultSpice: cfg.DefaultSpice,
		HotAfter:     cfg.HotAfterAttempts,
	})
	defer sess.Close()

	srv := httpserver.New(sess, hub)
	log.Info().Str("port", cfg.Port).Str("model", cfg.Model).Msg("starting hilo server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
