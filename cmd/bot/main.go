// Package main is the entry point for the Mafia host bot.
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"mafia-host-bot/internal/bot"
	"mafia-host-bot/internal/config"
	"mafia-host-bot/internal/scenario"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	// Open the scenario store and verify it is readable up front.
	store := scenario.NewFileStore(cfg.Scenarios.File)
	scenarios, err := store.Load()
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.Scenarios.File).Msg("Failed to load scenarios")
	}
	log.Info().
		Int("scenario_count", len(scenarios)).
		Str("file", cfg.Scenarios.File).
		Msg("Scenario store ready")

	// Initialize bot
	telegramBot, err := bot.New(&bot.Dependencies{
		Config: cfg,
		Store:  store,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start bot in a goroutine
	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Graceful shutdown
	telegramBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}
