// cmd/discord/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"command-plugins/internal/commands"
	"command-plugins/internal/config"
	"command-plugins/internal/cooldown"
	"command-plugins/internal/discord"
	"command-plugins/internal/keepalive"
	"command-plugins/internal/logging"
	"command-plugins/internal/storage"
	"command-plugins/pkg/cmd"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("Bot exited with error")
		os.Exit(1)
	}
	log.Info().Msg("Discord bot exited cleanly")
}

func run() error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	if _, err := logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile}); err != nil {
		return err
	}
	log.Info().Msg("Starting command-plugins bot...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close storage")
		}
	}()

	cooldowns := cooldown.NewTracker()
	defer cooldowns.Close()

	guard := keepalive.New()
	fallback := func(src keepalive.Source, v any) {
		log.Error().Str("source", string(src)).Interface("value", v).Msg("Failure intercepted while keep-alive was armed")
	}

	registry := cmd.NewRegistry()
	err = commands.Register(registry, commands.Deps{
		Config:    cfg,
		Storage:   store,
		Cooldowns: cooldowns,
		Guard:     guard,
		Fallback:  fallback,
	})
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}

	bot, err := discord.New(cfg, store, registry, guard)
	if err != nil {
		return err
	}
	return bot.Run(ctx)
}
