package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DiscordToken      string        `env:"DISCORD_TOKEN,required,notEmpty"`
	StoragePath       string        `env:"STORAGE_PATH" envDefault:"datastore.json"`
	CommandPrefix     string        `env:"COMMAND_PREFIX" envDefault:"!"`
	InitSlashCommands bool          `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile           string        `env:"LOG_FILE"`
	CommandTimeout    time.Duration `env:"COMMAND_TIMEOUT" envDefault:"10s"`
	KeepAliveTTL      time.Duration `env:"KEEPALIVE_TTL" envDefault:"0s"`
	PingCooldown      string        `env:"PING_COOLDOWN" envDefault:"1/4"`
}

// New reads .env (when present) and the process environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, falling back to system environment variables")
	}
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.CommandPrefix == "" {
		return nil, fmt.Errorf("parse config: COMMAND_PREFIX must not be empty")
	}
	if cfg.CommandTimeout <= 0 {
		return nil, fmt.Errorf("parse config: COMMAND_TIMEOUT must be positive, got %s", cfg.CommandTimeout)
	}
	return &cfg, nil
}
