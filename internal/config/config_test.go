package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "token", cfg.DiscordToken)
	assert.Equal(t, "datastore.json", cfg.StoragePath)
	assert.Equal(t, "!", cfg.CommandPrefix)
	assert.True(t, cfg.InitSlashCommands)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.CommandTimeout)
	assert.Zero(t, cfg.KeepAliveTTL)
	assert.Equal(t, "1/4", cfg.PingCooldown)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("COMMAND_PREFIX", "?")
	t.Setenv("INIT_SLASH_COMMANDS", "false")
	t.Setenv("COMMAND_TIMEOUT", "2s")
	t.Setenv("KEEPALIVE_TTL", "1h")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "?", cfg.CommandPrefix)
	assert.False(t, cfg.InitSlashCommands)
	assert.Equal(t, 2*time.Second, cfg.CommandTimeout)
	assert.Equal(t, time.Hour, cfg.KeepAliveTTL)
}

func TestParse_MissingToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")

	_, err := Parse()
	assert.Error(t, err)
}

func TestParse_InvalidTimeout(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("COMMAND_TIMEOUT", "0s")

	_, err := Parse()
	assert.Error(t, err)
}

func TestCategoryWeight(t *testing.T) {
	assert.Less(t, CategoryWeight("🕯️ Information"), CategoryWeight("🛠️ Maintenance"))
	assert.Equal(t, 1000, CategoryWeight("nope"))
}
