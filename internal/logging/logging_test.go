package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_RejectsUnknownLevel(t *testing.T) {
	_, err := Setup(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestSetup_Level(t *testing.T) {
	prevLevel, prevLogger := zerolog.GlobalLevel(), log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prevLevel)
		log.Logger = prevLogger
	})

	logger, err := Setup(Options{Level: "warn"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}

func TestNew_WritesConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	file := filepath.Join(t.TempDir(), "bot.log")

	logger := New(&console, file)
	logger.Info().Str("command", "ping").Msg("hello")

	assert.Contains(t, console.String(), "hello")
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"command":"ping"`)
}
