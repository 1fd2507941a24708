package discord

import (
	"context"
	"fmt"
	"strings"

	"command-plugins/internal/command"
	"command-plugins/pkg/cmd"
	"command-plugins/pkg/retrylimit"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// parseCommand splits "!roll 2d6 +1" or "<@bot> roll 2d6" into a command name
// and arguments.
func parseCommand(content, prefix, botID string) (name string, args []string, ok bool) {
	content = strings.TrimSpace(content)
	switch {
	case botID != "" && strings.HasPrefix(content, "<@"+botID+">"):
		content = strings.TrimPrefix(content, "<@"+botID+">")
	case botID != "" && strings.HasPrefix(content, "<@!"+botID+">"):
		content = strings.TrimPrefix(content, "<@!"+botID+">")
	case prefix != "" && strings.HasPrefix(content, prefix):
		content = strings.TrimPrefix(content, prefix)
	default:
		return "", nil, false
	}

	fields := strings.Fields(content)
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

// definitions collects the slash definitions of every registered command.
func definitions(r *cmd.Registry) []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, c := range r.GetAll() {
		sp, ok := cmd.Root(c).(command.SlashProvider)
		if !ok {
			continue
		}
		def := sp.SlashDefinition()
		if def == nil {
			continue
		}
		if def.Type == 0 {
			def.Type = discordgo.ChatApplicationCommand
		}
		defs = append(defs, def)
	}
	return defs
}

const registerAttempts = 5

var registerLimiter = retrylimit.NewAdaptiveLimiter(1, 0.2, 5, 0.5, 0.5)

// registerCommands overwrites the global slash commands when the local set
// differs from what was last pushed.
func (b *Bot) registerCommands(s *discordgo.Session, appID string) error {
	defs := definitions(b.registry)
	hash := hashCommands(defs)

	previous, err := b.storage.CommandsHash()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read command hash")
	}
	if previous == hash {
		log.Info().Int("commands", len(defs)).Msg("Slash commands unchanged")
		return nil
	}

	err = retrylimit.WithRetryMax(context.Background(), func() error {
		_, err := s.ApplicationCommandBulkOverwrite(appID, "", defs)
		return err
	}, registerLimiter, registerAttempts)
	if err != nil {
		return fmt.Errorf("overwrite slash commands: %w", err)
	}
	if err := b.storage.SetCommandsHash(hash); err != nil {
		log.Warn().Err(err).Msg("Failed to save command hash")
	}
	log.Info().Int("commands", len(defs)).Msg("Slash commands registered")
	return nil
}
