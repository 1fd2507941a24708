// Package discord connects the command registry to a Discord gateway session.
package discord

import (
	"context"
	"fmt"

	"command-plugins/internal/command"
	"command-plugins/internal/config"
	"command-plugins/internal/keepalive"
	"command-plugins/internal/storage"
	"command-plugins/pkg/cmd"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Intents the bot identifies with. Guild state backs permission and channel
// checks; message content is needed for prefix commands.
const Intents = discordgo.IntentGuilds |
	discordgo.IntentGuildMessages |
	discordgo.IntentDirectMessages |
	discordgo.IntentMessageContent

type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	storage  *storage.Storage
	registry *cmd.Registry
	guard    *keepalive.Guard
	// ctx is handed to every invocation; Run replaces it with its own.
	ctx context.Context
}

func New(cfg *config.Config, store *storage.Storage, registry *cmd.Registry, guard *keepalive.Guard) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = Intents
	return &Bot{dg: dg, cfg: cfg, storage: store, registry: registry, guard: guard, ctx: context.Background()}, nil
}

// Run connects to the gateway and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onMessageCreate)
	b.dg.AddHandler(b.onInteractionCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	log.Info().Msg("❎ Shutdown signal received. Cleaning up...")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	defer b.guard.Recover()

	if b.cfg.InitSlashCommands {
		if err := b.registerCommands(s, r.User.ID); err != nil {
			log.Error().Err(err).Msg("Failed to register slash commands")
		}
	} else {
		log.Info().Msg("Registering slash commands skipped")
	}
	log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("✅ Discord bot is running")
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	defer b.guard.Recover()

	if m.Author == nil || m.Author.Bot {
		return
	}
	botID := ""
	if s.State != nil && s.State.User != nil {
		botID = s.State.User.ID
	}
	name, args, ok := parseCommand(m.Content, b.cfg.CommandPrefix, botID)
	if !ok {
		return
	}
	c := b.registry.Get(name)
	if c == nil {
		return
	}

	ctx := b.ctx
	inv := &cmd.Invocation{
		Args: args,
		Data: &command.MessageContext{Session: s, Event: m, Arguments: args},
	}
	if err := c.Run(ctx, inv); err != nil {
		reportError(func(embed *discordgo.MessageEmbed) error {
			return command.MessageEmbed(ctx, s, m.ChannelID, embed)
		}, c.Name(), err)
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer b.guard.Recover()

	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if data.CommandType != discordgo.ChatApplicationCommand {
		return
	}
	c := b.registry.Get(data.Name)
	if c == nil {
		log.Warn().Str("command", data.Name).Msg("Unknown command")
		return
	}

	ctx := b.ctx
	inv := &cmd.Invocation{Data: &command.SlashInteractionContext{Session: s, Event: i}}
	if err := c.Run(ctx, inv); err != nil {
		reportError(func(embed *discordgo.MessageEmbed) error {
			return command.RespondEmbed(ctx, s, i, embed, true)
		}, c.Name(), err)
	}
}

func reportError(send func(*discordgo.MessageEmbed) error, name string, err error) {
	log.Error().Err(err).Str("command", name).Msg("Error running command")
	embed := &discordgo.MessageEmbed{
		Description: fmt.Sprintf("Error running command: %v", err),
		Color:       EmbedColor,
	}
	if e := send(embed); e != nil {
		log.Warn().Err(e).Str("command", name).Msg("Failed to report error")
	}
}

const EmbedColor = 0xb01e66
