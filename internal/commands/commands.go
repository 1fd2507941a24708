// Package commands holds the bot's commands and binds each one to its plugin
// chain and middleware.
package commands

import (
	"context"
	"fmt"
	"time"

	"command-plugins/internal/command"
	"command-plugins/internal/config"
	"command-plugins/internal/cooldown"
	"command-plugins/internal/filter"
	"command-plugins/internal/intents"
	"command-plugins/internal/keepalive"
	"command-plugins/internal/middleware"
	"command-plugins/internal/plugin"
	"command-plugins/internal/storage"
	"command-plugins/pkg/cmd"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

const (
	categoryInfo        = "🕯️ Information"
	categoryGameplay    = "🎲 Gameplay"
	categoryRestricted  = "🔞 Restricted"
	categoryMaintenance = "🛠️ Maintenance"
)

type Deps struct {
	Config    *config.Config
	Storage   *storage.Storage
	Cooldowns *cooldown.Tracker
	Guard     *keepalive.Guard
	// Fallback receives failures the keep-alive guard intercepts.
	Fallback keepalive.Fallback
}

type entry struct {
	cmd     command.DiscordCommand
	plugins []plugin.Plugin
	mws     []cmd.Middleware
}

// Register builds every command and adds it to r.
func Register(r *cmd.Registry, d Deps) error {
	pingCooldown, err := d.Cooldowns.Channel(d.Config.PingCooldown, cooldown.WithNotifier(cooldown.ReplyNotifier))
	if err != nil {
		return fmt.Errorf("ping cooldown: %w", err)
	}

	entries := []entry{
		{cmd: &PingCommand{}, plugins: []plugin.Plugin{pingCooldown}},
		{cmd: &HelpCommand{registry: r}},
		{cmd: &RollCommand{}, plugins: rollPlugins(d)},
		{cmd: &HistoryCommand{store: d.Storage}, plugins: []plugin.Plugin{historyFilter()},
			mws: []cmd.Middleware{middleware.WithGuildOnly()}},
		{cmd: &ToggleCommand{store: d.Storage}, plugins: togglePlugins(),
			mws: []cmd.Middleware{middleware.WithGuildOnly()}},
		{cmd: &NSFWCommand{}, plugins: []plugin.Plugin{nsfwFilter()}},
		{cmd: &WhisperCommand{}, plugins: []plugin.Plugin{plugin.Invert(plugin.GuildOnly())}},
		{cmd: &StatsCommand{store: d.Storage, started: time.Now()}, plugins: []plugin.Plugin{filter.Make(filter.IsBotOwner())}},
	}

	for _, e := range entries {
		chain := append(commonPlugins(d), e.plugins...)
		mws := append([]cmd.Middleware{plugin.Use(chain...)}, e.mws...)
		mws = append(mws,
			middleware.WithCategoryCheck(d.Storage),
			middleware.WithCommandLogger(d.Storage),
		)
		command.RegisterCommand(r, e.cmd, mws...)
	}
	return nil
}

// commonPlugins run first on every command.
func commonPlugins(d Deps) []plugin.Plugin {
	return []plugin.Plugin{
		keepalive.Plugin(d.Guard, d.Config.KeepAliveTTL, d.Fallback),
		intents.Plugin(discordgo.IntentGuilds, replyMissingIntents),
	}
}

func replyMissingIntents(ev command.Context, err *intents.Error) {
	log.Error().Err(err).Msg("Command needs gateway intents the bot did not request")
	if e := ev.Reply(context.Background(), "This command is unavailable: the bot is missing gateway intents.", true); e != nil {
		log.Warn().Err(e).Msg("Failed to reply")
	}
}
