package commands

import (
	"context"
	"fmt"
	"strings"

	"command-plugins/internal/args"
	"command-plugins/internal/command"
	"command-plugins/internal/filter"
	"command-plugins/internal/plugin"
	"command-plugins/internal/storage"

	"github.com/bwmarrin/discordgo"
)

// toggleable lists the categories a guild may switch off, by the single-word
// key users type. Maintenance stays on so the toggle itself cannot be disabled.
var toggleable = []struct{ key, label string }{
	{"info", categoryInfo},
	{"gameplay", categoryGameplay},
	{"restricted", categoryRestricted},
}

func togglePlugins() []plugin.Plugin {
	return []plugin.Plugin{
		filter.Make(filter.CanManageGuild()),
		args.Plugin([]args.Field{{Key: "category", Convert: toggleCategory}}, replyConversionError),
	}
}

// toggleCategory maps a category key, in any case, to its label.
func toggleCategory(raw string, ok bool) (any, error) {
	keys := make([]string, len(toggleable))
	for i, c := range toggleable {
		keys[i] = c.key
	}
	v, err := args.Choices(keys...)(strings.ToLower(strings.TrimSpace(raw)), ok)
	if err != nil {
		return nil, err
	}
	for _, c := range toggleable {
		if c.key == v {
			return c.label, nil
		}
	}
	return nil, fmt.Errorf("value is not in choices")
}

type ToggleCommand struct {
	store *storage.Storage
}

func (c *ToggleCommand) Name() string { return "toggle" }
func (c *ToggleCommand) Description() string {
	return "Enable or disable a command category on this server"
}
func (c *ToggleCommand) Category() string { return categoryMaintenance }

func (c *ToggleCommand) SlashDefinition() *discordgo.ApplicationCommand {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(toggleable))
	for i, c := range toggleable {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{Name: c.label, Value: c.key}
	}
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "category",
			Description: "Category to toggle",
			Required:    true,
			Choices:     choices,
		}},
	}
}

func (c *ToggleCommand) Run(ctx context.Context, ev command.Context) error {
	var in struct {
		Category string `arg:"category"`
	}
	if err := args.Decode(ev.Values(), &in); err != nil {
		return err
	}

	guildID := ev.GuildID()
	disabled, err := c.store.IsCategoryDisabled(guildID, in.Category)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if disabled {
		if err := c.store.EnableCategory(guildID, in.Category); err != nil {
			return fmt.Errorf("enable category: %w", err)
		}
		return ev.Reply(ctx, fmt.Sprintf("✅ %s commands are enabled.", in.Category), true)
	}
	if err := c.store.DisableCategory(guildID, in.Category); err != nil {
		return fmt.Errorf("disable category: %w", err)
	}
	return ev.Reply(ctx, fmt.Sprintf("🚫 %s commands are disabled.", in.Category), true)
}
