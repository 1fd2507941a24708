package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"command-plugins/internal/command"
	"command-plugins/internal/config"
	"command-plugins/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

type HelpCommand struct {
	registry *cmd.Registry
}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "List available commands" }
func (c *HelpCommand) Category() string    { return categoryInfo }

func (c *HelpCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *HelpCommand) Run(ctx context.Context, ev command.Context) error {
	return ev.Reply(ctx, renderHelp(c.registry.GetAll()), true)
}

func renderHelp(cmds []cmd.Command) string {
	byCategory := map[string][]cmd.Command{}
	for _, c := range cmds {
		cat := "Other"
		if meta, ok := cmd.Root(c).(command.DiscordMeta); ok && meta.Category() != "" {
			cat = meta.Category()
		}
		byCategory[cat] = append(byCategory[cat], c)
	}

	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Slice(categories, func(i, j int) bool {
		wi, wj := config.CategoryWeight(categories[i]), config.CategoryWeight(categories[j])
		if wi != wj {
			return wi < wj
		}
		return categories[i] < categories[j]
	})

	var sb strings.Builder
	for i, cat := range categories {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "**%s**\n", cat)
		for _, c := range byCategory[cat] {
			fmt.Fprintf(&sb, "`/%s` %s\n", c.Name(), c.Description())
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
