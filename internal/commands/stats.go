package commands

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"command-plugins/internal/command"
	"command-plugins/internal/storage"

	"github.com/bwmarrin/discordgo"
)

type StatsCommand struct {
	store   *storage.Storage
	started time.Time
}

func (c *StatsCommand) Name() string        { return "stats" }
func (c *StatsCommand) Description() string { return "Show bot runtime statistics (owner only)" }
func (c *StatsCommand) Category() string    { return categoryMaintenance }

func (c *StatsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *StatsCommand) Run(ctx context.Context, ev command.Context) error {
	keys, size := c.store.Stats()
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return ev.Reply(ctx, fmt.Sprintf(
		"Uptime: %s\nGoroutines: %d\nHeap: %.1f MiB\nStore: %d keys, %d bytes",
		time.Since(c.started).Truncate(time.Second),
		runtime.NumGoroutine(),
		float64(mem.HeapAlloc)/(1<<20),
		keys, size,
	), true)
}
