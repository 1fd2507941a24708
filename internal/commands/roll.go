package commands

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"command-plugins/internal/args"
	"command-plugins/internal/command"
	"command-plugins/internal/cooldown"
	"command-plugins/internal/plugin"
	"command-plugins/internal/timeout"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

const (
	maxDice  = 100
	maxSides = 1000
)

var diceRegex = regexp.MustCompile(`(?i)^(\d*)d(\d+)$`)

// Dice is a parsed NdM expression.
type Dice struct {
	Count int
	Sides int
}

func (d Dice) String() string { return fmt.Sprintf("%dd%d", d.Count, d.Sides) }

// ParseDice converts "2d6" or "d20" into Dice.
func ParseDice(raw string, ok bool) (any, error) {
	m := diceRegex.FindStringSubmatch(strings.TrimSpace(raw))
	if !ok || m == nil {
		return nil, fmt.Errorf("expected dice like 2d6")
	}
	count := 1
	if m[1] != "" {
		count, _ = strconv.Atoi(m[1])
	}
	sides, _ := strconv.Atoi(m[2])
	if count < 1 || count > maxDice {
		return nil, fmt.Errorf("dice count must be between 1 and %d", maxDice)
	}
	if sides < 2 || sides > maxSides {
		return nil, fmt.Errorf("dice sides must be between 2 and %d", maxSides)
	}
	return Dice{Count: count, Sides: sides}, nil
}

var rollFields = []args.Field{
	{Key: "dice", Convert: args.Required(ParseDice)},
	{Key: "modifier", Convert: args.Optional(args.Integer, 0)},
}

type rollArgs struct {
	Dice     Dice `arg:"dice"`
	Modifier int  `arg:"modifier"`
}

func rollPlugins(d Deps) []plugin.Plugin {
	return []plugin.Plugin{
		d.Cooldowns.Plugin([]cooldown.Rule{cooldown.MustParse(cooldown.LocationChannel, "5/10")},
			cooldown.WithNotifier(cooldown.ReplyNotifier)),
		args.Plugin(rollFields, replyConversionError),
		timeout.Plugin(d.Config.CommandTimeout, func(ev command.Context) {
			if err := ev.Reply(context.Background(), "⌛ The dice fell off the table. Try again.", true); err != nil {
				log.Warn().Err(err).Msg("Failed to reply")
			}
		}),
	}
}

func replyConversionError(ev command.Context, e *args.ConversionError) {
	msg := fmt.Sprintf("Argument %d (`%s`) is invalid: `%s` (%v)", e.Index+1, e.Key, e.Given, e.Err)
	if err := ev.Reply(context.Background(), msg, true); err != nil {
		log.Warn().Err(err).Msg("Failed to reply")
	}
}

type RollCommand struct {
	// intn is swapped in tests.
	intn func(n int) int
}

func (c *RollCommand) Name() string        { return "roll" }
func (c *RollCommand) Description() string { return "Roll dice like `2d6 +1`" }
func (c *RollCommand) Category() string    { return categoryGameplay }

func (c *RollCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "dice",
				Description: "Dice to roll, e.g. 2d6",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "modifier",
				Description: "Added to the total",
			},
		},
	}
}

func (c *RollCommand) Run(ctx context.Context, ev command.Context) error {
	var in rollArgs
	if err := args.Decode(ev.Values(), &in); err != nil {
		return err
	}
	intn := c.intn
	if intn == nil {
		intn = rand.IntN
	}

	rolls := make([]string, in.Dice.Count)
	total := in.Modifier
	for i := range rolls {
		v := intn(in.Dice.Sides) + 1
		rolls[i] = strconv.Itoa(v)
		total += v
	}

	if err := ctx.Err(); err != nil {
		return nil
	}
	msg := fmt.Sprintf("🎲 %s: [%s]", in.Dice, strings.Join(rolls, ", "))
	if in.Modifier != 0 {
		msg += fmt.Sprintf(" %+d", in.Modifier)
	}
	msg += fmt.Sprintf(" = **%d**", total)
	return ev.Reply(ctx, msg, false)
}
