package command

import (
	"context"

	"command-plugins/pkg/retrylimit"

	"github.com/bwmarrin/discordgo"
)

const replyAttempts = 3

// replyLimiter paces every reply the plugins send so a burst of rejections
// cannot push the bot into Discord's global rate limit.
var replyLimiter = retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5)

// noMentions keeps rejection replies from pinging anyone.
func noMentions() *discordgo.MessageAllowedMentions {
	return &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}
}

// RespondEphemeral answers an interaction, optionally visible only to the caller.
func RespondEphemeral(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{
		Content:         content,
		AllowedMentions: noMentions(),
	}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return retrylimit.WithRetryMax(ctx, func() error {
		return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: data,
		})
	}, replyLimiter, replyAttempts)
}

// MessageReply replies to a message without pinging its author.
func MessageReply(ctx context.Context, s *discordgo.Session, m *discordgo.Message, content string) error {
	send := &discordgo.MessageSend{
		Content:         content,
		Reference:       m.Reference(),
		AllowedMentions: noMentions(),
	}
	return retrylimit.WithRetryMax(ctx, func() error {
		_, err := s.ChannelMessageSendComplex(m.ChannelID, send)
		return err
	}, replyLimiter, replyAttempts)
}

// MessageEmbed sends an embed to a channel.
func MessageEmbed(ctx context.Context, s *discordgo.Session, channelID string, embed *discordgo.MessageEmbed) error {
	return retrylimit.WithRetryMax(ctx, func() error {
		_, err := s.ChannelMessageSendEmbed(channelID, embed)
		return err
	}, replyLimiter, replyAttempts)
}

// RespondEmbed answers an interaction with an embed.
func RespondEmbed(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return retrylimit.WithRetryMax(ctx, func() error {
		return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: data,
		})
	}, replyLimiter, replyAttempts)
}
