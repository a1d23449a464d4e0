package platform

import (
	"context"
	"fmt"
	"time"

	"discord-modbot/moderation"
	"discord-modbot/utils"

	"github.com/bwmarrin/discordgo"
)

// Notifier sends moderation notices as embeds in the target's DM channel.
type Notifier struct {
	session   Session
	guildName func(guildID string) string
}

// NewNotifier returns a Notifier. guildName resolves the server name shown in
// the embed footer and may be nil.
func NewNotifier(s Session, guildName func(guildID string) string) *Notifier {
	return &Notifier{session: s, guildName: guildName}
}

func (n *Notifier) CreateDirectChannel(ctx context.Context, userID string) (string, error) {
	ch, err := n.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to create private channel with user %s: %w", userID, err)
	}
	return ch.ID, nil
}

func (n *Notifier) Send(ctx context.Context, channelID string, msg moderation.DirectMessage) (string, error) {
	sent, err := n.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{n.embed(msg)},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to send moderation notice: %w", err)
	}
	return sent.ID, nil
}

func (n *Notifier) Delete(ctx context.Context, channelID, messageID string) error {
	if err := n.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete moderation notice %s: %w", messageID, err)
	}
	return nil
}

func (n *Notifier) embed(msg moderation.DirectMessage) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "Moderation notice",
		Description: msg.Text,
		Color:       utils.ActionColor(msg.Kind),
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if n.guildName != nil {
		if name := n.guildName(msg.GuildID); name != "" {
			embed.Footer = &discordgo.MessageEmbedFooter{Text: name}
		}
	}
	return embed
}
