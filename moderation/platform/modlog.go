package platform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"discord-modbot/model"
	"discord-modbot/moderation"
	"discord-modbot/utils"

	"github.com/bwmarrin/discordgo"
)

// ModLog posts case entries to the guild's configured mod-log channel. Guilds
// without one fall back to the bot-wide log channel, then to the operational webhook.
type ModLog struct {
	session         Session
	configs         moderation.GuildConfigLookup
	globalChannelID string
	webhookURL      string
}

func NewModLog(s Session, configs moderation.GuildConfigLookup, globalChannelID, webhookURL string) *ModLog {
	return &ModLog{session: s, configs: configs, globalChannelID: globalChannelID, webhookURL: webhookURL}
}

func (m *ModLog) Post(ctx context.Context, guildID string, kind model.ActionKind, target moderation.Target, c model.ModerationCase) error {
	cfg, err := m.configs.FindByGuildID(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to load mod-log channel for guild %s: %w", guildID, err)
	}

	channelID := cfg.ModLogChannelID
	if channelID == "" {
		channelID = m.globalChannelID
	}
	if channelID == "" {
		if m.webhookURL == "" {
			return nil
		}
		return utils.PostWebhookEmbeds(ctx, m.webhookURL, webhookEmbed(kind, target, c))
	}

	_, err = m.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:          []*discordgo.MessageEmbed{CaseEmbed(c, target)},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to post case %s to mod-log channel %s: %w", c.CaseID, channelID, err)
	}
	return nil
}

// CaseEmbed renders a case for the mod-log and the /case command.
func CaseEmbed(c model.ModerationCase, target moderation.Target) *discordgo.MessageEmbed {
	fields := caseFields(c, target)
	embedFields := make([]*discordgo.MessageEmbedField, 0, len(fields))
	for _, f := range fields {
		embedFields = append(embedFields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return &discordgo.MessageEmbed{
		Title:     caseTitle(c),
		Color:     utils.ActionColor(c.ActionKind),
		Fields:    embedFields,
		Timestamp: c.ActionTime.Format(time.RFC3339),
	}
}

func webhookEmbed(kind model.ActionKind, target moderation.Target, c model.ModerationCase) utils.DiscordEmbed {
	return utils.DiscordEmbed{
		Title:       caseTitle(c),
		Description: "Guild " + c.GuildID,
		Color:       utils.ActionColor(kind),
		Fields:      caseFields(c, target),
		Timestamp:   c.ActionTime.Format(time.RFC3339),
	}
}

func caseTitle(c model.ModerationCase) string {
	return fmt.Sprintf("Case #%s | %s", c.CaseID, strings.ToUpper(strings.ReplaceAll(string(c.ActionKind), "_", " ")))
}

func caseFields(c model.ModerationCase, target moderation.Target) []utils.DiscordEmbedField {
	user := fmt.Sprintf("<@%s>", c.TargetUserID)
	if tag := target.User.Tag; tag != "" {
		user += " (" + tag + ")"
	}
	fields := []utils.DiscordEmbedField{
		{Name: "User", Value: user, Inline: true},
	}
	if c.ExecutorID != nil {
		fields = append(fields, utils.DiscordEmbedField{Name: "Moderator", Value: fmt.Sprintf("<@%s>", *c.ExecutorID), Inline: true})
	}

	reason := "No reason provided"
	if c.Reason != nil && *c.Reason != "" {
		reason = *c.Reason
	}
	fields = append(fields, utils.DiscordEmbedField{Name: "Reason", Value: reason})

	if len(c.Attachments) > 0 {
		fields = append(fields, utils.DiscordEmbedField{Name: "Attachments", Value: strings.Join(c.Attachments, "\n")})
	}
	fields = append(fields, utils.DiscordEmbedField{Name: "DM", Value: DMStatus(c), Inline: true})
	return fields
}

// DMStatus describes the notification outcome of a case.
func DMStatus(c model.ModerationCase) string {
	switch {
	case c.DMSuccess():
		return "Delivered"
	case c.DMFailed():
		return "Failed: " + *c.DMResult.Error
	default:
		return "Not sent"
	}
}
