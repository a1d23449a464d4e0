package moderate

import (
	"context"
	"fmt"

	"discord-modbot/bot"
	"discord-modbot/model"
	"discord-modbot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

func canManage(b *bot.Bot, m *discordgo.Member) bool {
	if m == nil || m.User == nil {
		return false
	}
	if m.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	cfg := b.GetConfig()
	level := utils.CheckPermission(m.Roles, m.User.ID, nil, nil, cfg.DeveloperUserIDs, cfg.SuperAdminRoleIDs)
	return utils.CanManageModeration(level)
}

// HandleModConfigCommand shows the guild's moderation settings and applies any options given.
func HandleModConfigCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.GuildID == "" {
		utils.SendEphemeral(s, i, "This command can only be used in a server.")
		return
	}
	if !canManage(b, i.Member) {
		utils.SendEphemeral(s, i, "You do not have permission to use this command.")
		return
	}

	ctx := context.Background()
	cfg, err := b.GuildConfigs.FindByGuildID(ctx, i.GuildID)
	if err != nil {
		log.Error().Err(err).Str("guild_id", i.GuildID).Msg("failed to load moderation config")
		utils.SendEphemeral(s, i, "Failed to load settings.")
		return
	}

	opts := i.ApplicationCommandData().Options
	if len(opts) > 0 {
		cfg = ApplyConfigOptions(cfg, opts)
		cfg, err = b.GuildConfigs.Save(ctx, cfg)
		if err != nil {
			log.Error().Err(err).Str("guild_id", i.GuildID).Msg("failed to save moderation config")
			utils.SendEphemeral(s, i, "Failed to save settings.")
			return
		}
		log.Info().Str("guild_id", i.GuildID).Str("by", i.Member.User.ID).
			Bool("ban_dm", cfg.BanDMEnabled).Bool("timeout_dm", cfg.TimeoutCommandDMEnabled).
			Str("mod_log_channel_id", cfg.ModLogChannelID).Msg("moderation config updated")
	}

	utils.SendEphemeral(s, i, RenderConfig(cfg))
}

// ApplyConfigOptions returns cfg with the given command options applied.
func ApplyConfigOptions(cfg model.GuildModerationConfig, opts []*discordgo.ApplicationCommandInteractionDataOption) model.GuildModerationConfig {
	for _, o := range opts {
		switch o.Name {
		case "ban_dm":
			cfg.BanDMEnabled = o.BoolValue()
		case "timeout_dm":
			cfg.TimeoutCommandDMEnabled = o.BoolValue()
		case "mod_log_channel":
			if id, ok := o.Value.(string); ok {
				cfg.ModLogChannelID = id
			}
		}
	}
	return cfg
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// RenderConfig formats guild settings for display.
func RenderConfig(cfg model.GuildModerationConfig) string {
	modLog := "not set (operational webhook)"
	if cfg.ModLogChannelID != "" {
		modLog = fmt.Sprintf("<#%s>", cfg.ModLogChannelID)
	}
	return fmt.Sprintf("**Moderation settings**\nBan DMs: %s\nTimeout DMs: %s\nMod-log channel: %s",
		onOff(cfg.BanDMEnabled), onOff(cfg.TimeoutCommandDMEnabled), modLog)
}
