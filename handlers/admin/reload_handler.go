package admin

import (
	"fmt"

	"discord-modbot/bot"
	"discord-modbot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

func HandleReloadConfig(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Member == nil || i.Member.User == nil {
		return
	}
	permissionLevel := utils.CheckPermission(i.Member.Roles, i.Member.User.ID, nil, nil, b.GetConfig().DeveloperUserIDs, nil)
	if permissionLevel != utils.DeveloperPermission {
		utils.SendEphemeral(s, i, "You do not have permission to use this command.")
		return
	}

	if err := b.ReloadConfig(); err != nil {
		log.Error().Err(err).Str("by", i.Member.User.ID).Msg("config reload failed")
		utils.SendEphemeral(s, i, fmt.Sprintf("Config reload failed: %v", err))
		return
	}
	log.Info().Str("by", i.Member.User.ID).Msg("config reloaded")
	utils.SendEphemeral(s, i, "✅ Configuration reloaded. Database and token changes take effect after a restart.")
}
