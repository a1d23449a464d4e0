package commands

import (
	"discord-modbot/commands/defs"
	"discord-modbot/model"

	"github.com/bwmarrin/discordgo"
)

// GenerateCommands returns every slash command the bot registers in a guild.
func GenerateCommands() []*discordgo.ApplicationCommand {
	cmds := make([]*discordgo.ApplicationCommand, 0, len(model.ActionKinds)+4)
	for _, kind := range model.ActionKinds {
		cmds = append(cmds, defs.ActionCommands[kind])
	}
	return append(cmds, defs.Case, defs.ModConfig, defs.SystemInfo, defs.Reload)
}
