package defs

import "github.com/bwmarrin/discordgo"

var SystemInfo = &discordgo.ApplicationCommand{
	Name:        "sysinfo",
	Description: "Show bot host and moderation statistics",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "系统信息",
		discordgo.ChineseTW: "系統信息",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "显示机器人、主机和处罚记录的状态信息",
		discordgo.ChineseTW: "顯示機器人、主機和處罰記錄的狀態信息",
	},
	DefaultMemberPermissions: &permManage,
	DMPermission:             &dmDisabled,
}

// Reload is restricted to developers at runtime.
var Reload = &discordgo.ApplicationCommand{
	Name:        "reload-config",
	Description: "Reload the bot configuration",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "重载配置",
		discordgo.ChineseTW: "重載配置",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "重新加载机器人配置",
		discordgo.ChineseTW: "重新加載機器人配置",
	},
	DefaultMemberPermissions: &permManage,
	DMPermission:             &dmDisabled,
}
