package defs

import (
	"discord-modbot/model"

	"github.com/bwmarrin/discordgo"
)

const MaxTargets = 10

// Option names shared by the moderation commands.
const (
	OptUsers      = "users"
	OptReason     = "reason"
	OptDuration   = "duration"
	OptDeleteDays = "delete_days"
	OptDM         = "dm"
	OptAttachment = "attachment"
)

var (
	permBan      = int64(discordgo.PermissionBanMembers)
	permKick     = int64(discordgo.PermissionKickMembers)
	permModerate = int64(discordgo.PermissionModerateMembers)
	permManage   = int64(discordgo.PermissionManageGuild)
	dmDisabled   = false
	zeroDays     = float64(0)
)

func usersOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        OptUsers,
		Description: "Users to act on: mentions or IDs separated by spaces (max 10)",
		DescriptionLocalizations: map[discordgo.Locale]string{
			discordgo.ChineseCN: "目标用户：提及或ID，用空格分开（最多10个）",
		},
		Required: true,
	}
}

func reasonOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        OptReason,
		Description: "Reason, shown to the user and in the audit log",
		DescriptionLocalizations: map[discordgo.Locale]string{
			discordgo.ChineseCN: "原因，会发送给用户并写入审计日志",
		},
		Required:  required,
		MaxLength: 1024,
	}
}

func durationOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        OptDuration,
		Description: "Duration, e.g. 30m, 12h, 7d or 1w 2d",
		DescriptionLocalizations: map[discordgo.Locale]string{
			discordgo.ChineseCN: "时长，例如 30m、12h、7d 或 1w 2d",
		},
		Required: true,
	}
}

func deleteDaysOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        OptDeleteDays,
		Description: "Days of messages to delete (0-7)",
		DescriptionLocalizations: map[discordgo.Locale]string{
			discordgo.ChineseCN: "删除最近几天的消息（0-7）",
		},
		MinValue: &zeroDays,
		MaxValue: 7,
	}
}

func dmOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        OptDM,
		Description: "Override the server's DM setting",
		DescriptionLocalizations: map[discordgo.Locale]string{
			discordgo.ChineseCN: "覆盖服务器的私信通知设置",
		},
		Choices: []*discordgo.ApplicationCommandOptionChoice{
			{Name: "Always send", Value: "force"},
			{Name: "Never send", Value: "suppress"},
		},
	}
}

func attachmentOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionAttachment,
		Name:        OptAttachment,
		Description: "Evidence to store on the case",
		DescriptionLocalizations: map[discordgo.Locale]string{
			discordgo.ChineseCN: "作为证据保存到案件的附件",
		},
	}
}

func actionCommand(kind model.ActionKind, description, zhName, zhDescription string, perm *int64, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        string(kind),
		Description: description,
		NameLocalizations: &map[discordgo.Locale]string{
			discordgo.ChineseCN: zhName,
		},
		DescriptionLocalizations: &map[discordgo.Locale]string{
			discordgo.ChineseCN: zhDescription,
		},
		DefaultMemberPermissions: perm,
		DMPermission:             &dmDisabled,
		Options:                  append([]*discordgo.ApplicationCommandOption{usersOption()}, opts...),
	}
}

var Ban = actionCommand(model.ActionBan, "Ban users from the server", "封禁", "将用户封禁出服务器", &permBan,
	reasonOption(false), deleteDaysOption(), dmOption(), attachmentOption())

var TempBan = actionCommand(model.ActionTempBan, "Ban users for a limited time", "临时封禁", "在一段时间内封禁用户", &permBan,
	durationOption(), reasonOption(false), deleteDaysOption(), dmOption(), attachmentOption())

var Unban = actionCommand(model.ActionUnban, "Lift bans", "解除封禁", "解除用户的封禁", &permBan,
	reasonOption(false), attachmentOption())

var Kick = actionCommand(model.ActionKick, "Kick users from the server", "踢出", "将用户踢出服务器", &permKick,
	reasonOption(false), dmOption(), attachmentOption())

var Timeout = actionCommand(model.ActionTimeout, "Time out users", "禁言", "禁言用户一段时间", &permModerate,
	durationOption(), reasonOption(false), dmOption(), attachmentOption())

var TimeoutAdjust = actionCommand(model.ActionTimeoutAdjust, "Change the length of a timeout", "调整禁言", "修改用户禁言的时长", &permModerate,
	durationOption(), reasonOption(false), dmOption(), attachmentOption())

var UnTimeout = actionCommand(model.ActionUnTimeout, "Remove timeouts", "解除禁言", "解除用户的禁言", &permModerate,
	reasonOption(false), dmOption(), attachmentOption())

var Warn = actionCommand(model.ActionWarn, "Warn users", "警告", "警告用户", &permModerate,
	reasonOption(true), dmOption(), attachmentOption())

var Note = actionCommand(model.ActionNote, "Add a private note to users' records", "备注", "为用户记录添加备注", &permModerate,
	reasonOption(true), attachmentOption())

// ActionCommands are the commands that run a moderation action, keyed by kind.
var ActionCommands = map[model.ActionKind]*discordgo.ApplicationCommand{
	model.ActionBan:           Ban,
	model.ActionTempBan:       TempBan,
	model.ActionUnban:         Unban,
	model.ActionKick:          Kick,
	model.ActionTimeout:       Timeout,
	model.ActionTimeoutAdjust: TimeoutAdjust,
	model.ActionUnTimeout:     UnTimeout,
	model.ActionWarn:          Warn,
	model.ActionNote:          Note,
}

func kindChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(model.ActionKinds))
	for _, k := range model.ActionKinds {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: string(k), Value: string(k)})
	}
	return choices
}

var Case = &discordgo.ApplicationCommand{
	Name:        "case",
	Description: "Look up moderation cases",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "案件",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "查询处罚案件",
	},
	DefaultMemberPermissions: &permModerate,
	DMPermission:             &dmDisabled,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "view",
			Description: "Show one case",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "id",
					Description: "Case number",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "search",
			Description: "List recent cases",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Only cases against this user",
				},
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "moderator",
					Description: "Only cases by this moderator",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "kind",
					Description: "Only cases of this kind",
					Choices:     kindChoices(),
				},
			},
		},
	},
}

var ModConfig = &discordgo.ApplicationCommand{
	Name:        "modconfig",
	Description: "Show or change moderation settings",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "处罚设置",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "查看或修改本服务器的处罚设置",
	},
	DefaultMemberPermissions: &permManage,
	DMPermission:             &dmDisabled,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "ban_dm",
			Description: "DM users when they are banned",
		},
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "timeout_dm",
			Description: "DM users when they are timed out",
		},
		{
			Type:         discordgo.ApplicationCommandOptionChannel,
			Name:         "mod_log_channel",
			Description:  "Channel for moderation log entries",
			ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
		},
	},
}
