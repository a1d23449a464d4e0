package handlers

import (
	"context"

	"discord-modbot/bot"
	"discord-modbot/handlers/admin"
	"discord-modbot/handlers/moderate"
	"discord-modbot/model"
	"discord-modbot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	handlers := map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"case": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			moderate.HandleCaseCommand(s, i, b)
		},
		"modconfig": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			moderate.HandleModConfigCommand(s, i, b)
		},
		"sysinfo": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			SystemInfoHandler(s, i, b)
		},
		"reload-config": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			admin.HandleReloadConfig(s, i, b)
		},
	}
	for _, kind := range model.ActionKinds {
		handlers[string(kind)] = func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			moderate.HandleActionCommand(s, i, b)
		}
	}
	return handlers
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info().Str("user", r.User.String()).Int("guilds", len(r.Guilds)).Msg("logged in")
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		handleInteractionCreate(s, i, b)
	})
}

func handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	name := i.ApplicationCommandData().Name
	h, ok := b.CommandHandlers[name]
	if !ok {
		log.Debug().Str("command", name).Msg("no handler for command")
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("command", name).Str("guild_id", i.GuildID).Msg("command handler panicked")
			if url := b.GetConfig().LogWebhookURL; url != "" {
				_ = utils.LogError(context.Background(), url, "Commands", name, "handler panicked, see logs")
			}
		}
	}()
	h(s, i)
}
