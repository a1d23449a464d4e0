package moderate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"discord-modbot/bot"
	"discord-modbot/model"
	"discord-modbot/moderation"
	"discord-modbot/moderation/platform"
	"discord-modbot/utils"
	"discord-modbot/utils/database/modcases"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

const maxReasonPreview = 60

// HandleCaseCommand shows a single case or lists matching cases.
func HandleCaseCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.GuildID == "" {
		utils.SendEphemeral(s, i, "This command can only be used in a server.")
		return
	}
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	ctx := context.Background()
	cases := b.Store.Cases()

	switch sub.Name {
	case "view":
		id := strconv.FormatInt(sub.Options[0].IntValue(), 10)
		c, err := cases.Get(ctx, i.GuildID, id)
		if errors.Is(err, modcases.ErrNotFound) {
			utils.SendEphemeral(s, i, fmt.Sprintf("Case #%s does not exist.", id))
			return
		}
		if err != nil {
			log.Error().Err(err).Str("guild_id", i.GuildID).Str("case_id", id).Msg("failed to load case")
			utils.SendEphemeral(s, i, "Failed to load the case.")
			return
		}
		target := moderation.NewTarget(moderation.Identity{ID: c.TargetUserID, Tag: c.TargetUserTag}, nil)
		utils.SendEmbedResponse(s, i, true, platform.CaseEmbed(c, target))

	case "search":
		filter := modcases.CaseFilter{GuildID: i.GuildID, Limit: 15}
		for _, o := range sub.Options {
			switch o.Name {
			case "user":
				filter.UserID = o.UserValue(nil).ID
			case "moderator":
				filter.ExecutorID = o.UserValue(nil).ID
			case "kind":
				filter.Kinds = []model.ActionKind{model.ActionKind(o.StringValue())}
			}
		}
		found, err := cases.Search(ctx, filter)
		if err != nil {
			log.Error().Err(err).Str("guild_id", i.GuildID).Msg("failed to search cases")
			utils.SendEphemeral(s, i, "Failed to search cases.")
			return
		}
		utils.SendEphemeral(s, i, RenderCaseList(found))
	}
}

// RenderCaseList formats search results, newest first.
func RenderCaseList(found []model.ModerationCase) string {
	if len(found) == 0 {
		return "No cases found."
	}
	var b strings.Builder
	for _, c := range found {
		reason := "No reason provided"
		if c.Reason != nil && *c.Reason != "" {
			reason = *c.Reason
		}
		if r := []rune(reason); len(r) > maxReasonPreview {
			reason = string(r[:maxReasonPreview-3]) + "..."
		}
		fmt.Fprintf(&b, "**#%s** %s <@%s> <t:%d:R>: %s\n", c.CaseID, c.ActionKind, c.TargetUserID, c.ActionTime.Unix(), reason)
	}
	return strings.TrimRight(b.String(), "\n")
}
