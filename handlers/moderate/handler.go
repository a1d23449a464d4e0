package moderate

import (
	"context"
	"errors"
	"time"

	"discord-modbot/bot"
	"discord-modbot/model"
	"discord-modbot/moderation"
	"discord-modbot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

const commandTimeout = 2 * time.Minute

var errTargetBusy = errors.New("another moderation action for this user is in progress")

// HandleActionCommand runs one of the moderation action commands.
func HandleActionCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Member == nil || i.GuildID == "" {
		utils.SendEphemeral(s, i, "This command can only be used in a server.")
		return
	}

	data := i.ApplicationCommandData()
	kind := model.ActionKind(data.Name)
	req, err := ParseRequest(kind, data.Options, data.Resolved)
	if err != nil {
		utils.SendEphemeral(s, i, ErrorMessage(err))
		return
	}
	action, err := req.Action(i.GuildID, ExecutorOf(i.Member), time.Now())
	if err != nil {
		utils.SendEphemeral(s, i, ErrorMessage(err))
		return
	}

	// Platform calls and DMs can take longer than the 3s response window
	if err := utils.DeferResponse(s, i, false); err != nil {
		log.Warn().Err(err).Str("interaction_id", i.ID).Msg("failed to defer interaction")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	ctx = log.With().Str("interaction_id", i.ID).Str("executor_id", i.Member.User.ID).Logger().WithContext(ctx)

	targets, unresolved := ResolveTargets(ctx, s, i.GuildID, req.UserIDs)
	targets, busy := lockTargets(b.TargetLocks, i.GuildID, targets)
	defer unlockTargets(b.TargetLocks, i.GuildID, targets)
	unresolved = append(unresolved, busy...)
	results := b.Pipeline.ExecuteBatch(ctx, action, targets)
	utils.EditResponseContent(s, i, RenderResults(kind, results, unresolved))
}

// lockTargets claims every target; users already being acted on are returned as unresolved.
func lockTargets(locks *utils.TargetLocks, guildID string, targets []moderation.Target) ([]moderation.Target, []Unresolved) {
	locked := make([]moderation.Target, 0, len(targets))
	var busy []Unresolved
	for _, t := range targets {
		if !locks.TryLock(guildID, t.User.ID) {
			busy = append(busy, Unresolved{UserID: t.User.ID, Err: errTargetBusy})
			continue
		}
		locked = append(locked, t)
	}
	return locked, busy
}

func unlockTargets(locks *utils.TargetLocks, guildID string, targets []moderation.Target) {
	for _, t := range targets {
		locks.Unlock(guildID, t.User.ID)
	}
}

// IsActionCommand reports whether name is one of the action commands.
func IsActionCommand(name string) bool {
	return model.ActionKind(name).Valid()
}

