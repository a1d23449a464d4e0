package moderate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"discord-modbot/commands/defs"
	"discord-modbot/model"
	"discord-modbot/moderation"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"
)

var userTokenRe = regexp.MustCompile(`^(?:<@!?(\d{15,21})>|(\d{15,21}))$`)

// ParseUserIDs splits the users option into snowflakes. Mentions and raw IDs are
// accepted; duplicates are dropped, order is kept.
func ParseUserIDs(raw string) ([]string, error) {
	tokens := strings.Fields(strings.ReplaceAll(raw, ",", " "))
	if len(tokens) == 0 {
		return nil, &moderation.ValidationError{Field: "users", Message: "at least one user is required"}
	}

	ids := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		m := userTokenRe.FindStringSubmatch(tok)
		if m == nil {
			return nil, &moderation.ValidationError{Field: "users", Message: fmt.Sprintf("%q is not a user mention or ID", tok)}
		}
		ids = append(ids, lo.Ternary(m[1] != "", m[1], m[2]))
	}

	ids = lo.Uniq(ids)
	if len(ids) > defs.MaxTargets {
		return nil, &moderation.ValidationError{Field: "users", Message: fmt.Sprintf("at most %d users per command", defs.MaxTargets)}
	}
	return ids, nil
}

// ParseDMChoice maps the dm option value to an override.
func ParseDMChoice(v string) moderation.DMChoice {
	switch v {
	case "force":
		return moderation.DMForce
	case "suppress":
		return moderation.DMSuppress
	default:
		return moderation.DMUnspecified
	}
}

// Request is a parsed moderation command invocation.
type Request struct {
	Kind          model.ActionKind
	UserIDs       []string
	Reason        *string
	Duration      string
	DeleteDays    *int
	DM            moderation.DMChoice
	AttachmentURL *string
}

// ParseRequest reads the command options. resolved may be nil when the
// invocation carried no attachment.
func ParseRequest(kind model.ActionKind, opts []*discordgo.ApplicationCommandInteractionDataOption, resolved *discordgo.ApplicationCommandInteractionDataResolved) (Request, error) {
	req := Request{Kind: kind}
	byName := lo.SliceToMap(opts, func(o *discordgo.ApplicationCommandInteractionDataOption) (string, *discordgo.ApplicationCommandInteractionDataOption) {
		return o.Name, o
	})

	usersOpt, ok := byName[defs.OptUsers]
	if !ok {
		return Request{}, &moderation.ValidationError{Field: "users", Message: "at least one user is required"}
	}
	ids, err := ParseUserIDs(usersOpt.StringValue())
	if err != nil {
		return Request{}, err
	}
	req.UserIDs = ids

	if o, ok := byName[defs.OptReason]; ok {
		if reason := strings.TrimSpace(o.StringValue()); reason != "" {
			req.Reason = &reason
		}
	}
	if o, ok := byName[defs.OptDuration]; ok {
		req.Duration = o.StringValue()
	}
	if o, ok := byName[defs.OptDeleteDays]; ok {
		days := int(o.IntValue())
		req.DeleteDays = &days
	}
	if o, ok := byName[defs.OptDM]; ok {
		req.DM = ParseDMChoice(o.StringValue())
	}
	if o, ok := byName[defs.OptAttachment]; ok && resolved != nil {
		id, _ := o.Value.(string)
		if att, ok := resolved.Attachments[id]; ok && att != nil {
			req.AttachmentURL = &att.URL
		}
	}
	return req, nil
}

// Action builds and validates the action for one guild and executor.
func (r Request) Action(guildID string, executor moderation.Executor, now time.Time) (moderation.Action, error) {
	base := moderation.ActionBase{
		GuildID:    guildID,
		Executor:   executor,
		Reason:     r.Reason,
		DMChoice:   r.DM,
		Attachment: r.AttachmentURL,
	}

	var opts moderation.ActionOptions
	opts.DeleteMessageDays = r.DeleteDays
	if r.Duration != "" {
		d, err := moderation.ParseDuration(r.Duration, now)
		if err != nil {
			return nil, err
		}
		opts.Duration = &d
	}
	return moderation.NewAction(r.Kind, base, opts)
}
