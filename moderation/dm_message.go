package moderation

import (
	"fmt"
	"strings"

	"discord-modbot/model"
)

// BuildDirectMessage renders the notification for a. Discord timestamp markup is used for end times.
func BuildDirectMessage(a Action) DirectMessage {
	base := a.Base()
	msg := DirectMessage{GuildID: base.GuildID, Kind: a.Kind()}
	if base.Reason != nil {
		msg.Reason = *base.Reason
	}
	if d, ok := DurationOf(a); ok {
		msg.Duration = &d
	}

	var b strings.Builder
	switch a.Kind() {
	case model.ActionBan:
		b.WriteString("You have been banned.")
	case model.ActionTempBan:
		fmt.Fprintf(&b, "You have been banned for %s. The ban expires <t:%d:F>.", msg.Duration, msg.Duration.End.Unix())
	case model.ActionKick:
		b.WriteString("You have been kicked.")
	case model.ActionTimeout:
		fmt.Fprintf(&b, "You have been timed out for %s, until <t:%d:F>.", msg.Duration, msg.Duration.End.Unix())
	case model.ActionTimeoutAdjust:
		fmt.Fprintf(&b, "Your timeout has been changed to %s and now ends <t:%d:F>.", msg.Duration, msg.Duration.End.Unix())
	case model.ActionUnTimeout:
		b.WriteString("Your timeout has been removed.")
	case model.ActionWarn:
		b.WriteString("You have received a warning.")
	case model.ActionUnban:
		b.WriteString("You have been unbanned.")
	case model.ActionNote:
		b.WriteString("A note has been added to your record.")
	}
	if msg.Reason != "" {
		fmt.Fprintf(&b, "\nReason: %s", msg.Reason)
	}
	msg.Text = b.String()
	return msg
}
