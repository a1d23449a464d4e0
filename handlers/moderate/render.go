package moderate

import (
	"errors"
	"fmt"
	"strings"

	"discord-modbot/model"
	"discord-modbot/moderation"
)

var pastTense = map[model.ActionKind]string{
	model.ActionBan:           "Banned",
	model.ActionTempBan:       "Temporarily banned",
	model.ActionUnban:         "Unbanned",
	model.ActionKick:          "Kicked",
	model.ActionTimeout:       "Timed out",
	model.ActionTimeoutAdjust: "Adjusted timeout for",
	model.ActionUnTimeout:     "Removed timeout for",
	model.ActionWarn:          "Warned",
	model.ActionNote:          "Added note to",
}

// ErrorMessage turns a pipeline error into text for the moderator.
func ErrorMessage(err error) string {
	var validation *moderation.ValidationError
	if errors.As(err, &validation) {
		return validation.Error()
	}
	var alloc *moderation.AllocationError
	if errors.As(err, &alloc) {
		return "could not create the case, please try again"
	}

	switch moderation.PlatformFailureOf(err) {
	case moderation.FailureTargetNotInGuild:
		return "user is not in this server"
	case moderation.FailureInsufficientPermission:
		return "I don't have permission to do that (check my role position)"
	case moderation.FailureNotBanned:
		return "user is not banned"
	}
	return err.Error()
}

func dmSuffix(c model.ModerationCase) string {
	switch {
	case c.DMSuccess():
		return " (DM sent)"
	case c.DMFailed():
		return " (DM failed)"
	default:
		return ""
	}
}

// RenderResults builds the command reply: one line per requested user.
func RenderResults(kind model.ActionKind, results []moderation.Result, unresolved []Unresolved) string {
	var b strings.Builder
	verb := pastTense[kind]
	for _, r := range results {
		if r.OK() {
			fmt.Fprintf(&b, "✅ Case #%s: %s <@%s>%s\n", r.Case.CaseID, verb, r.Target.User.ID, dmSuffix(r.Case))
			continue
		}
		fmt.Fprintf(&b, "❌ <@%s>: %s\n", r.Target.User.ID, ErrorMessage(r.Err))
	}
	for _, u := range unresolved {
		fmt.Fprintf(&b, "❌ `%s`: %s\n", u.UserID, ErrorMessage(u.Err))
	}
	return strings.TrimRight(b.String(), "\n")
}
