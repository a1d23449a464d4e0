package moderate

import (
	"context"
	"errors"
	"fmt"

	"discord-modbot/moderation"

	"github.com/bwmarrin/discordgo"
)

// Resolver loads users and guild members.
type Resolver interface {
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
}

var _ Resolver = (*discordgo.Session)(nil)

// Unresolved is a requested user that could not be turned into a target.
type Unresolved struct {
	UserID string
	Err    error
}

// IdentityOf converts a platform user.
func IdentityOf(u *discordgo.User) moderation.Identity {
	if u == nil {
		return moderation.Identity{}
	}
	return moderation.Identity{ID: u.ID, Tag: u.String(), Bot: u.Bot}
}

// MembershipOf converts a platform member.
func MembershipOf(m *discordgo.Member) *moderation.Membership {
	if m == nil {
		return nil
	}
	return &moderation.Membership{
		Nick:                       m.Nick,
		Roles:                      append([]string(nil), m.Roles...),
		JoinedAt:                   m.JoinedAt,
		CommunicationDisabledUntil: m.CommunicationDisabledUntil,
	}
}

// ExecutorOf describes the member who invoked a command.
func ExecutorOf(m *discordgo.Member) moderation.Executor {
	if m == nil {
		return moderation.Executor{}
	}
	return moderation.Executor{User: IdentityOf(m.User), Member: MembershipOf(m)}
}

func isUnknownMember(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) && restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMember
}

// ResolveTargets looks up every id. Users who are not in the guild become
// non-member targets; ids that are not users at all are returned as unresolved.
func ResolveTargets(ctx context.Context, r Resolver, guildID string, ids []string) ([]moderation.Target, []Unresolved) {
	targets := make([]moderation.Target, 0, len(ids))
	var unresolved []Unresolved

	for _, id := range ids {
		member, err := r.GuildMember(guildID, id, discordgo.WithContext(ctx))
		if err == nil && member.User != nil {
			targets = append(targets, moderation.NewTarget(IdentityOf(member.User), MembershipOf(member)))
			continue
		}
		if err != nil && !isUnknownMember(err) {
			unresolved = append(unresolved, Unresolved{UserID: id, Err: fmt.Errorf("failed to look up member: %w", err)})
			continue
		}

		user, err := r.User(id, discordgo.WithContext(ctx))
		if err != nil {
			unresolved = append(unresolved, Unresolved{UserID: id, Err: fmt.Errorf("unknown user: %w", err)})
			continue
		}
		targets = append(targets, moderation.NewTarget(IdentityOf(user), nil))
	}
	return targets, unresolved
}
