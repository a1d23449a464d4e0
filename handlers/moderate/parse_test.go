package moderate

import (
	"testing"
	"time"

	"discord-modbot/commands/defs"
	"discord-modbot/model"
	"discord-modbot/moderation"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var parseNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func strOpt(name, v string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: v}
}

func intOpt(name string, v int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(v)}
}

func TestParseUserIDs(t *testing.T) {
	ids, err := ParseUserIDs("<@123456789012345678> 223456789012345678, <@!323456789012345678> 123456789012345678")
	require.NoError(t, err)
	assert.Equal(t, []string{"123456789012345678", "223456789012345678", "323456789012345678"}, ids)
}

func TestParseUserIDsRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", "   "},
		{"not an id", "someone"},
		{"role mention", "<@&123456789012345678>"},
		{"too short", "12345"},
		{"too many", "100000000000000001 100000000000000002 100000000000000003 100000000000000004 100000000000000005 100000000000000006 100000000000000007 100000000000000008 100000000000000009 100000000000000010 100000000000000011"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUserIDs(tt.raw)
			require.Error(t, err)
			assert.True(t, moderation.IsValidation(err))
		})
	}
}

func TestParseDMChoice(t *testing.T) {
	assert.Equal(t, moderation.DMForce, ParseDMChoice("force"))
	assert.Equal(t, moderation.DMSuppress, ParseDMChoice("suppress"))
	assert.Equal(t, moderation.DMUnspecified, ParseDMChoice(""))
	assert.Equal(t, moderation.DMUnspecified, ParseDMChoice("default"))
}

func TestParseRequest(t *testing.T) {
	opts := []*discordgo.ApplicationCommandInteractionDataOption{
		strOpt(defs.OptUsers, "<@123456789012345678>"),
		strOpt(defs.OptReason, "  spam  "),
		intOpt(defs.OptDeleteDays, 3),
		strOpt(defs.OptDM, "suppress"),
		{Name: defs.OptAttachment, Type: discordgo.ApplicationCommandOptionAttachment, Value: "att-1"},
	}
	resolved := &discordgo.ApplicationCommandInteractionDataResolved{
		Attachments: map[string]*discordgo.MessageAttachment{"att-1": {ID: "att-1", URL: "https://cdn.example/proof.png"}},
	}

	req, err := ParseRequest(model.ActionBan, opts, resolved)
	require.NoError(t, err)

	assert.Equal(t, []string{"123456789012345678"}, req.UserIDs)
	require.NotNil(t, req.Reason)
	assert.Equal(t, "spam", *req.Reason)
	require.NotNil(t, req.DeleteDays)
	assert.Equal(t, 3, *req.DeleteDays)
	assert.Equal(t, moderation.DMSuppress, req.DM)
	require.NotNil(t, req.AttachmentURL)
	assert.Equal(t, "https://cdn.example/proof.png", *req.AttachmentURL)

	a, err := req.Action("g1", moderation.Executor{User: moderation.Identity{ID: "mod"}}, parseNow)
	require.NoError(t, err)
	assert.Equal(t, model.ActionBan, a.Kind())
}

func TestParseRequestBlankReasonIsNil(t *testing.T) {
	req, err := ParseRequest(model.ActionKick, []*discordgo.ApplicationCommandInteractionDataOption{
		strOpt(defs.OptUsers, "123456789012345678"),
		strOpt(defs.OptReason, "   "),
	}, nil)
	require.NoError(t, err)
	assert.Nil(t, req.Reason)
}

func TestParseRequestMissingUsers(t *testing.T) {
	_, err := ParseRequest(model.ActionKick, nil, nil)
	require.Error(t, err)
	assert.True(t, moderation.IsValidation(err))
}

func TestRequestActionDuration(t *testing.T) {
	req := Request{Kind: model.ActionTempBan, UserIDs: []string{"1"}, Duration: "1d"}
	a, err := req.Action("g1", moderation.Executor{}, parseNow)
	require.NoError(t, err)

	tb, ok := a.(moderation.TempBan)
	require.True(t, ok)
	assert.Equal(t, 24*time.Hour, tb.Duration.Length)

	req.Duration = "forever"
	_, err = req.Action("g1", moderation.Executor{}, parseNow)
	assert.True(t, moderation.IsValidation(err))

	req.Duration = ""
	_, err = req.Action("g1", moderation.Executor{}, parseNow)
	assert.True(t, moderation.IsValidation(err), "tempban without duration")
}
