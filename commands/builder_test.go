package commands

import (
	"testing"

	"discord-modbot/commands/defs"
	"discord-modbot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCommands(t *testing.T) {
	cmds := GenerateCommands()
	require.Len(t, cmds, len(model.ActionKinds)+4)

	names := map[string]bool{}
	for _, c := range cmds {
		require.NotNil(t, c)
		assert.False(t, names[c.Name], "duplicate command %s", c.Name)
		names[c.Name] = true
		assert.LessOrEqual(t, len(c.Description), 100)
	}
	for _, k := range model.ActionKinds {
		assert.True(t, names[string(k)], k)
	}
}

func TestActionCommandOptions(t *testing.T) {
	hasOption := func(kind model.ActionKind, name string) bool {
		for _, o := range defs.ActionCommands[kind].Options {
			if o.Name == name {
				return true
			}
		}
		return false
	}

	assert.True(t, hasOption(model.ActionTempBan, defs.OptDuration))
	assert.False(t, hasOption(model.ActionBan, defs.OptDuration))
	assert.False(t, hasOption(model.ActionUnban, defs.OptDM), "unban never notifies")
	assert.False(t, hasOption(model.ActionNote, defs.OptDM), "notes never notify")
	assert.True(t, defs.Warn.Options[1].Required, "warn requires a reason")
}
