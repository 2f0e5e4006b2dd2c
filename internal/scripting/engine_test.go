package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T, script string) *Engine {
	t.Helper()
	dir := t.TempDir()
	if script != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "hooks.lua"), []byte(script), 0o644))
	}
	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestNilEngineIsNoOp(t *testing.T) {
	var e *Engine

	e.OnSeasonEnd(SeasonSummary{Name: "S1"})
	cmds, ok := e.OnRewardGrant("ABC", 1, []string{"cmd"})
	assert.True(t, ok)
	assert.Equal(t, []string{"cmd"}, cmds)
	assert.Equal(t, "text", e.FormatTag("p1", "text"))
	e.Close()
}

func TestMissingDirectory(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "nope"), zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	// no hooks registered, everything defaults
	cmds, ok := e.OnRewardGrant("ABC", 1, []string{"cmd"})
	assert.True(t, ok)
	assert.Equal(t, []string{"cmd"}, cmds)
}

func TestBrokenScriptFailsLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.lua"), []byte("function ("), 0o644))

	_, err := NewEngine(dir, zap.NewNop())
	assert.Error(t, err)
}

func TestOnSeasonEnd(t *testing.T) {
	e := newTestEngine(t, `
seen = nil
function on_season_end(season)
    seen = season.name .. "/" .. season.winner_tag .. "/" .. season.winner_points
end
`)
	e.OnSeasonEnd(SeasonSummary{ID: 3, Name: "S3", WinnerTag: "ABC", WinnerPoints: 250})

	got := e.vm.GetGlobal("seen")
	assert.Equal(t, "S3/ABC/250", got.String())
}

func TestOnRewardGrantVeto(t *testing.T) {
	e := newTestEngine(t, `
function on_reward_grant(clan_tag, position, commands)
    if position > 3 then
        return false
    end
    return true
end
`)
	_, ok := e.OnRewardGrant("ABC", 1, []string{"cmd"})
	assert.True(t, ok)

	_, ok = e.OnRewardGrant("ABC", 4, []string{"cmd"})
	assert.False(t, ok)
}

func TestOnRewardGrantRewrite(t *testing.T) {
	e := newTestEngine(t, `
function on_reward_grant(clan_tag, position, commands)
    return { "say " .. clan_tag .. " finished " .. position }
end
`)
	cmds, ok := e.OnRewardGrant("ABC", 2, []string{"original"})
	assert.True(t, ok)
	assert.Equal(t, []string{"say ABC finished 2"}, cmds)
}

func TestOnRewardGrantOtherReturnKeepsCommands(t *testing.T) {
	e := newTestEngine(t, `
function on_reward_grant(clan_tag, position, commands)
    return 42
end
`)
	cmds, ok := e.OnRewardGrant("ABC", 1, []string{"a", "b"})
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, cmds)
}

func TestOnRewardGrantErrorSwallowed(t *testing.T) {
	e := newTestEngine(t, `
function on_reward_grant(clan_tag, position, commands)
    error("boom")
end
`)
	cmds, ok := e.OnRewardGrant("ABC", 1, []string{"cmd"})
	assert.True(t, ok)
	assert.Equal(t, []string{"cmd"}, cmds)
}

func TestFormatTag(t *testing.T) {
	e := newTestEngine(t, `
function format_tag(player_id, text)
    return "[" .. text .. "]"
end
`)
	assert.Equal(t, "[Champion]", e.FormatTag("p1", "Champion"))
}

func TestFormatTagNonStringReturn(t *testing.T) {
	e := newTestEngine(t, `
function format_tag(player_id, text)
    return nil
end
`)
	assert.Equal(t, "Champion", e.FormatTag("p1", "Champion"))
}
