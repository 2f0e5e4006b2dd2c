package league

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hliga/server/internal/data"
	"github.com/hliga/server/internal/scripting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSink struct {
	commands []string
	err      error
}

func (s *recordingSink) Execute(cmd string) error {
	s.commands = append(s.commands, cmd)
	return s.err
}

func loadRewardFixture(t *testing.T, content string) *data.RewardTable {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rewards.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	tbl, err := data.LoadRewardTable(path)
	require.NoError(t, err)
	return tbl
}

func TestDistributePlaceholders(t *testing.T) {
	tbl := loadRewardFixture(t, `rewards:
  - position: 1
    commands:
      - "give {leader} diamond 10"
      - "broadcast {clan_name} ({clan}) won {season} with {points} points at #{position}"
  - position: 3
    commands: ["give {leader} iron_ingot 5"]
`)
	sink := &recordingSink{}
	m := NewRewardManager(tbl, sink, nil, zap.NewNop())

	season := Season{
		Name: "Spring",
		TopClans: []ClanPoints{
			{Tag: "ABC", Name: "Alpha", Points: 250, LeaderName: "Steve"},
			{Tag: "XYZ", Name: "Xeno", Points: 100, LeaderName: "Alex"},
		},
	}
	granted := m.Distribute(season)

	assert.Equal(t, 1, granted, "position 2 has no reward, position 3 has no clan")
	require.Len(t, sink.commands, 2)
	assert.Equal(t, "give Steve diamond 10", sink.commands[0])
	assert.Equal(t, "broadcast Alpha (ABC) won Spring with 250 points at #1", sink.commands[1])
}

func TestDistributeScriptVeto(t *testing.T) {
	dir := t.TempDir()
	script := `
function on_reward_grant(clan_tag, position, commands)
    if clan_tag == "BAN" then
        return false
    end
    return commands
end
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hooks.lua"), []byte(script), 0o644))
	engine, err := scripting.NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	defer engine.Close()

	tbl := loadRewardFixture(t, `rewards:
  - position: 1
    commands: ["reward {clan}"]
  - position: 2
    commands: ["reward {clan}"]
`)
	sink := &recordingSink{}
	m := NewRewardManager(tbl, sink, engine, zap.NewNop())

	season := Season{TopClans: []ClanPoints{{Tag: "BAN"}, {Tag: "OK"}}}
	granted := m.Distribute(season)

	assert.Equal(t, 1, granted)
	assert.Equal(t, []string{"reward OK"}, sink.commands)
}

func TestDistributeSinkErrorContinues(t *testing.T) {
	tbl := loadRewardFixture(t, `rewards:
  - position: 1
    commands: ["a", "b"]
`)
	sink := &recordingSink{err: errors.New("host rejected")}
	m := NewRewardManager(tbl, sink, nil, zap.NewNop())

	granted := m.Distribute(Season{TopClans: []ClanPoints{{Tag: "ABC"}}})

	// a failed command does not abort the position or the run
	assert.Equal(t, 1, granted)
	assert.Len(t, sink.commands, 2)
}

func TestDistributeNilTableOrSink(t *testing.T) {
	m := NewRewardManager(nil, &recordingSink{}, nil, zap.NewNop())
	assert.Zero(t, m.Distribute(Season{TopClans: []ClanPoints{{Tag: "ABC"}}}))

	tbl := loadRewardFixture(t, `rewards:
  - position: 1
    commands: ["a"]
`)
	m = NewRewardManager(tbl, nil, nil, zap.NewNop())
	assert.Zero(t, m.Distribute(Season{TopClans: []ClanPoints{{Tag: "ABC"}}}))
}
