package league

import (
	"strconv"
	"strings"

	"github.com/hliga/server/internal/data"
	"github.com/hliga/server/internal/scripting"
	"go.uber.org/zap"
)

// CommandSink executes reward commands on the host. The league never
// interprets command strings itself.
type CommandSink interface {
	Execute(command string) error
}

// LogSink is the default sink when no host is attached: it logs each
// command instead of executing it.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Execute(command string) error {
	s.log.Info("reward command", zap.String("command", command))
	return nil
}

// RewardManager distributes configured rewards when a season closes. The
// reward table is static configuration; distribution reads it, never
// writes it.
type RewardManager struct {
	table   *data.RewardTable
	sink    CommandSink
	scripts *scripting.Engine
	log     *zap.Logger
}

func NewRewardManager(table *data.RewardTable, sink CommandSink, scripts *scripting.Engine, log *zap.Logger) *RewardManager {
	return &RewardManager{
		table:   table,
		sink:    sink,
		scripts: scripts,
		log:     log,
	}
}

// Distribute grants rewards for a closed season's top snapshot. Returns
// the number of positions rewarded. The on_reward_grant script hook may
// veto or rewrite the command list per position.
func (m *RewardManager) Distribute(season Season) int {
	if m.table == nil || m.sink == nil {
		return 0
	}

	granted := 0
	for i, entry := range season.TopClans {
		position := i + 1
		reward := m.table.Get(position)
		if reward == nil {
			continue
		}

		commands := make([]string, 0, len(reward.Commands))
		for _, tmpl := range reward.Commands {
			commands = append(commands, expandPlaceholders(tmpl, entry, position, season))
		}

		commands, allowed := m.scripts.OnRewardGrant(entry.Tag, position, commands)
		if !allowed {
			m.log.Debug("reward vetoed by script",
				zap.String("clan", entry.Tag), zap.Int("position", position))
			continue
		}

		for _, cmd := range commands {
			if err := m.sink.Execute(cmd); err != nil {
				m.log.Error("reward command failed",
					zap.String("clan", entry.Tag), zap.String("command", cmd), zap.Error(err))
			}
		}
		granted++
	}
	return granted
}

func expandPlaceholders(tmpl string, entry ClanPoints, position int, season Season) string {
	r := strings.NewReplacer(
		"{clan}", entry.Tag,
		"{clan_name}", entry.Name,
		"{leader}", entry.LeaderName,
		"{points}", strconv.FormatInt(entry.Points, 10),
		"{position}", strconv.Itoa(position),
		"{season}", season.Name,
	)
	return r.Replace(tmpl)
}
