package provider

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Manager selects the active clan provider at startup and forwards all
// clan queries to it. It also owns the online-presence set that adapters
// consult for online projections.
//
// Selection happens once: Detect probes candidates in the given order and
// keeps the first available one, falling back to the Null provider. A
// clan source that comes up later in the process lifetime is not picked
// up without a restart. Known limitation, kept from the original design.
type Manager struct {
	log    *zap.Logger
	active ClanProvider

	mu     sync.RWMutex
	online map[string]bool
}

func NewManager(log *zap.Logger) *Manager {
	return &Manager{
		log:    log,
		active: NewNullProvider(),
		online: make(map[string]bool),
	}
}

// Detect probes candidates in order and fixes the first available one as
// the active provider. Call once during startup, before any queries.
func (m *Manager) Detect(candidates ...ClanProvider) {
	for _, c := range candidates {
		if c.Available() {
			m.active = c
			m.log.Info("clan provider selected", zap.String("provider", c.Name()))
			return
		}
	}
	m.active = NewNullProvider()
	m.log.Warn("no clan provider available, using null provider")
}

// Provider returns the active provider.
func (m *Manager) Provider() ClanProvider {
	return m.active
}

// ── Presence ───────────────────────────────────────────────────────

func (m *Manager) PlayerJoined(playerID string) {
	m.mu.Lock()
	m.online[playerID] = true
	m.mu.Unlock()
}

func (m *Manager) PlayerLeft(playerID string) {
	m.mu.Lock()
	delete(m.online, playerID)
	m.mu.Unlock()
}

func (m *Manager) Online(playerID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online[playerID]
}

func (m *Manager) OnlinePlayers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.online))
	for id := range m.online {
		out = append(out, id)
	}
	return out
}

// ── Forwarding ─────────────────────────────────────────────────────

func (m *Manager) PlayerClan(playerID string) Lookup[*GenericClan] {
	return m.active.PlayerClan(playerID)
}

func (m *Manager) PlayerClanTag(playerID string) Lookup[string] {
	return m.active.PlayerClanTag(playerID)
}

func (m *Manager) Clan(tag string) Lookup[*GenericClan] {
	return m.active.Clan(tag)
}

// AllClanTags enumerates clan tags from the active provider. When the
// provider cannot answer (bulk listing unsupported, not yet loaded, or
// confirmed empty), the set is derived from online players' memberships
// instead — a degraded enumeration that misses all-offline clans,
// reported with the Unavailable state so callers can tell. An empty
// confirmed listing takes the fallback too: a source that lists nothing
// while memberships still resolve is not trusted to drive pruning.
func (m *Manager) AllClanTags() Lookup[[]string] {
	tags := m.active.AllClanTags()
	if tags.Found() && len(tags.Value) > 0 {
		sort.Strings(tags.Value)
		return tags
	}

	seen := make(map[string]bool)
	var derived []string
	for _, id := range m.OnlinePlayers() {
		t := m.active.PlayerClanTag(id)
		if t.Found() && !seen[t.Value] {
			seen[t.Value] = true
			derived = append(derived, t.Value)
		}
	}
	sort.Strings(derived)
	return Lookup[[]string]{Value: derived, State: Unavailable}
}

func (m *Manager) AllClans() Lookup[[]*GenericClan] {
	return m.active.AllClans()
}

func (m *Manager) ClanMembers(tag string) Lookup[[]string] {
	return m.active.ClanMembers(tag)
}

func (m *Manager) OnlineClanMembers(tag string) Lookup[[]string] {
	return m.active.OnlineClanMembers(tag)
}

func (m *Manager) ClanLeaderName(tag string) Lookup[string] {
	return m.active.ClanLeaderName(tag)
}

func (m *Manager) ClanMemberCount(tag string) int {
	return m.active.ClanMemberCount(tag)
}

func (m *Manager) IsPlayerLeader(playerID string) bool {
	return m.active.IsPlayerLeader(playerID)
}

func (m *Manager) IsPlayerInClan(playerID string) bool {
	return m.active.IsPlayerInClan(playerID)
}

func (m *Manager) ClanExists(tag string) bool {
	return m.active.ClanExists(tag)
}

func (m *Manager) ColoredClanTag(tag string) string {
	return m.active.ColoredClanTag(tag)
}

func (m *Manager) ClanName(tag string) string {
	return m.active.ClanName(tag)
}
