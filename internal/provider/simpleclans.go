package provider

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// SCClanRow is one clan row from the SimpleClans-owned tables.
type SCClanRow struct {
	Tag      string
	ColorTag string
	Name     string
}

// SCMemberRow is one membership row from the SimpleClans-owned tables.
type SCMemberRow struct {
	ClanTag    string
	PlayerID   string
	PlayerName string
	Leader     bool
}

// SimpleClansSource loads the SimpleClans data set. Implemented by
// persist.SimpleClansRepo against the plugin's own tables.
type SimpleClansSource interface {
	LoadAll(ctx context.Context) ([]SCClanRow, []SCMemberRow, error)
}

// SimpleClansHook adapts a SimpleClans installation. The data set is
// loaded into memory via Refresh and queries are served from that
// snapshot, so every ClanProvider method stays synchronous and I/O-free.
//
// Tag resolution is exact-case only, matching SimpleClans' own policy.
type SimpleClansHook struct {
	src      SimpleClansSource
	presence Presence
	log      *zap.Logger

	mu       sync.RWMutex
	clans    map[string]*scClan // tag (exact case) → record
	byPlayer map[string]string  // playerID → tag
	loaded   bool
}

type scClan struct {
	row     SCClanRow
	members []SCMemberRow
}

func NewSimpleClansHook(src SimpleClansSource, presence Presence, log *zap.Logger) *SimpleClansHook {
	return &SimpleClansHook{
		src:      src,
		presence: presence,
		log:      log,
		clans:    make(map[string]*scClan),
		byPlayer: make(map[string]string),
	}
}

// Refresh reloads the snapshot from the SimpleClans tables. A failed
// refresh keeps the previous snapshot; the hook only reports unavailable
// until the first successful load.
func (h *SimpleClansHook) Refresh(ctx context.Context) error {
	clanRows, memberRows, err := h.src.LoadAll(ctx)
	if err != nil {
		h.log.Debug("simpleclans refresh failed", zap.Error(err))
		return err
	}

	clans := make(map[string]*scClan, len(clanRows))
	byPlayer := make(map[string]string, len(memberRows))
	for _, c := range clanRows {
		clans[c.Tag] = &scClan{row: c}
	}
	for _, m := range memberRows {
		c, ok := clans[m.ClanTag]
		if !ok {
			continue // orphan membership row, skip
		}
		c.members = append(c.members, m)
		byPlayer[m.PlayerID] = m.ClanTag
	}

	h.mu.Lock()
	h.clans = clans
	h.byPlayer = byPlayer
	h.loaded = true
	h.mu.Unlock()
	return nil
}

func (h *SimpleClansHook) Name() string { return "simpleclans" }

func (h *SimpleClansHook) Available() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loaded
}

func (h *SimpleClansHook) Clan(tag string) Lookup[*GenericClan] {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.loaded {
		return Degraded[*GenericClan]()
	}
	c, ok := h.clans[tag]
	if !ok {
		return Miss[*GenericClan]()
	}
	return Hit(h.convert(c))
}

func (h *SimpleClansHook) PlayerClan(playerID string) Lookup[*GenericClan] {
	tag := h.PlayerClanTag(playerID)
	if !tag.Found() {
		return Lookup[*GenericClan]{State: tag.State}
	}
	return h.Clan(tag.Value)
}

func (h *SimpleClansHook) PlayerClanTag(playerID string) Lookup[string] {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.loaded {
		return Degraded[string]()
	}
	tag, ok := h.byPlayer[playerID]
	if !ok {
		return Miss[string]()
	}
	return Hit(tag)
}

func (h *SimpleClansHook) AllClanTags() Lookup[[]string] {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.loaded {
		return Degraded[[]string]()
	}
	tags := make([]string, 0, len(h.clans))
	for tag := range h.clans {
		tags = append(tags, tag)
	}
	return Hit(tags)
}

func (h *SimpleClansHook) AllClans() Lookup[[]*GenericClan] {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.loaded {
		return Degraded[[]*GenericClan]()
	}
	out := make([]*GenericClan, 0, len(h.clans))
	for _, c := range h.clans {
		out = append(out, h.convert(c))
	}
	return Hit(out)
}

func (h *SimpleClansHook) ClanMembers(tag string) Lookup[[]string] {
	c := h.Clan(tag)
	if !c.Found() {
		return Lookup[[]string]{State: c.State}
	}
	return Hit(c.Value.MemberIDs)
}

func (h *SimpleClansHook) OnlineClanMembers(tag string) Lookup[[]string] {
	c := h.Clan(tag)
	if !c.Found() {
		return Lookup[[]string]{State: c.State}
	}
	return Hit(c.Value.OnlineMembers)
}

func (h *SimpleClansHook) ClanLeaderName(tag string) Lookup[string] {
	c := h.Clan(tag)
	if !c.Found() {
		return Lookup[string]{State: c.State}
	}
	if c.Value.LeaderName == "" {
		return Miss[string]()
	}
	return Hit(c.Value.LeaderName)
}

func (h *SimpleClansHook) ClanMemberCount(tag string) int {
	return len(h.ClanMembers(tag).Or(nil))
}

func (h *SimpleClansHook) IsPlayerLeader(playerID string) bool {
	c := h.PlayerClan(playerID)
	return c.Found() && c.Value.LeaderID == playerID
}

func (h *SimpleClansHook) IsPlayerInClan(playerID string) bool {
	return h.PlayerClanTag(playerID).Found()
}

func (h *SimpleClansHook) ClanExists(tag string) bool {
	return h.Clan(tag).Found()
}

func (h *SimpleClansHook) ColoredClanTag(tag string) string {
	c := h.Clan(tag)
	if !c.Found() || c.Value.ColoredTag == "" {
		return tag
	}
	return c.Value.ColoredTag
}

func (h *SimpleClansHook) ClanName(tag string) string {
	c := h.Clan(tag)
	if !c.Found() || c.Value.Name == "" {
		return tag
	}
	return c.Value.Name
}

func (h *SimpleClansHook) SupportsCreation() bool      { return false }
func (h *SimpleClansHook) SupportsDissolution() bool   { return false }
func (h *SimpleClansHook) SupportsMemberEditing() bool { return false }

// convert builds a GenericClan from a snapshot record. Each optional
// field is derived independently so a record missing one feature (no
// leader row, blank color tag) still yields a usable snapshot.
// Caller holds at least a read lock.
func (h *SimpleClansHook) convert(c *scClan) *GenericClan {
	g := &GenericClan{
		Tag:    c.row.Tag,
		Source: h.Name(),
		Native: c.row,
	}

	g.Name = c.row.Name
	if g.Name == "" {
		g.Name = c.row.Tag
	}

	g.ColoredTag = c.row.ColorTag
	if g.ColoredTag == "" {
		g.ColoredTag = c.row.Tag
	}

	for _, m := range c.members {
		g.MemberIDs = append(g.MemberIDs, m.PlayerID)
		if m.Leader {
			g.LeaderID = m.PlayerID
			g.LeaderName = m.PlayerName
		}
		if h.presence != nil && h.presence.Online(m.PlayerID) {
			g.OnlineMembers = append(g.OnlineMembers, m.PlayerID)
		}
	}
	return g
}

// normalizeTag is shared by adapters that index case-insensitively.
func normalizeTag(tag string) string {
	return strings.ToLower(tag)
}
