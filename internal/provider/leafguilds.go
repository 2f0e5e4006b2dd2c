package provider

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// LeafGuildsHook adapts a LeafGuilds installation by reading the plugin's
// guilds.yml data file into memory. Queries are served from the parsed
// snapshot; Reload re-reads the file.
//
// Tag resolution tries exact case first, then falls back to a
// case-insensitive match — LeafGuilds itself resolves that way. This
// diverges from the SimpleClans adapter on purpose; unifying the two
// policies could change which clan an ambiguous tag resolves to.
type LeafGuildsHook struct {
	path     string
	presence Presence
	log      *zap.Logger

	mu       sync.RWMutex
	guilds   map[string]*lgGuild // tag (exact case) → guild
	byLower  map[string]string   // lowercased tag → exact tag
	byPlayer map[string]string   // playerID → exact tag
	loaded   bool
}

type lgFile struct {
	Guilds []lgGuild `yaml:"guilds"`
}

type lgGuild struct {
	Tag     string     `yaml:"tag"`
	Name    string     `yaml:"name"`
	Color   string     `yaml:"color"`
	Leader  lgMember   `yaml:"leader"`
	Members []lgMember `yaml:"members"`
}

type lgMember struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

func NewLeafGuildsHook(path string, presence Presence, log *zap.Logger) *LeafGuildsHook {
	return &LeafGuildsHook{
		path:     path,
		presence: presence,
		log:      log,
		guilds:   make(map[string]*lgGuild),
		byLower:  make(map[string]string),
		byPlayer: make(map[string]string),
	}
}

// Reload re-reads guilds.yml. A missing or malformed file leaves the
// previous snapshot in place; the hook reports unavailable until the
// first successful load.
func (h *LeafGuildsHook) Reload() error {
	raw, err := os.ReadFile(h.path)
	if err != nil {
		h.log.Debug("leafguilds data not readable", zap.String("path", h.path), zap.Error(err))
		return fmt.Errorf("read %s: %w", h.path, err)
	}
	var f lgFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		h.log.Debug("leafguilds data malformed", zap.String("path", h.path), zap.Error(err))
		return fmt.Errorf("parse %s: %w", h.path, err)
	}

	guilds := make(map[string]*lgGuild, len(f.Guilds))
	byLower := make(map[string]string, len(f.Guilds))
	byPlayer := make(map[string]string)
	for i := range f.Guilds {
		g := &f.Guilds[i]
		if g.Tag == "" {
			continue
		}
		guilds[g.Tag] = g
		byLower[normalizeTag(g.Tag)] = g.Tag
		for _, m := range g.Members {
			if m.ID != "" {
				byPlayer[m.ID] = g.Tag
			}
		}
		if g.Leader.ID != "" {
			byPlayer[g.Leader.ID] = g.Tag
		}
	}

	h.mu.Lock()
	h.guilds = guilds
	h.byLower = byLower
	h.byPlayer = byPlayer
	h.loaded = true
	h.mu.Unlock()
	return nil
}

func (h *LeafGuildsHook) Name() string { return "leafguilds" }

func (h *LeafGuildsHook) Available() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loaded
}

func (h *LeafGuildsHook) Clan(tag string) Lookup[*GenericClan] {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.loaded {
		return Degraded[*GenericClan]()
	}
	g, ok := h.guilds[tag]
	if !ok {
		// case-insensitive fallback
		exact, lok := h.byLower[normalizeTag(tag)]
		if !lok {
			return Miss[*GenericClan]()
		}
		g = h.guilds[exact]
	}
	return Hit(h.convert(g))
}

func (h *LeafGuildsHook) PlayerClan(playerID string) Lookup[*GenericClan] {
	tag := h.PlayerClanTag(playerID)
	if !tag.Found() {
		return Lookup[*GenericClan]{State: tag.State}
	}
	return h.Clan(tag.Value)
}

func (h *LeafGuildsHook) PlayerClanTag(playerID string) Lookup[string] {
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

func (h *LeafGuildsHook) AllClanTags() Lookup[[]string] {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.loaded {
		return Degraded[[]string]()
	}
	tags := make([]string, 0, len(h.guilds))
	for tag := range h.guilds {
		tags = append(tags, tag)
	}
	return Hit(tags)
}

func (h *LeafGuildsHook) AllClans() Lookup[[]*GenericClan] {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.loaded {
		return Degraded[[]*GenericClan]()
	}
	out := make([]*GenericClan, 0, len(h.guilds))
	for _, g := range h.guilds {
		out = append(out, h.convert(g))
	}
	return Hit(out)
}

func (h *LeafGuildsHook) ClanMembers(tag string) Lookup[[]string] {
	c := h.Clan(tag)
	if !c.Found() {
		return Lookup[[]string]{State: c.State}
	}
	return Hit(c.Value.MemberIDs)
}

func (h *LeafGuildsHook) OnlineClanMembers(tag string) Lookup[[]string] {
	c := h.Clan(tag)
	if !c.Found() {
		return Lookup[[]string]{State: c.State}
	}
	return Hit(c.Value.OnlineMembers)
}

func (h *LeafGuildsHook) ClanLeaderName(tag string) Lookup[string] {
	c := h.Clan(tag)
	if !c.Found() {
		return Lookup[string]{State: c.State}
	}
	if c.Value.LeaderName == "" {
		return Miss[string]()
	}
	return Hit(c.Value.LeaderName)
}

func (h *LeafGuildsHook) ClanMemberCount(tag string) int {
	return len(h.ClanMembers(tag).Or(nil))
}

func (h *LeafGuildsHook) IsPlayerLeader(playerID string) bool {
	c := h.PlayerClan(playerID)
	return c.Found() && c.Value.LeaderID == playerID
}

func (h *LeafGuildsHook) IsPlayerInClan(playerID string) bool {
	return h.PlayerClanTag(playerID).Found()
}

func (h *LeafGuildsHook) ClanExists(tag string) bool {
	return h.Clan(tag).Found()
}

func (h *LeafGuildsHook) ColoredClanTag(tag string) string {
	c := h.Clan(tag)
	if !c.Found() || c.Value.ColoredTag == "" {
		return tag
	}
	return c.Value.ColoredTag
}

func (h *LeafGuildsHook) ClanName(tag string) string {
	c := h.Clan(tag)
	if !c.Found() || c.Value.Name == "" {
		return tag
	}
	return c.Value.Name
}

func (h *LeafGuildsHook) SupportsCreation() bool      { return false }
func (h *LeafGuildsHook) SupportsDissolution() bool   { return false }
func (h *LeafGuildsHook) SupportsMemberEditing() bool { return false }

// convert builds a GenericClan from a parsed guild entry. Optional fields
// (color, leader) degrade independently. Caller holds at least a read lock.
func (h *LeafGuildsHook) convert(g *lgGuild) *GenericClan {
	gc := &GenericClan{
		Tag:        g.Tag,
		Source:     h.Name(),
		Native:     g,
		LeaderID:   g.Leader.ID,
		LeaderName: g.Leader.Name,
	}

	gc.Name = g.Name
	if gc.Name == "" {
		gc.Name = g.Tag
	}

	gc.ColoredTag = g.Tag
	if g.Color != "" {
		gc.ColoredTag = g.Color + g.Tag
	}

	seen := make(map[string]bool, len(g.Members)+1)
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		gc.MemberIDs = append(gc.MemberIDs, id)
		if h.presence != nil && h.presence.Online(id) {
			gc.OnlineMembers = append(gc.OnlineMembers, id)
		}
	}
	for _, m := range g.Members {
		add(m.ID)
	}
	add(g.Leader.ID) // leader counts as a member even when not listed
	return gc
}
