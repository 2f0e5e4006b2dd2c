package league

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hliga/server/internal/persist"
	"github.com/hliga/server/internal/scripting"
	"go.uber.org/zap"
)

// TagType distinguishes cosmetic badge origins.
type TagType string

const (
	// TagRanking marks badges derived from the live ranking.
	TagRanking TagType = "RANKING"
	// TagSeason marks badges earned from a season outcome.
	TagSeason TagType = "SEASON"
)

// PlayerTag is one cosmetic badge bound to a player. A player may hold
// several tags, but never two with the same (Type, Position) — for
// SEASON tags, (Type, SeasonNumber, Position) — key.
type PlayerTag struct {
	PlayerID     string
	Type         TagType
	Position     int
	SeasonNumber int32 // 0 for RANKING tags
	ObtainedAt   time.Time
	Active       bool
	Text         string // formatted display text
	Name         string
}

func (t PlayerTag) key() string {
	return fmt.Sprintf("%s/%d/%d", t.Type, t.SeasonNumber, t.Position)
}

// TagManager owns the player-tag registry. Tags are granted when a
// player qualifies and removed on request; there is no automatic expiry.
type TagManager struct {
	mu       sync.Mutex
	byPlayer map[string]map[string]*PlayerTag // playerID → key → tag

	repo    *persist.TagRepo
	scripts *scripting.Engine
	log     *zap.Logger
	now     func() time.Time
}

// NewTagManager creates a tag registry. repo and scripts may be nil.
func NewTagManager(repo *persist.TagRepo, scripts *scripting.Engine, log *zap.Logger) *TagManager {
	return &TagManager{
		byPlayer: make(map[string]map[string]*PlayerTag),
		repo:     repo,
		scripts:  scripts,
		log:      log,
		now:      time.Now,
	}
}

// Load populates the registry from the database. Called at startup.
func (m *TagManager) Load(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}
	rows, err := m.repo.LoadAll(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		t := &PlayerTag{
			PlayerID:     r.PlayerID,
			Type:         TagType(r.TagType),
			Position:     r.Position,
			SeasonNumber: r.SeasonNumber,
			ObtainedAt:   r.ObtainedAt,
			Active:       r.Active,
			Text:         r.Text,
			Name:         r.Name,
		}
		m.put(t)
	}
	return nil
}

// Grant adds a tag to a player. Fails on malformed input, on a duplicate
// uniqueness key, or when persistence rejects the grant. RANKING tags
// must carry SeasonNumber 0.
func (m *TagManager) Grant(t PlayerTag) bool {
	if t.PlayerID == "" || t.Position <= 0 {
		return false
	}
	switch t.Type {
	case TagRanking:
		if t.SeasonNumber != 0 {
			return false
		}
	case TagSeason:
		if t.SeasonNumber <= 0 {
			return false
		}
	default:
		return false
	}

	t.ObtainedAt = m.now()
	t.Active = true
	t.Text = m.scripts.FormatTag(t.PlayerID, t.Text)

	m.mu.Lock()
	defer m.mu.Unlock()

	if tags, ok := m.byPlayer[t.PlayerID]; ok {
		if _, dup := tags[t.key()]; dup {
			return false
		}
	}

	// DB first, memory second
	if m.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		row := persist.PlayerTagRow{
			PlayerID:     t.PlayerID,
			TagType:      string(t.Type),
			Position:     t.Position,
			SeasonNumber: t.SeasonNumber,
			ObtainedAt:   t.ObtainedAt,
			Active:       t.Active,
			Text:         t.Text,
			Name:         t.Name,
		}
		if err := m.repo.Insert(ctx, row); err != nil {
			m.log.Error("persist tag grant failed", zap.String("player", t.PlayerID), zap.Error(err))
			return false
		}
	}

	m.put(&t)
	return true
}

// Revoke removes a tag from a player. Fails when the player does not
// hold a tag with that key.
func (m *TagManager) Revoke(playerID string, typ TagType, seasonNumber int32, position int) bool {
	key := PlayerTag{Type: typ, SeasonNumber: seasonNumber, Position: position}.key()

	m.mu.Lock()
	defer m.mu.Unlock()

	tags, ok := m.byPlayer[playerID]
	if !ok {
		return false
	}
	if _, held := tags[key]; !held {
		return false
	}

	if m.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.repo.Delete(ctx, playerID, string(typ), seasonNumber, position); err != nil {
			m.log.Error("persist tag revoke failed", zap.String("player", playerID), zap.Error(err))
			return false
		}
	}

	delete(tags, key)
	if len(tags) == 0 {
		delete(m.byPlayer, playerID)
	}
	return true
}

// SetActive toggles a held tag's active flag.
func (m *TagManager) SetActive(playerID string, typ TagType, seasonNumber int32, position int, active bool) bool {
	key := PlayerTag{Type: typ, SeasonNumber: seasonNumber, Position: position}.key()

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.byPlayer[playerID][key]
	if !ok {
		return false
	}

	if m.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.repo.SetActive(ctx, playerID, string(typ), seasonNumber, position, active); err != nil {
			m.log.Error("persist tag toggle failed", zap.String("player", playerID), zap.Error(err))
			return false
		}
	}

	t.Active = active
	return true
}

// PlayerTags returns copies of all tags a player holds, oldest first.
func (m *TagManager) PlayerTags(playerID string) []PlayerTag {
	m.mu.Lock()
	defer m.mu.Unlock()
	tags := m.byPlayer[playerID]
	out := make([]PlayerTag, 0, len(tags))
	for _, t := range tags {
		out = append(out, *t)
	}
	sortTags(out)
	return out
}

// Count returns the total number of granted tags.
func (m *TagManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, tags := range m.byPlayer {
		n += len(tags)
	}
	return n
}

// put stores a tag. Caller holds the lock.
func (m *TagManager) put(t *PlayerTag) {
	tags, ok := m.byPlayer[t.PlayerID]
	if !ok {
		tags = make(map[string]*PlayerTag)
		m.byPlayer[t.PlayerID] = tags
	}
	tags[t.key()] = t
}

// sortTags orders by obtained time, then key for determinism on equal
// instants.
func sortTags(tags []PlayerTag) {
	sort.Slice(tags, func(i, j int) bool {
		if !tags[i].ObtainedAt.Equal(tags[j].ObtainedAt) {
			return tags[i].ObtainedAt.Before(tags[j].ObtainedAt)
		}
		return tags[i].key() < tags[j].key()
	})
}
