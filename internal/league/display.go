package league

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hliga/server/internal/persist"
	"go.uber.org/zap"
)

// DisplayEntry is one ranking display the host renders somewhere in the
// world: position N of the leaderboard shown at Location with Label.
// The league stores and serves the registry; rendering is the host's
// concern.
type DisplayEntry struct {
	Position int
	Label    string
	Location string // opaque host location string, e.g. "world:100:64:-20"
}

// DisplayManager owns the ranking display registry.
type DisplayManager struct {
	mu      sync.Mutex
	entries map[int]DisplayEntry

	repo *persist.DisplayRepo
	log  *zap.Logger
}

func NewDisplayManager(repo *persist.DisplayRepo, log *zap.Logger) *DisplayManager {
	return &DisplayManager{
		entries: make(map[int]DisplayEntry),
		repo:    repo,
		log:     log,
	}
}

// Load populates the registry from the database. Called at startup.
func (m *DisplayManager) Load(ctx context.Context) error {
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
		m.entries[r.Position] = DisplayEntry{
			Position: r.Position,
			Label:    r.Label,
			Location: r.Location,
		}
	}
	return nil
}

// Set creates or moves a display entry for a leaderboard position.
func (m *DisplayManager) Set(entry DisplayEntry) bool {
	if entry.Position <= 0 {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		row := persist.DisplayRow{
			Position: entry.Position,
			Label:    entry.Label,
			Location: entry.Location,
		}
		if err := m.repo.Upsert(ctx, row); err != nil {
			m.log.Error("persist display failed", zap.Int("position", entry.Position), zap.Error(err))
			return false
		}
	}

	m.entries[entry.Position] = entry
	return true
}

// Remove deletes the display entry for a position.
func (m *DisplayManager) Remove(position int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[position]; !ok {
		return false
	}

	if m.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.repo.Delete(ctx, position); err != nil {
			m.log.Error("delete display failed", zap.Int("position", position), zap.Error(err))
			return false
		}
	}

	delete(m.entries, position)
	return true
}

// Entries returns all display entries ordered by position.
func (m *DisplayManager) Entries() []DisplayEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DisplayEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}
