package league

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/hliga/server/internal/persist"
	"go.uber.org/zap"
)

// Season is one bounded scoring period. Once Active flips to false the
// winner fields and TopClans snapshot are set exactly once and never
// change again; a new period means a new Season.
type Season struct {
	ID           int32
	Name         string
	StartAt      time.Time
	EndAt        time.Time
	Active       bool
	WinnerTag    string // empty when no clan scored
	WinnerPoints int64
	TopClans     []ClanPoints // leaderboard snapshot taken at close time
}

// SeasonManager owns the season lifecycle. At most one season is active
// at any instant; a single mutex makes concurrent start/end calls
// mutually exclusive. The manager never polls for expiry itself — the
// daemon's ticker asks DueForEnd and drives the transition through the
// facade so the event pair fires.
type SeasonManager struct {
	mu      sync.Mutex
	seasons []*Season // creation order, never shrinks
	active  *Season
	nextID  int32

	points  *PointsManager
	repo    *persist.SeasonRepo
	topSize int
	log     *zap.Logger
	now     func() time.Time
}

// NewSeasonManager creates a season manager. repo may be nil for a
// memory-only manager (tests).
func NewSeasonManager(points *PointsManager, repo *persist.SeasonRepo, topSize int, log *zap.Logger) *SeasonManager {
	if topSize <= 0 {
		topSize = 10
	}
	return &SeasonManager{
		nextID:  1,
		points:  points,
		repo:    repo,
		topSize: topSize,
		log:     log,
		now:     time.Now,
	}
}

// Load populates season history from the database. Called at startup.
func (m *SeasonManager) Load(ctx context.Context) error {
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
		s := &Season{
			ID:           r.ID,
			Name:         r.Name,
			StartAt:      r.StartAt,
			EndAt:        r.EndAt,
			Active:       r.Active,
			WinnerTag:    r.WinnerTag,
			WinnerPoints: r.WinnerPoints,
		}
		if len(r.TopClans) > 0 {
			if err := json.Unmarshal(r.TopClans, &s.TopClans); err != nil {
				m.log.Warn("season top snapshot unreadable", zap.Int32("season", r.ID), zap.Error(err))
			}
		}
		m.seasons = append(m.seasons, s)
		if s.Active {
			m.active = s
		}
		if s.ID >= m.nextID {
			m.nextID = s.ID + 1
		}
	}
	return nil
}

// StartSeason starts a season lasting the given duration.
func (m *SeasonManager) StartSeason(name string, duration time.Duration) bool {
	if duration <= 0 {
		return false
	}
	return m.StartSeasonUntil(name, m.now().Add(duration))
}

// StartSeasonUntil starts a season ending at the given instant. Fails
// with no state change when a season is already active, the name is
// empty, or the end is not strictly in the future.
func (m *SeasonManager) StartSeasonUntil(name string, endAt time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	startAt := m.now()
	if m.active != nil || name == "" || !endAt.After(startAt) {
		return false
	}

	id := m.nextID
	if m.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		dbID, err := m.repo.Insert(ctx, name, startAt, endAt)
		if err != nil {
			m.log.Error("persist season start failed", zap.String("name", name), zap.Error(err))
			return false
		}
		id = dbID
	}
	// DB succeeded — update memory
	if id >= m.nextID {
		m.nextID = id + 1
	}

	s := &Season{
		ID:      id,
		Name:    name,
		StartAt: startAt,
		EndAt:   endAt,
		Active:  true,
	}
	m.seasons = append(m.seasons, s)
	m.active = s
	return true
}

// EndSeason closes the active season: the winner is the clan with the
// highest balance among those above zero (no winner when none qualify),
// the current leaderboard is snapshotted into TopClans, and Active flips
// to false for good. Fails when no season is active.
func (m *SeasonManager) EndSeason() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.active
	if s == nil {
		return false
	}

	top := m.points.TopClans(m.topSize)
	var winnerTag string
	var winnerPoints int64
	if len(top) > 0 {
		winnerTag = top[0].Tag
		winnerPoints = top[0].Points
	}
	endAt := m.now()
	if endAt.After(s.EndAt) {
		endAt = s.EndAt
	}

	if m.repo != nil {
		snapshot, err := json.Marshal(top)
		if err != nil {
			snapshot = []byte("[]")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.repo.Close(ctx, s.ID, winnerTag, winnerPoints, snapshot, endAt); err != nil {
			m.log.Error("persist season close failed", zap.Int32("season", s.ID), zap.Error(err))
			return false
		}
	}

	s.WinnerTag = winnerTag
	s.WinnerPoints = winnerPoints
	s.TopClans = top
	s.EndAt = endAt // actual close instant, so memory and DB agree on early ends
	s.Active = false
	m.active = nil
	return true
}

// ActiveSeason returns a copy of the active season, if any.
func (m *SeasonManager) ActiveSeason() (Season, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return Season{}, false
	}
	return *m.active, true
}

// Seasons returns copies of all seasons ever created, in creation order.
// History is never deleted by the league.
func (m *SeasonManager) Seasons() []Season {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Season, len(m.seasons))
	for i, s := range m.seasons {
		out[i] = *s
	}
	return out
}

// DueForEnd reports whether the active season's end instant has passed.
func (m *SeasonManager) DueForEnd(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active != nil && !now.Before(m.active.EndAt)
}
