package league

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSeasons(t *testing.T, points *PointsManager) *SeasonManager {
	t.Helper()
	if points == nil {
		points = newTestPoints(t, nil, false)
	}
	return NewSeasonManager(points, nil, 10, zap.NewNop())
}

func TestStartSeasonValidation(t *testing.T) {
	m := newTestSeasons(t, nil)

	tests := []struct {
		name     string
		season   string
		duration time.Duration
	}{
		{"empty name", "", 7 * 24 * time.Hour},
		{"zero duration", "S1", 0},
		{"negative duration", "S1", -time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, m.StartSeason(tt.season, tt.duration))
			_, active := m.ActiveSeason()
			assert.False(t, active)
		})
	}

	assert.False(t, m.StartSeasonUntil("S1", time.Now().Add(-time.Hour)),
		"end date must be strictly in the future")
}

func TestSeasonMutualExclusion(t *testing.T) {
	m := newTestSeasons(t, nil)

	require.True(t, m.StartSeason("S1", 7*24*time.Hour))
	assert.False(t, m.StartSeason("S2", 7*24*time.Hour))

	active, ok := m.ActiveSeason()
	require.True(t, ok)
	assert.Equal(t, "S1", active.Name)
}

func TestEndSeasonWinner(t *testing.T) {
	points := newTestPoints(t, nil, false)
	points.SetPoints("A", 100)
	points.SetPoints("B", 250)
	points.SetPoints("C", 0)

	m := newTestSeasons(t, points)
	require.True(t, m.StartSeason("S1", 7*24*time.Hour))
	require.True(t, m.EndSeason())

	seasons := m.Seasons()
	require.Len(t, seasons, 1)
	s := seasons[0]
	assert.False(t, s.Active)
	assert.Equal(t, "B", s.WinnerTag)
	assert.Equal(t, int64(250), s.WinnerPoints)
	// zero-point clans are not part of the snapshot
	require.Len(t, s.TopClans, 2)
	assert.Equal(t, "B", s.TopClans[0].Tag)
	assert.Equal(t, "A", s.TopClans[1].Tag)

	_, active := m.ActiveSeason()
	assert.False(t, active)
}

func TestEndSeasonNoWinner(t *testing.T) {
	points := newTestPoints(t, nil, false)
	points.SetPoints("A", 0)

	m := newTestSeasons(t, points)
	require.True(t, m.StartSeason("S1", time.Hour))
	require.True(t, m.EndSeason())

	s := m.Seasons()[0]
	assert.Empty(t, s.WinnerTag)
	assert.Zero(t, s.WinnerPoints)
	assert.Empty(t, s.TopClans)
}

func TestEndSeasonWithoutActive(t *testing.T) {
	m := newTestSeasons(t, nil)
	assert.False(t, m.EndSeason())

	require.True(t, m.StartSeason("S1", time.Hour))
	require.True(t, m.EndSeason())
	assert.False(t, m.EndSeason(), "ending twice must fail")
}

func TestSeasonHistoryOrder(t *testing.T) {
	m := newTestSeasons(t, nil)

	for _, name := range []string{"S1", "S2", "S3"} {
		require.True(t, m.StartSeason(name, time.Hour))
		require.True(t, m.EndSeason())
	}

	seasons := m.Seasons()
	require.Len(t, seasons, 3)
	assert.Equal(t, "S1", seasons[0].Name)
	assert.Equal(t, "S2", seasons[1].Name)
	assert.Equal(t, "S3", seasons[2].Name)
	assert.True(t, seasons[0].ID < seasons[1].ID && seasons[1].ID < seasons[2].ID)
	for _, s := range seasons {
		assert.False(t, s.Active, "an ended season never reverts to active")
	}
}

func TestEndSeasonEarlyCloseInstant(t *testing.T) {
	m := newTestSeasons(t, nil)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	require.True(t, m.StartSeason("S1", 24*time.Hour))

	// ended 6 hours in: history records when it actually closed, not the
	// scheduled end
	m.now = func() time.Time { return base.Add(6 * time.Hour) }
	require.True(t, m.EndSeason())

	s := m.Seasons()[0]
	assert.Equal(t, base.Add(6*time.Hour), s.EndAt)
}

func TestDueForEnd(t *testing.T) {
	m := newTestSeasons(t, nil)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	require.True(t, m.StartSeason("S1", 24*time.Hour))
	assert.False(t, m.DueForEnd(base.Add(23*time.Hour)))
	assert.True(t, m.DueForEnd(base.Add(24*time.Hour)))
	assert.True(t, m.DueForEnd(base.Add(48*time.Hour)))

	require.True(t, m.EndSeason())
	assert.False(t, m.DueForEnd(base.Add(48*time.Hour)))
}
