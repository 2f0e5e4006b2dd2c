package league

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hliga/server/internal/core/event"
	"github.com/hliga/server/internal/data"
	"github.com/hliga/server/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()
	log := zap.NewNop()
	clans := provider.NewManager(log)
	clans.Detect() // null provider
	points := newTestPoints(t, nil, false)
	seasons := NewSeasonManager(points, nil, 10, log)
	tags := NewTagManager(nil, nil, log)
	displays := NewDisplayManager(nil, log)
	return NewAPI(event.NewBus(), clans, points, seasons, tags, nil, displays, nil, nil, nil, log)
}

func TestPointsChangeCancelled(t *testing.T) {
	api := newTestAPI(t)
	require.True(t, api.SetClanPoints("ABC", 100))

	event.Subscribe(api.Bus(), func(ev *PointsChangePre) {
		ev.Cancel()
	})
	postFired := false
	event.Subscribe(api.Bus(), func(*PointsChanged) {
		postFired = true
	})

	assert.False(t, api.AddClanPoints("ABC", 50))
	assert.Equal(t, int64(100), api.ClanPoints("ABC"), "cancelled change must not touch the balance")
	assert.False(t, postFired, "post event must not fire for a cancelled change")
}

func TestPointsChangeEventPair(t *testing.T) {
	api := newTestAPI(t)
	require.True(t, api.SetClanPoints("ABC", 100))

	var pre *PointsChangePre
	var post *PointsChanged
	event.Subscribe(api.Bus(), func(ev *PointsChangePre) { pre = ev })
	event.Subscribe(api.Bus(), func(ev *PointsChanged) { post = ev })

	require.True(t, api.RemoveClanPoints("ABC", 30))

	require.NotNil(t, pre)
	assert.Equal(t, PointsRemove, pre.Op)
	assert.Equal(t, int64(100), pre.Current)
	assert.Equal(t, int64(70), pre.Proposed)

	require.NotNil(t, post)
	assert.Equal(t, int64(100), post.Old)
	assert.Equal(t, int64(70), post.New)
	assert.Equal(t, int64(70), api.ClanPoints("ABC"))
}

func TestPointsValidationFiresNoEvent(t *testing.T) {
	api := newTestAPI(t)

	preFired := false
	event.Subscribe(api.Bus(), func(*PointsChangePre) { preFired = true })

	assert.False(t, api.AddClanPoints("", 10))
	assert.False(t, api.AddClanPoints("ABC", -10))
	assert.False(t, preFired, "validation failures fire no events at all")
}

func TestSeasonStartEventPair(t *testing.T) {
	api := newTestAPI(t)

	var started *SeasonStarted
	event.Subscribe(api.Bus(), func(ev *SeasonStarted) { started = ev })

	require.True(t, api.StartSeason("S1", 7*24*time.Hour))
	require.NotNil(t, started)
	assert.Equal(t, "S1", started.Season.Name)
	assert.True(t, started.Season.Active)
}

func TestSeasonStartCancelled(t *testing.T) {
	api := newTestAPI(t)

	event.Subscribe(api.Bus(), func(ev *SeasonStartPre) { ev.Cancel() })

	assert.False(t, api.StartSeason("S1", time.Hour))
	_, active := api.ActiveSeason()
	assert.False(t, active)
}

func TestSeasonEndCancelled(t *testing.T) {
	api := newTestAPI(t)
	require.True(t, api.StartSeason("S1", time.Hour))

	event.Subscribe(api.Bus(), func(ev *SeasonEndPre) { ev.Cancel() })

	assert.False(t, api.EndSeason())
	active, ok := api.ActiveSeason()
	require.True(t, ok)
	assert.Equal(t, "S1", active.Name)
}

func TestSeasonEndEventCarriesOutcome(t *testing.T) {
	api := newTestAPI(t)
	require.True(t, api.SetClanPoints("B", 250))
	require.True(t, api.SetClanPoints("A", 100))
	require.True(t, api.StartSeason("S1", time.Hour))

	var ended *SeasonEnded
	event.Subscribe(api.Bus(), func(ev *SeasonEnded) { ended = ev })

	require.True(t, api.EndSeason())
	require.NotNil(t, ended)
	assert.Equal(t, "B", ended.Season.WinnerTag)
	assert.Equal(t, int64(250), ended.Season.WinnerPoints)
	assert.False(t, ended.Season.Active)
}

func TestExpireSeasonIfDue(t *testing.T) {
	api := newTestAPI(t)
	require.True(t, api.StartSeason("S1", time.Hour))

	assert.False(t, api.ExpireSeasonIfDue(time.Now()))
	assert.True(t, api.ExpireSeasonIfDue(time.Now().Add(2*time.Hour)))
	_, active := api.ActiveSeason()
	assert.False(t, active)
}

func TestTagEventPairs(t *testing.T) {
	api := newTestAPI(t)

	var added *TagAdded
	var removed *TagRemoved
	event.Subscribe(api.Bus(), func(ev *TagAdded) { added = ev })
	event.Subscribe(api.Bus(), func(ev *TagRemoved) { removed = ev })

	tag := PlayerTag{PlayerID: "p1", Type: TagRanking, Position: 1, Name: "Top 1"}
	require.True(t, api.GrantPlayerTag(tag))
	require.NotNil(t, added)
	assert.Equal(t, "p1", added.Tag.PlayerID)

	// duplicate uniqueness key fails and fires no post event
	added = nil
	assert.False(t, api.GrantPlayerTag(tag))
	assert.Nil(t, added)

	require.True(t, api.RevokePlayerTag("p1", TagRanking, 0, 1))
	require.NotNil(t, removed)
	assert.Empty(t, api.PlayerTags("p1"))
}

func TestTagGrantCancelled(t *testing.T) {
	api := newTestAPI(t)
	event.Subscribe(api.Bus(), func(ev *TagAddPre) { ev.Cancel() })

	assert.False(t, api.GrantPlayerTag(PlayerTag{PlayerID: "p1", Type: TagRanking, Position: 1}))
	assert.Empty(t, api.PlayerTags("p1"))
}

func TestNullProviderPassThroughDefaults(t *testing.T) {
	api := newTestAPI(t)

	assert.Nil(t, api.PlayerClan("p1"))
	assert.Empty(t, api.PlayerClanTag("p1"))
	assert.Nil(t, api.Clan("ABC"))
	assert.Empty(t, api.ClanMembers("ABC"))
	assert.False(t, api.IsPlayerLeader("p1"))
	assert.False(t, api.ClanExists("ABC"))
	assert.Equal(t, "ABC", api.ColoredClanTag("ABC"))
}

func TestStatsSnapshot(t *testing.T) {
	api := newTestAPI(t)
	require.True(t, api.SetClanPoints("ABC", 10))
	require.True(t, api.StartSeason("S1", time.Hour))
	require.True(t, api.SetDisplay(DisplayEntry{Position: 1, Label: "#1", Location: "world:0:64:0"}))

	s := api.Stats()
	assert.Equal(t, "null", s.Provider)
	assert.Equal(t, 1, s.LedgerSize)
	assert.Equal(t, 1, s.SeasonCount)
	assert.Equal(t, "S1", s.ActiveSeason)
	assert.Equal(t, 1, s.DisplayCount)
}

func TestMenuPassThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.yml")
	require.NoError(t, os.WriteFile(path, []byte(`menus:
  - name: ranking
    title: "Clan Ranking"
    rows: 3
  - name: history
    title: "History"
`), 0o644))
	menus, err := data.LoadMenuTable(path)
	require.NoError(t, err)

	api := newTestAPI(t)
	api.menus = menus

	m := api.Menu("ranking")
	require.NotNil(t, m)
	assert.Equal(t, "Clan Ranking", m.Title)
	assert.Nil(t, api.Menu("nope"))

	all := api.Menus()
	require.Len(t, all, 2)
	assert.Equal(t, "history", all[0].Name)
	assert.Equal(t, "ranking", all[1].Name)
}

func TestDisplayRegistry(t *testing.T) {
	api := newTestAPI(t)

	assert.False(t, api.SetDisplay(DisplayEntry{Position: 0}))
	require.True(t, api.SetDisplay(DisplayEntry{Position: 2, Label: "#2", Location: "world:1:64:1"}))
	require.True(t, api.SetDisplay(DisplayEntry{Position: 1, Label: "#1", Location: "world:0:64:0"}))

	entries := api.Displays()
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, 2, entries[1].Position)

	require.True(t, api.RemoveDisplay(2))
	assert.False(t, api.RemoveDisplay(2))
}
