package league

import (
	"strconv"
	"time"

	"github.com/hliga/server/internal/core/event"
	"github.com/hliga/server/internal/data"
	"github.com/hliga/server/internal/provider"
	"github.com/hliga/server/internal/scripting"
	"go.uber.org/zap"
)

// API is the single entry point collaborators use. It wraps every
// mutation in a pre/post event pair and flattens provider lookups to the
// documented defaults, so nothing behind this boundary ever surfaces an
// error: mutations report a bool, reads return empty values.
//
// Hand the API to collaborators at registration time; there is no global
// accessor on purpose, so a stale handle cannot outlive a reload.
type API struct {
	bus      *event.Bus
	clans    *provider.Manager
	points   *PointsManager
	seasons  *SeasonManager
	tags     *TagManager
	rewards  *RewardManager
	displays *DisplayManager
	scripts  *scripting.Engine
	messages *data.MessagesTable
	menus    *data.MenuTable
	log      *zap.Logger
}

func NewAPI(
	bus *event.Bus,
	clans *provider.Manager,
	points *PointsManager,
	seasons *SeasonManager,
	tags *TagManager,
	rewards *RewardManager,
	displays *DisplayManager,
	scripts *scripting.Engine,
	messages *data.MessagesTable,
	menus *data.MenuTable,
	log *zap.Logger,
) *API {
	return &API{
		bus:      bus,
		clans:    clans,
		points:   points,
		seasons:  seasons,
		tags:     tags,
		rewards:  rewards,
		displays: displays,
		scripts:  scripts,
		messages: messages,
		menus:    menus,
		log:      log,
	}
}

// Bus exposes the event bus for subscriber registration.
func (a *API) Bus() *event.Bus { return a.bus }

// ── Points ─────────────────────────────────────────────────────────

func (a *API) ClanPoints(tag string) int64 {
	return a.points.ClanPoints(tag)
}

func (a *API) SetClanPoints(tag string, points int64) bool {
	if tag == "" {
		return false
	}
	if points < 0 {
		points = 0
	}
	return a.changePoints(tag, PointsSet, points, points)
}

func (a *API) AddClanPoints(tag string, delta int64) bool {
	if tag == "" || delta < 0 {
		return false
	}
	cur := a.points.ClanPoints(tag)
	return a.changePoints(tag, PointsAdd, delta, cur+delta)
}

func (a *API) RemoveClanPoints(tag string, delta int64) bool {
	if tag == "" || delta < 0 {
		return false
	}
	cur := a.points.ClanPoints(tag)
	next := cur - delta
	if next < 0 {
		next = 0
	}
	return a.changePoints(tag, PointsRemove, delta, next)
}

// changePoints runs the pre event, the mutation, and the post event.
// No side effect happens before the pre-event is accepted; the post
// event fires only after the ledger reports success.
func (a *API) changePoints(tag string, op PointsOp, amount, proposed int64) bool {
	cur := a.points.ClanPoints(tag)
	pre := &PointsChangePre{
		Tag:      tag,
		Op:       op,
		Amount:   amount,
		Current:  cur,
		Proposed: proposed,
	}
	if !event.EmitPre(a.bus, pre) {
		a.log.Debug("points change cancelled",
			zap.String("tag", tag), zap.String("op", string(op)))
		return false
	}

	var ok bool
	switch op {
	case PointsAdd:
		ok = a.points.AddPoints(tag, amount)
	case PointsRemove:
		ok = a.points.RemovePoints(tag, amount)
	case PointsSet:
		ok = a.points.SetPoints(tag, amount)
	}
	if !ok {
		return false
	}

	event.EmitPost(a.bus, &PointsChanged{Tag: tag, Op: op, Old: cur, New: a.points.ClanPoints(tag)})
	return true
}

func (a *API) TopClans(limit int) []ClanPoints {
	return a.points.TopClans(limit)
}

func (a *API) ClanPosition(tag string) int {
	return a.points.Position(tag)
}

func (a *API) FormatPoints(points int64) string {
	return a.points.FormatPoints(points)
}

// HandleClanDisband drops a dissolved clan's ledger entry. Wired to the
// active provider's lifecycle notifications by the daemon.
func (a *API) HandleClanDisband(tag string) bool {
	return a.points.Delete(tag)
}

// ── Seasons ────────────────────────────────────────────────────────

func (a *API) StartSeason(name string, duration time.Duration) bool {
	if duration <= 0 {
		return false
	}
	return a.StartSeasonUntil(name, time.Now().Add(duration))
}

func (a *API) StartSeasonUntil(name string, endAt time.Time) bool {
	if name == "" || !endAt.After(time.Now()) {
		return false
	}

	pre := &SeasonStartPre{Name: name, StartAt: time.Now(), EndAt: endAt}
	if !event.EmitPre(a.bus, pre) {
		a.log.Debug("season start cancelled", zap.String("name", name))
		return false
	}

	if !a.seasons.StartSeasonUntil(name, endAt) {
		return false
	}

	s, _ := a.seasons.ActiveSeason()
	event.EmitPost(a.bus, &SeasonStarted{Season: s})
	a.log.Info("season started", zap.Int32("id", s.ID), zap.String("name", s.Name))
	return true
}

// EndSeason closes the active season and, on success, grants season tags
// to the top clans' leaders and distributes configured rewards.
func (a *API) EndSeason() bool {
	current, ok := a.seasons.ActiveSeason()
	if !ok {
		return false
	}

	pre := &SeasonEndPre{Season: current}
	if !event.EmitPre(a.bus, pre) {
		a.log.Debug("season end cancelled", zap.Int32("id", current.ID))
		return false
	}

	if !a.seasons.EndSeason() {
		return false
	}

	closed := a.closedSeason(current.ID)
	event.EmitPost(a.bus, &SeasonEnded{Season: closed})
	a.log.Info("season ended",
		zap.Int32("id", closed.ID),
		zap.String("winner", closed.WinnerTag),
		zap.Int64("points", closed.WinnerPoints))

	a.scripts.OnSeasonEnd(scripting.SeasonSummary{
		ID:           closed.ID,
		Name:         closed.Name,
		WinnerTag:    closed.WinnerTag,
		WinnerPoints: closed.WinnerPoints,
	})
	a.grantSeasonTags(closed)
	if a.rewards != nil {
		granted := a.rewards.Distribute(closed)
		a.log.Info("rewards distributed", zap.Int32("season", closed.ID), zap.Int("positions", granted))
	}
	return true
}

// ExpireSeasonIfDue ends the active season once its end instant has
// passed. Driven by the daemon ticker; returns whether a season ended.
func (a *API) ExpireSeasonIfDue(now time.Time) bool {
	if !a.seasons.DueForEnd(now) {
		return false
	}
	return a.EndSeason()
}

func (a *API) ActiveSeason() (Season, bool) {
	return a.seasons.ActiveSeason()
}

func (a *API) Seasons() []Season {
	return a.seasons.Seasons()
}

func (a *API) closedSeason(id int32) Season {
	for _, s := range a.seasons.Seasons() {
		if s.ID == id {
			return s
		}
	}
	return Season{ID: id}
}

// grantSeasonTags awards SEASON badges to the leaders of the closed
// season's top clans. Skips positions whose leader the provider cannot
// resolve.
func (a *API) grantSeasonTags(season Season) {
	for i, entry := range season.TopClans {
		position := i + 1
		clan := a.clans.Clan(entry.Tag)
		if !clan.Found() || clan.Value.LeaderID == "" {
			continue
		}
		text := entry.Tag
		if a.messages != nil {
			text = a.messages.Format("season_tag_text", map[string]string{
				"season":   season.Name,
				"position": strconv.Itoa(position),
				"clan":     entry.Tag,
			})
		}
		a.GrantPlayerTag(PlayerTag{
			PlayerID:     clan.Value.LeaderID,
			Type:         TagSeason,
			Position:     position,
			SeasonNumber: season.ID,
			Text:         text,
			Name:         season.Name,
		})
	}
}

// ── Player tags ────────────────────────────────────────────────────

func (a *API) GrantPlayerTag(t PlayerTag) bool {
	pre := &TagAddPre{Tag: t}
	if !event.EmitPre(a.bus, pre) {
		a.log.Debug("tag grant cancelled", zap.String("player", t.PlayerID))
		return false
	}
	if !a.tags.Grant(t) {
		return false
	}
	event.EmitPost(a.bus, &TagAdded{Tag: t})
	return true
}

func (a *API) RevokePlayerTag(playerID string, typ TagType, seasonNumber int32, position int) bool {
	t := PlayerTag{PlayerID: playerID, Type: typ, SeasonNumber: seasonNumber, Position: position}
	pre := &TagRemovePre{Tag: t}
	if !event.EmitPre(a.bus, pre) {
		a.log.Debug("tag revoke cancelled", zap.String("player", playerID))
		return false
	}
	if !a.tags.Revoke(playerID, typ, seasonNumber, position) {
		return false
	}
	event.EmitPost(a.bus, &TagRemoved{Tag: t})
	return true
}

func (a *API) PlayerTags(playerID string) []PlayerTag {
	return a.tags.PlayerTags(playerID)
}

// ── Clan pass-throughs (flattened to defaults) ─────────────────────

func (a *API) PlayerClan(playerID string) *provider.GenericClan {
	return a.clans.PlayerClan(playerID).Or(nil)
}

func (a *API) PlayerClanTag(playerID string) string {
	return a.clans.PlayerClanTag(playerID).Or("")
}

func (a *API) Clan(tag string) *provider.GenericClan {
	return a.clans.Clan(tag).Or(nil)
}

func (a *API) AllClanTags() []string {
	return a.clans.AllClanTags().Value // degraded enumeration still carries the derived set
}

func (a *API) ClanMembers(tag string) []string {
	return a.clans.ClanMembers(tag).Or(nil)
}

func (a *API) IsPlayerLeader(playerID string) bool {
	return a.clans.IsPlayerLeader(playerID)
}

func (a *API) ClanExists(tag string) bool {
	return a.clans.ClanExists(tag)
}

func (a *API) ColoredClanTag(tag string) string {
	return a.clans.ColoredClanTag(tag)
}

// ── Displays ───────────────────────────────────────────────────────

func (a *API) SetDisplay(entry DisplayEntry) bool {
	return a.displays.Set(entry)
}

func (a *API) RemoveDisplay(position int) bool {
	return a.displays.Remove(position)
}

func (a *API) Displays() []DisplayEntry {
	return a.displays.Entries()
}

// ── Menus ──────────────────────────────────────────────────────────

// Menu returns a menu layout by name for the host to render, or nil.
func (a *API) Menu(name string) *data.Menu {
	if a.menus == nil {
		return nil
	}
	return a.menus.Get(name)
}

// Menus returns every configured menu layout ordered by name.
func (a *API) Menus() []*data.Menu {
	if a.menus == nil {
		return nil
	}
	return a.menus.All()
}

// ── Stats ──────────────────────────────────────────────────────────

// Stats is a point-in-time snapshot of the league's state.
type Stats struct {
	Provider     string
	ClanCount    int
	LedgerSize   int
	SeasonCount  int
	ActiveSeason string // empty when none
	TagCount     int
	DisplayCount int
}

func (a *API) Stats() Stats {
	s := Stats{
		Provider:     a.clans.Provider().Name(),
		ClanCount:    len(a.clans.AllClanTags().Value),
		LedgerSize:   a.points.Size(),
		SeasonCount:  len(a.seasons.Seasons()),
		TagCount:     a.tags.Count(),
		DisplayCount: len(a.displays.Entries()),
	}
	if active, ok := a.seasons.ActiveSeason(); ok {
		s.ActiveSeason = active.Name
	}
	return s
}
