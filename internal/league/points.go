package league

import (
	"context"
	"sort"
	"sync"

	"github.com/hliga/server/internal/persist"
	"github.com/hliga/server/internal/provider"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ClanPoints is one clan's ledger entry.
type ClanPoints struct {
	Tag        string
	Name       string // defaults to the tag when the provider has no display name
	Points     int64  // never negative
	LeaderName string
}

// ClanDirectory is the slice of the provider manager the ledger needs for
// reconciliation.
type ClanDirectory interface {
	AllClanTags() provider.Lookup[[]string]
	ClanName(tag string) string
	ClanLeaderName(tag string) provider.Lookup[string]
}

// PointsManager owns the clan-tag → points ledger. All mutation funnels
// through its methods; the map is never handed out. Writes are
// write-through: the in-memory balance changes synchronously and is
// immediately visible to reads, while persistence happens on the next
// Flush. A crash between flushes loses at most one flush interval of
// changes — an accepted inconsistency window.
//
// One coarse mutex serializes all per-tag operations, which also rules
// out lost updates from concurrent add/remove on the same tag.
type PointsManager struct {
	mu      sync.Mutex
	ledger  map[string]*ClanPoints
	dirty   map[string]bool
	deleted map[string]bool
	audit   []persist.AuditEntry

	clans     ClanDirectory
	repo      *persist.PointsRepo
	auditRepo *persist.AuditRepo
	log       *zap.Logger
	printer   *message.Printer

	initialPoints int64
	pruneOnSync   bool
}

// NewPointsManager creates a ledger. repo and auditRepo may be nil, which
// keeps the ledger memory-only (used by tests).
func NewPointsManager(clans ClanDirectory, repo *persist.PointsRepo, auditRepo *persist.AuditRepo, locale string, initialPoints int64, pruneOnSync bool, log *zap.Logger) *PointsManager {
	if initialPoints < 0 {
		initialPoints = 0
	}
	return &PointsManager{
		ledger:        make(map[string]*ClanPoints),
		dirty:         make(map[string]bool),
		deleted:       make(map[string]bool),
		clans:         clans,
		repo:          repo,
		auditRepo:     auditRepo,
		log:           log,
		printer:       message.NewPrinter(language.Make(locale)),
		initialPoints: initialPoints,
		pruneOnSync:   pruneOnSync,
	}
}

// Load populates the ledger from the database. Called at startup.
func (m *PointsManager) Load(ctx context.Context) error {
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
		m.ledger[r.Tag] = &ClanPoints{
			Tag:        r.Tag,
			Name:       r.Name,
			Points:     r.Points,
			LeaderName: r.LeaderName,
		}
	}
	return nil
}

// ClanPoints returns a clan's balance, 0 when the tag has no record.
// Note the asymmetry with Position: an unknown tag still reads as 0 here
// but has no rank.
func (m *PointsManager) ClanPoints(tag string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.ledger[tag]; ok {
		return e.Points
	}
	return 0
}

// Entry returns a copy of a clan's full ledger entry.
func (m *PointsManager) Entry(tag string) (ClanPoints, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.ledger[tag]; ok {
		return *e, true
	}
	return ClanPoints{}, false
}

// SetPoints sets a clan's balance, clamping negatives to zero.
func (m *PointsManager) SetPoints(tag string, points int64) bool {
	if tag == "" {
		return false
	}
	if points < 0 {
		points = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.write(tag, points, "set")
	return true
}

// AddPoints increases a clan's balance by delta (delta must be ≥ 0).
func (m *PointsManager) AddPoints(tag string, delta int64) bool {
	if tag == "" || delta < 0 {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.balance(tag)
	m.write(tag, cur+delta, "add")
	return true
}

// RemovePoints decreases a clan's balance by delta, flooring at zero.
// Removing from an already-zero balance succeeds and leaves it at zero.
func (m *PointsManager) RemovePoints(tag string, delta int64) bool {
	if tag == "" || delta < 0 {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.balance(tag)
	next := cur - delta
	if next < 0 {
		next = 0
	}
	m.write(tag, next, "remove")
	return true
}

// Delete drops a clan's ledger entry entirely. Used when the provider
// reports the clan dissolved.
func (m *PointsManager) Delete(tag string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ledger[tag]; !ok {
		return false
	}
	delete(m.ledger, tag)
	delete(m.dirty, tag)
	m.deleted[tag] = true
	return true
}

// TopClans returns ledger entries sorted descending by points; equal
// points are ordered by tag ascending, so the ranking is reproducible
// across calls. Entries with zero points are excluded. limit ≤ 0 means
// all.
func (m *PointsManager) TopClans(limit int) []ClanPoints {
	m.mu.Lock()
	out := make([]ClanPoints, 0, len(m.ledger))
	for _, e := range m.ledger {
		if e.Points > 0 {
			out = append(out, *e)
		}
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].Tag < out[j].Tag
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Position returns a clan's 1-based rank in the TopClans ordering, or -1
// when the tag has no record or a zero balance. Zero-point clans read as
// 0 via ClanPoints but hold no rank; the board only lists clans that
// have scored.
func (m *PointsManager) Position(tag string) int {
	for i, e := range m.TopClans(0) {
		if e.Tag == tag {
			return i + 1
		}
	}
	return -1
}

// Size returns the number of ledger entries, zero-point ones included.
func (m *PointsManager) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ledger)
}

// SyncClans reconciles the ledger against the provider's clan set:
// unseen clans get a starting entry, and known clans get their display
// name and leader refreshed. When pruning is enabled, ledger entries for
// clans the provider no longer reports are dropped — but only on a
// confirmed enumeration, never on the degraded online-players fallback,
// which would wrongly delete every all-offline clan's ledger.
func (m *PointsManager) SyncClans() (created, pruned int) {
	if m.clans == nil {
		return 0, 0
	}
	tags := m.clans.AllClanTags()

	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool, len(tags.Value))
	for _, tag := range tags.Value {
		if tag == "" {
			continue
		}
		seen[tag] = true
		if e, ok := m.ledger[tag]; ok {
			name := m.clans.ClanName(tag)
			leader := m.clans.ClanLeaderName(tag).Or(e.LeaderName)
			if e.Name != name || e.LeaderName != leader {
				e.Name = name
				e.LeaderName = leader
				m.dirty[tag] = true
			}
			continue
		}
		m.ledger[tag] = &ClanPoints{
			Tag:        tag,
			Name:       m.clans.ClanName(tag),
			Points:     m.initialPoints,
			LeaderName: m.clans.ClanLeaderName(tag).Or(""),
		}
		m.dirty[tag] = true
		created++
	}

	if m.pruneOnSync && tags.State == provider.Found {
		for tag := range m.ledger {
			if !seen[tag] {
				delete(m.ledger, tag)
				delete(m.dirty, tag)
				m.deleted[tag] = true
				pruned++
			}
		}
	}
	return created, pruned
}

// Flush persists dirty entries, deletions, and the audit batch. A failed
// write is logged and re-queued for the next flush; the in-memory state
// stays authoritative either way.
func (m *PointsManager) Flush(ctx context.Context) {
	if m.repo == nil {
		return
	}

	m.mu.Lock()
	rows := make([]persist.PointsRow, 0, len(m.dirty))
	for tag := range m.dirty {
		if e, ok := m.ledger[tag]; ok {
			rows = append(rows, persist.PointsRow{
				Tag:        e.Tag,
				Name:       e.Name,
				Points:     e.Points,
				LeaderName: e.LeaderName,
			})
		}
	}
	m.dirty = make(map[string]bool)

	deletes := make([]string, 0, len(m.deleted))
	for tag := range m.deleted {
		deletes = append(deletes, tag)
	}
	m.deleted = make(map[string]bool)

	audit := m.audit
	m.audit = nil
	m.mu.Unlock()

	for _, row := range rows {
		if err := m.repo.Upsert(ctx, row); err != nil {
			m.log.Error("flush ledger row failed", zap.String("tag", row.Tag), zap.Error(err))
			m.mu.Lock()
			m.dirty[row.Tag] = true
			m.mu.Unlock()
		}
	}
	for _, tag := range deletes {
		if err := m.repo.Delete(ctx, tag); err != nil {
			m.log.Error("delete ledger row failed", zap.String("tag", tag), zap.Error(err))
			m.mu.Lock()
			m.deleted[tag] = true
			m.mu.Unlock()
		}
	}

	if m.auditRepo != nil && len(audit) > 0 {
		if err := m.auditRepo.Append(ctx, audit); err != nil {
			m.log.Error("append points audit failed", zap.Error(err))
			m.mu.Lock()
			m.audit = append(audit, m.audit...)
			m.mu.Unlock()
		} else if err := m.auditRepo.MarkProcessed(ctx); err != nil {
			m.log.Error("mark audit processed failed", zap.Error(err))
		}
	}
}

// FormatPoints renders a balance with locale-correct digit grouping.
// Display only; not meant to round-trip.
func (m *PointsManager) FormatPoints(points int64) string {
	return m.printer.Sprintf("%d", points)
}

// balance reads the current balance. Caller holds the lock.
func (m *PointsManager) balance(tag string) int64 {
	if e, ok := m.ledger[tag]; ok {
		return e.Points
	}
	return 0
}

// write commits a new balance. Caller holds the lock.
func (m *PointsManager) write(tag string, points int64, reason string) {
	e, ok := m.ledger[tag]
	if !ok {
		e = &ClanPoints{Tag: tag, Name: tag}
		if m.clans != nil {
			e.Name = m.clans.ClanName(tag)
			e.LeaderName = m.clans.ClanLeaderName(tag).Or("")
		}
		m.ledger[tag] = e
	}
	delta := points - e.Points
	e.Points = points
	m.dirty[tag] = true
	m.audit = append(m.audit, persist.AuditEntry{
		Tag:     tag,
		Delta:   delta,
		Balance: points,
		Reason:  reason,
	})
}
