package league

import "time"

// Every externally visible mutation is wrapped in a pre/post event pair:
// the pre-event carries the proposed values and may be cancelled, in
// which case the mutation does not happen and the call reports failure;
// the post-event fires only after the mutation succeeded and carries the
// confirmed values. Events are emitted as pointers; subscribe with the
// pointer type.

// veto is the embedded cancellation state shared by all pre-events.
type veto struct {
	cancelled bool
}

func (v *veto) Cancel()         { v.cancelled = true }
func (v *veto) Cancelled() bool { return v.cancelled }

// PointsOp distinguishes the three point-mutation variants.
type PointsOp string

const (
	PointsAdd    PointsOp = "ADD"
	PointsRemove PointsOp = "REMOVE"
	PointsSet    PointsOp = "SET"
)

// PointsChangePre announces a proposed point change. Proposed is the
// balance the ledger will hold if no handler cancels (already clamped at
// zero for removals).
type PointsChangePre struct {
	veto
	Tag      string
	Op       PointsOp
	Amount   int64 // requested delta, or the absolute value for SET
	Current  int64
	Proposed int64
}

// PointsChanged confirms a durable point change.
type PointsChanged struct {
	Tag string
	Op  PointsOp
	Old int64
	New int64
}

type SeasonStartPre struct {
	veto
	Name    string
	StartAt time.Time
	EndAt   time.Time
}

type SeasonStarted struct {
	Season Season
}

type SeasonEndPre struct {
	veto
	Season Season // the season as it stands before closing
}

type SeasonEnded struct {
	Season Season // closed season with winner and top snapshot resolved
}

type TagAddPre struct {
	veto
	Tag PlayerTag
}

type TagAdded struct {
	Tag PlayerTag
}

type TagRemovePre struct {
	veto
	Tag PlayerTag
}

type TagRemoved struct {
	Tag PlayerTag
}
