package provider

// GenericClan is a point-in-time snapshot of one clan, independent of the
// system that owns it. Snapshots are rebuilt from native data on every
// query and never cached by the league core; when the backing data
// changes, the next query simply produces a fresh one.
type GenericClan struct {
	Tag           string
	Name          string
	ColoredTag    string   // display tag with embedded color markup, as the source renders it
	MemberIDs     []string // stable player identifiers, set semantics
	OnlineMembers []string // transient subset currently connected, never persisted
	LeaderID      string
	LeaderName    string
	Source        string // name of the adapter that produced the snapshot
	Native        any    // opaque back-reference to the source's own object; never interpreted here
}

// MemberCount returns the number of members in the snapshot.
func (c *GenericClan) MemberCount() int {
	return len(c.MemberIDs)
}

// HasMember reports whether the given player is in the member set.
func (c *GenericClan) HasMember(playerID string) bool {
	for _, id := range c.MemberIDs {
		if id == playerID {
			return true
		}
	}
	return false
}
