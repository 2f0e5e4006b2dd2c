package provider

// ClanProvider is the contract every clan-source adapter fulfils. All
// methods are total: they never panic and never surface an error. A
// degraded or failed read is reported through the Lookup state (or the
// documented default for the plain-value methods), because a misbehaving
// clan source must not take the league down with it.
//
// Available must be cheap and side-effect-free; the facade consults it
// before forwarding queries.
type ClanProvider interface {
	// Name identifies the adapter ("simpleclans", "leafguilds", "null").
	Name() string
	// Available reports whether the backing clan system is reachable.
	Available() bool

	// PlayerClan resolves the clan a player belongs to. A player with no
	// clan is a confirmed miss, never an error.
	PlayerClan(playerID string) Lookup[*GenericClan]
	PlayerClanTag(playerID string) Lookup[string]

	// Clan resolves by tag. Case policy is per-adapter and deliberately
	// not unified: SimpleClans matches exact case only, LeafGuilds falls
	// back to a case-insensitive match after an exact miss.
	Clan(tag string) Lookup[*GenericClan]

	// AllClanTags enumerates every known tag. Adapters whose source lacks
	// a bulk listing derive the set from online players' memberships — a
	// degraded enumeration that misses all-offline clans.
	AllClanTags() Lookup[[]string]
	AllClans() Lookup[[]*GenericClan]

	ClanMembers(tag string) Lookup[[]string]
	OnlineClanMembers(tag string) Lookup[[]string]
	ClanLeaderName(tag string) Lookup[string]
	ClanMemberCount(tag string) int

	IsPlayerLeader(playerID string) bool
	IsPlayerInClan(playerID string) bool
	ClanExists(tag string) bool

	// ColoredClanTag and ClanName echo the input tag when the clan is
	// unknown or the provider is down, so display code always has text.
	ColoredClanTag(tag string) string
	ClanName(tag string) string

	// Capability flags. All shipped adapters are read-only.
	SupportsCreation() bool
	SupportsDissolution() bool
	SupportsMemberEditing() bool
}

// Presence answers which players are currently connected. The provider
// manager owns the presence set; adapters consult it for the online
// projections and the degraded enumeration fallback.
type Presence interface {
	Online(playerID string) bool
	OnlinePlayers() []string
}
