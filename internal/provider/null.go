package provider

// NullProvider is the always-available fallback used when no clan source
// is detected. It reports zero clans; every query is a confirmed miss.
type NullProvider struct{}

func NewNullProvider() *NullProvider { return &NullProvider{} }

func (*NullProvider) Name() string    { return "null" }
func (*NullProvider) Available() bool { return true }

func (*NullProvider) PlayerClan(string) Lookup[*GenericClan] { return Miss[*GenericClan]() }
func (*NullProvider) PlayerClanTag(string) Lookup[string]    { return Miss[string]() }
func (*NullProvider) Clan(string) Lookup[*GenericClan]       { return Miss[*GenericClan]() }

func (*NullProvider) AllClanTags() Lookup[[]string]   { return Hit([]string{}) }
func (*NullProvider) AllClans() Lookup[[]*GenericClan] { return Hit([]*GenericClan{}) }

func (*NullProvider) ClanMembers(string) Lookup[[]string]       { return Miss[[]string]() }
func (*NullProvider) OnlineClanMembers(string) Lookup[[]string] { return Miss[[]string]() }
func (*NullProvider) ClanLeaderName(string) Lookup[string]      { return Miss[string]() }
func (*NullProvider) ClanMemberCount(string) int                { return 0 }

func (*NullProvider) IsPlayerLeader(string) bool { return false }
func (*NullProvider) IsPlayerInClan(string) bool { return false }
func (*NullProvider) ClanExists(string) bool     { return false }

func (*NullProvider) ColoredClanTag(tag string) string { return tag }
func (*NullProvider) ClanName(tag string) string       { return tag }

func (*NullProvider) SupportsCreation() bool      { return false }
func (*NullProvider) SupportsDissolution() bool   { return false }
func (*NullProvider) SupportsMemberEditing() bool { return false }
