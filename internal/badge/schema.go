package badge

// Raw payload shapes for each upstream source. These mirror the upstream
// JSON exactly; adapters normalize them into domain.Badge.

// ContributorData is the Vencord/Equicord dataset: user ID -> badge records.
type ContributorData map[string][]BadgeRecord

// BadgeRecord is one raw badge entry in a contributor-list dataset.
type BadgeRecord struct {
	Tooltip string `json:"tooltip"`
	Badge   string `json:"badge"`
}

// NekocordData is a registry of registries: user IDs point at badge IDs,
// dereferenced against a badge table.
type NekocordData struct {
	Users  map[string]NekocordUser  `json:"users"`
	Badges map[string]NekocordBadge `json:"badges"`
}

type NekocordUser struct {
	Badges []string `json:"badges"`
}

type NekocordBadge struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// ReviewDBData is a flat array of badge records carrying the user ID inline.
type ReviewDBData []ReviewDBBadge

type ReviewDBBadge struct {
	DiscordID string `json:"discordID"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
}

// EnmityBadge is the per-item detail document of the two-step Enmity source.
type EnmityBadge struct {
	Name string `json:"name"`
	URL  struct {
		Dark string `json:"dark"`
	} `json:"url"`
}

// DiscordUser is the subset of the Discord user object the adapter needs.
type DiscordUser struct {
	Avatar string `json:"avatar"`
	Flags  int64  `json:"flags"`
}

// PluginManifest is the shared Vencord/Equicord plugin listing used to
// derive contributor badges.
type PluginManifest []PluginRecord

type PluginRecord struct {
	FilePath string         `json:"filePath"`
	Authors  []PluginAuthor `json:"authors"`
}

type PluginAuthor struct {
	ID string `json:"id"`
}
