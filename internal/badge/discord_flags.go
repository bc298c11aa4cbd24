package badge

// discordFlag is one entry of the Discord public-flags bitmask table.
// Entries without an icon are recognized (the bit is known) but carry no
// badge asset, so they emit nothing.
type discordFlag struct {
	name    string
	bit     int64
	tooltip string
	icon    string
}

// nitroBadge is synthesized when the avatar hash carries the animated
// prefix; it is not part of the flags field.
var nitroBadge = discordFlag{
	name:    "DISCORD_NITRO",
	tooltip: "Discord Nitro",
	icon:    "/public/badges/discord/DISCORD_NITRO.svg",
}

// discordFlags is ordered: decoded badges are emitted in table order.
var discordFlags = []discordFlag{
	// User badges
	{name: "STAFF", bit: 1 << 0, tooltip: "Discord Staff", icon: "/public/badges/discord/STAFF.svg"},
	{name: "PARTNER", bit: 1 << 1, tooltip: "Discord Partner", icon: "/public/badges/discord/PARTNER.svg"},
	{name: "HYPESQUAD", bit: 1 << 2, tooltip: "HypeSquad Events", icon: "/public/badges/discord/HYPESQUAD.svg"},
	{name: "BUG_HUNTER_LEVEL_1", bit: 1 << 3, tooltip: "Bug Hunter (Level 1)", icon: "/public/badges/discord/BUG_HUNTER_LEVEL_1.svg"},
	{name: "HYPESQUAD_ONLINE_HOUSE_1", bit: 1 << 6, tooltip: "HypeSquad Bravery", icon: "/public/badges/discord/HYPESQUAD_ONLINE_HOUSE_1.svg"},
	{name: "HYPESQUAD_ONLINE_HOUSE_2", bit: 1 << 7, tooltip: "HypeSquad Brilliance", icon: "/public/badges/discord/HYPESQUAD_ONLINE_HOUSE_2.svg"},
	{name: "HYPESQUAD_ONLINE_HOUSE_3", bit: 1 << 8, tooltip: "HypeSquad Balance", icon: "/public/badges/discord/HYPESQUAD_ONLINE_HOUSE_3.svg"},
	{name: "PREMIUM_EARLY_SUPPORTER", bit: 1 << 9, tooltip: "Premium Early Supporter", icon: "/public/badges/discord/PREMIUM_EARLY_SUPPORTER.svg"},
	{name: "TEAM_USER", bit: 1 << 10},
	{name: "SYSTEM", bit: 1 << 12},
	{name: "BUG_HUNTER_LEVEL_2", bit: 1 << 14, tooltip: "Bug Hunter (Level 2)", icon: "/public/badges/discord/BUG_HUNTER_LEVEL_2.svg"},
	{name: "VERIFIED_DEVELOPER", bit: 1 << 17, tooltip: "Verified Bot Developer", icon: "/public/badges/discord/VERIFIED_DEVELOPER.svg"},
	{name: "CERTIFIED_MODERATOR", bit: 1 << 18, tooltip: "Certified Moderator", icon: "/public/badges/discord/CERTIFIED_MODERATOR.svg"},
	{name: "SPAMMER", bit: 1 << 20},
	{name: "ACTIVE_DEVELOPER", bit: 1 << 22, tooltip: "Active Developer", icon: "/public/badges/discord/ACTIVE_DEVELOPER.svg"},

	// Bot badges
	{name: "VERIFIED_BOT", bit: 1 << 16},
	{name: "BOT_HTTP_INTERACTIONS", bit: 1 << 19},
	{name: "SUPPORTS_COMMANDS", bit: 1 << 23, tooltip: "Supports Commands", icon: "/public/badges/discord/SUPPORTS_COMMANDS.svg"},
	{name: "USES_AUTOMOD", bit: 1 << 24, tooltip: "Uses AutoMod", icon: "/public/badges/discord/USES_AUTOMOD.svg"},
}
