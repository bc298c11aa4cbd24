package badge

import (
	"context"
	"strings"

	"github.com/creations-works/badgeapi/internal/domain"
	"github.com/creations-works/badgeapi/internal/fetch"
	"github.com/creations-works/badgeapi/internal/logger"
	"github.com/creations-works/badgeapi/internal/source"
)

// animatedAvatarPrefix marks avatar hashes that require Nitro.
const animatedAvatarPrefix = "a_"

// discordAdapter serves the Discord source: fetches the user object with
// bot authorization and decodes the public-flags bitmask.
type discordAdapter struct {
	urlFor source.Templated
	client *fetch.Client
	token  string
	logger logger.Logger
}

func newDiscordAdapter(urlFor source.Templated, client *fetch.Client, token string, log logger.Logger) *discordAdapter {
	return &discordAdapter{
		urlFor: urlFor,
		client: client,
		token:  token,
		logger: log,
	}
}

func (a *discordAdapter) Fetch(ctx context.Context, req Request) ([]domain.Badge, error) {
	if a.token == "" {
		a.logger.Warn("discord bot token not configured, skipping source")
		return nil, nil
	}

	var user DiscordUser
	err := a.client.GetJSON(ctx, a.urlFor(req.UserID), fetch.Options{
		Authorization: "Bot " + a.token,
	}, &user)
	if err != nil {
		return nil, err
	}

	return decodeDiscordUser(user, req.Origin), nil
}

// decodeDiscordUser emits the synthetic Nitro badge for animated avatars,
// then one badge per set, recognized flag bit in table order.
func decodeDiscordUser(user DiscordUser, origin string) []domain.Badge {
	var badges []domain.Badge

	if strings.HasPrefix(user.Avatar, animatedAvatarPrefix) {
		badges = append(badges, domain.Badge{
			Tooltip:  nitroBadge.tooltip,
			ImageURL: absoluteURL(origin, nitroBadge.icon),
		})
	}

	for _, flag := range discordFlags {
		if user.Flags&flag.bit == 0 {
			continue
		}
		if flag.icon == "" {
			// Known bit without a badge asset.
			continue
		}
		badges = append(badges, domain.Badge{
			Tooltip:  flag.tooltip,
			ImageURL: absoluteURL(origin, flag.icon),
		})
	}
	return badges
}
