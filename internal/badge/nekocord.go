package badge

import (
	"context"

	"github.com/creations-works/badgeapi/internal/domain"
	"github.com/creations-works/badgeapi/internal/logger"
)

// nekocordAdapter serves the Nekocord source: the dataset maps users to
// badge IDs which are dereferenced against a badge table.
type nekocordAdapter struct {
	bulk   BulkProvider
	logger logger.Logger
}

func newNekocordAdapter(bulk BulkProvider, log logger.Logger) *nekocordAdapter {
	return &nekocordAdapter{
		bulk:   bulk,
		logger: log,
	}
}

func (a *nekocordAdapter) Fetch(ctx context.Context, req Request) ([]domain.Badge, error) {
	data, ok := a.bulk.Nekocord(ctx)
	if !ok {
		a.logger.Warn("no cached data for service",
			logger.String("source", "nekocord"))
		return nil, nil
	}
	return normalizeNekocord(data, req.UserID), nil
}

// normalizeNekocord resolves the user's badge-ID list against the badge
// table. IDs missing from the table are dropped silently.
func normalizeNekocord(data *NekocordData, userID string) []domain.Badge {
	user, ok := data.Users[userID]
	if !ok || len(user.Badges) == 0 {
		return nil
	}

	badges := make([]domain.Badge, 0, len(user.Badges))
	for _, id := range user.Badges {
		info, ok := data.Badges[id]
		if !ok {
			continue
		}
		badges = append(badges, domain.Badge{
			Tooltip:  info.Name,
			ImageURL: info.Image,
		})
	}
	return badges
}
