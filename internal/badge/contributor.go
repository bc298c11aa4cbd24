package badge

import (
	"context"

	"github.com/creations-works/badgeapi/internal/domain"
	"github.com/creations-works/badgeapi/internal/logger"
)

// contributorAdapter serves the Vencord and Equicord sources: both publish
// a user-ID-keyed map of badge records, kept warm by the bulk refresher.
type contributorAdapter struct {
	source string // lowercase source key
	bulk   BulkProvider
	logger logger.Logger
}

func newContributorAdapter(source string, bulk BulkProvider, log logger.Logger) *contributorAdapter {
	return &contributorAdapter{
		source: source,
		bulk:   bulk,
		logger: log,
	}
}

func (a *contributorAdapter) Fetch(ctx context.Context, req Request) ([]domain.Badge, error) {
	data, ok := a.bulk.ContributorBadges(ctx, a.source)
	if !ok {
		a.logger.Warn("no cached data for service",
			logger.String("source", a.source))
		return nil, nil
	}
	return normalizeContributor(data, req.UserID, req.Origin), nil
}

// normalizeContributor looks the user up in the dataset and rewrites
// root-relative badge URLs against the request origin.
func normalizeContributor(data ContributorData, userID, origin string) []domain.Badge {
	records := data[userID]
	if len(records) == 0 {
		return nil
	}

	badges := make([]domain.Badge, 0, len(records))
	for _, rec := range records {
		badges = append(badges, domain.Badge{
			Tooltip:  rec.Tooltip,
			ImageURL: absoluteURL(origin, rec.Badge),
		})
	}
	return badges
}
