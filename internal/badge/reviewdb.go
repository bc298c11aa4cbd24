package badge

import (
	"context"

	"github.com/creations-works/badgeapi/internal/domain"
	"github.com/creations-works/badgeapi/internal/logger"
)

// reviewDBAdapter serves the ReviewDB source: a flat record array filtered
// by the embedded user ID.
type reviewDBAdapter struct {
	bulk   BulkProvider
	logger logger.Logger
}

func newReviewDBAdapter(bulk BulkProvider, log logger.Logger) *reviewDBAdapter {
	return &reviewDBAdapter{
		bulk:   bulk,
		logger: log,
	}
}

func (a *reviewDBAdapter) Fetch(ctx context.Context, req Request) ([]domain.Badge, error) {
	data, ok := a.bulk.ReviewDB(ctx)
	if !ok {
		a.logger.Warn("no cached data for service",
			logger.String("source", "reviewdb"))
		return nil, nil
	}
	return normalizeReviewDB(data, req.UserID), nil
}

func normalizeReviewDB(data ReviewDBData, userID string) []domain.Badge {
	var badges []domain.Badge
	for _, rec := range data {
		if rec.DiscordID != userID {
			continue
		}
		badges = append(badges, domain.Badge{
			Tooltip:  rec.Name,
			ImageURL: rec.Icon,
		})
	}
	return badges
}
