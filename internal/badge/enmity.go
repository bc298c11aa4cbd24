package badge

import (
	"context"
	"sync"

	"github.com/creations-works/badgeapi/internal/domain"
	"github.com/creations-works/badgeapi/internal/fetch"
	"github.com/creations-works/badgeapi/internal/logger"
	"github.com/creations-works/badgeapi/internal/source"
)

// enmityAdapter serves the two-step Enmity source: one fetch for the
// user's badge-ID list, then one detail fetch per ID, fanned out in
// parallel. A failing per-item fetch drops that item only.
type enmityAdapter struct {
	urls   source.TwoStep
	client *fetch.Client
	logger logger.Logger
}

func newEnmityAdapter(urls source.TwoStep, client *fetch.Client, log logger.Logger) *enmityAdapter {
	return &enmityAdapter{
		urls:   urls,
		client: client,
		logger: log,
	}
}

func (a *enmityAdapter) Fetch(ctx context.Context, req Request) ([]domain.Badge, error) {
	var ids []string
	if err := a.client.GetJSON(ctx, a.urls.List(req.UserID), fetch.Options{}, &ids); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	// Slots keep adapter-internal order stable regardless of which
	// detail fetch finishes first.
	slots := make([]*domain.Badge, len(ids))
	var wg sync.WaitGroup

	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()

			var item EnmityBadge
			if err := a.client.GetJSON(ctx, a.urls.Item(id), fetch.Options{}, &item); err != nil {
				a.logger.Warn("failed to fetch enmity badge, dropping item",
					logger.String("badge_id", id),
					logger.Error(err))
				return
			}
			if item.Name == "" || item.URL.Dark == "" {
				return
			}
			slots[i] = &domain.Badge{
				Tooltip:  item.Name,
				ImageURL: item.URL.Dark,
			}
		}(i, id)
	}
	wg.Wait()

	badges := make([]domain.Badge, 0, len(ids))
	for _, b := range slots {
		if b != nil {
			badges = append(badges, *b)
		}
	}
	return badges, nil
}
