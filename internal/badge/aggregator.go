package badge

import (
	"context"
	"strings"
	"sync"

	"github.com/creations-works/badgeapi/internal/domain"
	"github.com/creations-works/badgeapi/internal/fetch"
	"github.com/creations-works/badgeapi/internal/logger"
	"github.com/creations-works/badgeapi/internal/source"
	"github.com/creations-works/badgeapi/internal/store"
)

// Options control one aggregation call.
type Options struct {
	SkipCache bool   // bypass the per-user cache for both reads and writes
	Separated bool   // return results keyed by source instead of merged
	Origin    string // inbound request origin for relative icon URLs
}

// Aggregator fans a badge lookup out across the requested sources:
// per-user cache first for live sources, then bulk snapshot reads or
// direct upstream fetches, all in parallel. A failing source contributes
// zero badges; nothing propagates across sources.
type Aggregator struct {
	registry *source.Registry
	cache    store.Cache
	adapters map[string]Adapter
	logger   logger.Logger
}

// NewAggregator builds the per-source adapter table once. Sources without
// a known adapter are skipped with a warning at call time.
func NewAggregator(
	registry *source.Registry,
	cache store.Cache,
	bulk BulkProvider,
	client *fetch.Client,
	discordToken string,
	log logger.Logger,
) *Aggregator {
	adapters := make(map[string]Adapter)

	for _, name := range registry.Names() {
		src, _ := registry.Resolve(name)
		key := src.Key()

		switch key {
		case "vencord", "equicord":
			adapters[key] = newContributorAdapter(key, bulk, log)
		case "nekocord":
			adapters[key] = newNekocordAdapter(bulk, log)
		case "reviewdb":
			adapters[key] = newReviewDBAdapter(bulk, log)
		case "enmity":
			if urls, ok := src.URL.(source.TwoStep); ok {
				adapters[key] = newEnmityAdapter(urls, client, log)
			}
		case "discord":
			if urlFor, ok := src.URL.(source.Templated); ok {
				adapters[key] = newDiscordAdapter(urlFor, client, discordToken, log)
			}
		default:
			log.Warn("no adapter for registered source",
				logger.String("source", name))
		}
	}

	return &Aggregator{
		registry: registry,
		cache:    cache,
		adapters: adapters,
		logger:   log,
	}
}

// Fetch aggregates badges for one user across the requested sources.
// An empty user ID, an empty service list, or a service that does not
// resolve yields an empty result without touching cache or network.
func (a *Aggregator) Fetch(ctx context.Context, userID string, services []string, opts Options) domain.BadgeResult {
	if userID == "" || len(services) == 0 {
		return emptyResult(opts)
	}

	resolved := make([]source.Source, 0, len(services))
	for _, name := range services {
		src, ok := a.registry.Resolve(name)
		if !ok {
			a.logger.Warn("unknown service requested",
				logger.String("service", name))
			return emptyResult(opts)
		}
		resolved = append(resolved, src)
	}

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		results   = make(map[string][]domain.Badge, len(resolved))
		fromCache = make(map[string]bool, len(resolved))
	)

	// Per-user cache pass: live sources only, skipped entirely on SkipCache.
	if !opts.SkipCache {
		for _, src := range resolved {
			if src.Category != source.Live {
				continue
			}
			wg.Add(1)
			go func(src source.Source) {
				defer wg.Done()
				key := src.Key()
				if badges, ok := a.cache.UserBadges(ctx, key, userID); ok {
					mu.Lock()
					results[key] = badges
					fromCache[key] = true
					mu.Unlock()
				}
			}(src)
		}
		wg.Wait()
	}

	// Fetch pass: bulk sources read the refresher's snapshot, live sources
	// go to the network. One goroutine per source; failures stay local.
	for _, src := range resolved {
		key := src.Key()
		if fromCache[key] {
			continue
		}

		wg.Add(1)
		go func(src source.Source, key string) {
			defer wg.Done()

			adapter, ok := a.adapters[key]
			if !ok {
				a.logger.Warn("no adapter for service",
					logger.String("source", src.Name))
				return
			}

			badges, err := adapter.Fetch(ctx, Request{UserID: userID, Origin: opts.Origin})
			if err != nil {
				a.logger.Warn("failed to fetch badges for service",
					logger.String("source", src.Name),
					logger.String("user_id", userID),
					logger.Error(err))
				return
			}

			mu.Lock()
			results[key] = badges
			mu.Unlock()

			if src.Category == source.Live && !opts.SkipCache && len(badges) > 0 {
				if err := a.cache.SetUserBadges(ctx, key, userID, badges); err != nil {
					a.logger.Warn("failed to cache user badges",
						logger.String("source", src.Name),
						logger.Error(err))
				}
			}
		}(src, key)
	}
	wg.Wait()

	return a.assemble(results, opts)
}

// assemble builds the outward result. Separated mode omits zero-result
// sources entirely; merged mode concatenates in registry order.
func (a *Aggregator) assemble(results map[string][]domain.Badge, opts Options) domain.BadgeResult {
	if opts.Separated {
		out := make(map[string][]domain.Badge, len(results))
		for key, badges := range results {
			if len(badges) > 0 {
				out[key] = badges
			}
		}
		return domain.BadgeResult{Separated: out}
	}

	merged := make([]domain.Badge, 0)
	for _, name := range a.registry.Names() {
		if badges, ok := results[strings.ToLower(name)]; ok {
			merged = append(merged, badges...)
		}
	}
	return domain.BadgeResult{Merged: merged}
}

func emptyResult(opts Options) domain.BadgeResult {
	if opts.Separated {
		return domain.BadgeResult{Separated: map[string][]domain.Badge{}}
	}
	return domain.BadgeResult{Merged: []domain.Badge{}}
}
