package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/creations-works/badgeapi/internal/badge"
	"github.com/creations-works/badgeapi/internal/fetch"
	"github.com/creations-works/badgeapi/internal/logger"
	"github.com/creations-works/badgeapi/internal/source"
	"github.com/creations-works/badgeapi/internal/store"
)

// ErrSourceNotFound is returned by ForceRefresh for a name the registry
// does not know.
var ErrSourceNotFound = errors.New("source not found")

// Synthetic badge granted to plugin-manifest authors, keyed by source.
var contributorBadges = map[string]badge.BadgeRecord{
	"vencord":  {Tooltip: "Vencord Contributor", Badge: "https://vencord.dev/assets/favicon.png"},
	"equicord": {Tooltip: "Equicord Contributor", Badge: "https://i.imgur.com/57ATLZu.png"},
}

// BadgeRefresher keeps the bulk source datasets warm: a full sweep at
// startup when any dataset is missing or older than the interval, then
// one sweep per interval. Each sweep refreshes the sources concurrently
// and in isolation, so one failing upstream never blocks the others.
//
// It also serves the cached datasets back to adapters, implementing
// badge.BulkProvider.
type BadgeRefresher struct {
	registry *source.Registry
	store    store.Cache
	client   *fetch.Client
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewBadgeRefresher creates a refresher for the registry's bulk sources.
func NewBadgeRefresher(
	registry *source.Registry,
	st store.Cache,
	client *fetch.Client,
	log logger.Logger,
	interval time.Duration,
) *BadgeRefresher {
	return &BadgeRefresher{
		registry: registry,
		store:    st,
		client:   client,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Interval returns the sweep interval.
func (r *BadgeRefresher) Interval() time.Duration {
	return r.interval
}

// Start runs an initial sweep if any bulk dataset is stale, then begins
// the periodic refresh loop.
func (r *BadgeRefresher) Start(ctx context.Context) error {
	if r.needsRefresh(ctx) {
		if err := r.RefreshAll(ctx); err != nil {
			r.logger.Warn("initial badge refresh incomplete",
				logger.Error(err))
		}
	} else {
		r.logger.Debug("all bulk datasets still fresh, skipping initial refresh")
	}

	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := r.RefreshAll(ctx); err != nil {
					r.logger.Error("badge refresh sweep incomplete",
						logger.Error(err))
				}
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the refresh loop. Safe to call more than once.
func (r *BadgeRefresher) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
}

// needsRefresh reports whether any bulk dataset is missing or older than
// the refresh interval.
func (r *BadgeRefresher) needsRefresh(ctx context.Context) bool {
	now := time.Now()
	for _, name := range r.registry.BulkNames() {
		src, _ := r.registry.Resolve(name)
		key := src.Key()

		if _, ok := r.store.BulkPayload(ctx, key); !ok {
			r.logger.Debug("bulk dataset missing",
				logger.String("source", name))
			return true
		}
		ts, ok := r.store.BulkTimestamp(ctx, key)
		if !ok || now.Sub(ts) > r.interval {
			r.logger.Debug("bulk dataset expired",
				logger.String("source", name))
			return true
		}
	}
	return false
}

// RefreshAll sweeps every bulk source once, concurrently. The contributor
// plugin manifest is fetched a single time per sweep and shared between
// the sources that need it. Per-source failures are collected; a partial
// sweep still caches whatever succeeded.
func (r *BadgeRefresher) RefreshAll(ctx context.Context) error {
	r.logger.Debug("refreshing bulk badge datasets")
	start := time.Now()

	sets := r.fetchContributorSets(ctx)

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs *multierror.Error
	)

	for _, name := range r.registry.BulkNames() {
		src, _ := r.registry.Resolve(name)

		wg.Add(1)
		go func(src source.Source) {
			defer wg.Done()
			if err := r.refreshSource(ctx, src, sets); err != nil {
				r.logger.Warn("failed to refresh bulk source",
					logger.String("source", src.Name),
					logger.Error(err))
				mu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("%s: %w", src.Key(), err))
				mu.Unlock()
			}
		}(src)
	}
	wg.Wait()

	r.logger.Info("bulk badge refresh completed",
		logger.Int("sources", len(r.registry.BulkNames())),
		logger.Duration("took", time.Since(start)))

	return errs.ErrorOrNil()
}

// ForceRefresh refreshes a single source by name, outside the schedule.
// Unknown names return ErrSourceNotFound; live sources have nothing bulk
// to refresh and are a no-op.
func (r *BadgeRefresher) ForceRefresh(ctx context.Context, name string) error {
	src, ok := r.registry.Resolve(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, name)
	}
	if src.Category != source.Bulk {
		return nil
	}

	var sets contributorSets
	if _, contributor := contributorBadges[src.Key()]; contributor {
		sets = r.fetchContributorSets(ctx)
	}

	if err := r.refreshSource(ctx, src, sets); err != nil {
		return err
	}
	r.logger.Info("force refreshed source",
		logger.String("source", src.Name))
	return nil
}

// refreshSource fetches one bulk dataset and writes it to the cache
// together with its timestamp.
func (r *BadgeRefresher) refreshSource(ctx context.Context, src source.Source, sets contributorSets) error {
	url, ok := src.URL.(source.Direct)
	if !ok {
		return fmt.Errorf("bulk source %s has no direct URL", src.Name)
	}
	key := src.Key()

	var data interface{}
	switch key {
	case "vencord", "equicord":
		contrib := badge.ContributorData{}
		err := r.client.GetJSON(ctx, string(url), fetch.Options{}, &contrib)
		if err != nil && sets.authorsFor(key) == nil {
			return err
		}
		if err != nil {
			// Manifest-derived badges are still worth caching.
			r.logger.Warn("contributor dataset fetch failed, caching manifest badges only",
				logger.String("source", src.Name),
				logger.Error(err))
			contrib = badge.ContributorData{}
		}
		injectContributorBadges(contrib, sets.authorsFor(key), contributorBadges[key])
		data = contrib

	case "nekocord":
		var neko badge.NekocordData
		if err := r.client.GetJSON(ctx, string(url), fetch.Options{}, &neko); err != nil {
			return err
		}
		data = neko

	case "reviewdb":
		var rdb badge.ReviewDBData
		if err := r.client.GetJSON(ctx, string(url), fetch.Options{}, &rdb); err != nil {
			return err
		}
		data = rdb

	default:
		return fmt.Errorf("no bulk handler for source %s", src.Name)
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s dataset: %w", key, err)
	}
	if err := r.store.SetBulk(ctx, key, payload, time.Now()); err != nil {
		return fmt.Errorf("failed to cache %s dataset: %w", key, err)
	}

	r.logger.Debug("updated bulk dataset",
		logger.String("source", src.Name),
		logger.Int("bytes", len(payload)))
	return nil
}

// contributorSets holds the plugin-manifest author IDs split by client.
// Nil sets mean the manifest was unavailable.
type contributorSets struct {
	vencord  map[string]struct{}
	equicord map[string]struct{}
}

func (s contributorSets) authorsFor(key string) map[string]struct{} {
	switch key {
	case "vencord":
		return s.vencord
	case "equicord":
		return s.equicord
	default:
		return nil
	}
}

// fetchContributorSets pulls the shared plugin manifest and partitions its
// authors: plugins under an equicordplugins/ path belong to Equicord,
// everything else to Vencord. A failed fetch yields empty sets and a
// warning; the sweep continues without contributor badges.
func (r *BadgeRefresher) fetchContributorSets(ctx context.Context) contributorSets {
	url := r.registry.ContributorManifestURL()
	if url == "" {
		return contributorSets{}
	}

	var manifest badge.PluginManifest
	if err := r.client.GetJSON(ctx, url, fetch.Options{}, &manifest); err != nil {
		r.logger.Warn("failed to fetch contributor manifest",
			logger.Error(err))
		return contributorSets{}
	}

	sets := contributorSets{
		vencord:  make(map[string]struct{}),
		equicord: make(map[string]struct{}),
	}
	for _, plugin := range manifest {
		target := sets.vencord
		if strings.Contains(plugin.FilePath, "equicordplugins/") {
			target = sets.equicord
		}
		for _, author := range plugin.Authors {
			if author.ID != "" {
				target[author.ID] = struct{}{}
			}
		}
	}
	return sets
}

// injectContributorBadges appends the synthetic contributor badge for each
// manifest author, unless the user already carries a badge with the same
// tooltip.
func injectContributorBadges(data badge.ContributorData, authors map[string]struct{}, record badge.BadgeRecord) {
	for id := range authors {
		has := false
		for _, b := range data[id] {
			if b.Tooltip == record.Tooltip {
				has = true
				break
			}
		}
		if !has {
			data[id] = append(data[id], record)
		}
	}
}

// ContributorBadges implements badge.BulkProvider for the Vencord and
// Equicord sources.
func (r *BadgeRefresher) ContributorBadges(ctx context.Context, sourceKey string) (badge.ContributorData, bool) {
	if _, contributor := contributorBadges[sourceKey]; !contributor {
		return nil, false
	}
	payload, ok := r.store.BulkPayload(ctx, sourceKey)
	if !ok {
		return nil, false
	}
	var data badge.ContributorData
	if err := json.Unmarshal(payload, &data); err != nil {
		r.logger.Warn("corrupt cached dataset",
			logger.String("source", sourceKey),
			logger.Error(err))
		return nil, false
	}
	return data, true
}

// Nekocord implements badge.BulkProvider.
func (r *BadgeRefresher) Nekocord(ctx context.Context) (*badge.NekocordData, bool) {
	payload, ok := r.store.BulkPayload(ctx, "nekocord")
	if !ok {
		return nil, false
	}
	var data badge.NekocordData
	if err := json.Unmarshal(payload, &data); err != nil {
		r.logger.Warn("corrupt cached dataset",
			logger.String("source", "nekocord"),
			logger.Error(err))
		return nil, false
	}
	return &data, true
}

// ReviewDB implements badge.BulkProvider.
func (r *BadgeRefresher) ReviewDB(ctx context.Context) (badge.ReviewDBData, bool) {
	payload, ok := r.store.BulkPayload(ctx, "reviewdb")
	if !ok {
		return nil, false
	}
	var data badge.ReviewDBData
	if err := json.Unmarshal(payload, &data); err != nil {
		r.logger.Warn("corrupt cached dataset",
			logger.String("source", "reviewdb"),
			logger.Error(err))
		return nil, false
	}
	return data, true
}
