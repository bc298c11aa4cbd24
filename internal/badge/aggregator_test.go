package badge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/creations-works/badgeapi/internal/domain"
	"github.com/creations-works/badgeapi/internal/fetch"
	"github.com/creations-works/badgeapi/internal/logger"
	"github.com/creations-works/badgeapi/internal/source"
)

// fakeCache implements store.Cache in memory, counting accesses so tests
// can assert "no cache call happened".
type fakeCache struct {
	mu        sync.Mutex
	user      map[string][]domain.Badge
	userReads int
	userSets  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{user: make(map[string][]domain.Badge)}
}

func (c *fakeCache) BulkPayload(ctx context.Context, sourceName string) ([]byte, bool) {
	return nil, false
}

func (c *fakeCache) BulkTimestamp(ctx context.Context, sourceName string) (time.Time, bool) {
	return time.Time{}, false
}

func (c *fakeCache) SetBulk(ctx context.Context, sourceName string, payload []byte, ts time.Time) error {
	return nil
}

func (c *fakeCache) UserBadges(ctx context.Context, sourceName, userID string) ([]domain.Badge, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userReads++
	badges, ok := c.user[sourceName+":"+userID]
	return badges, ok
}

func (c *fakeCache) SetUserBadges(ctx context.Context, sourceName, userID string, badges []domain.Badge) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userSets++
	c.user[sourceName+":"+userID] = badges
	return nil
}

// fakeBulk implements BulkProvider from fixed datasets.
type fakeBulk struct {
	contributors map[string]ContributorData
	nekocord     *NekocordData
	reviewdb     ReviewDBData
}

func (b *fakeBulk) ContributorBadges(ctx context.Context, sourceName string) (ContributorData, bool) {
	data, ok := b.contributors[sourceName]
	return data, ok
}

func (b *fakeBulk) Nekocord(ctx context.Context) (*NekocordData, bool) {
	return b.nekocord, b.nekocord != nil
}

func (b *fakeBulk) ReviewDB(ctx context.Context) (ReviewDBData, bool) {
	return b.reviewdb, b.reviewdb != nil
}

func testRegistry(t *testing.T, discordURL string) *source.Registry {
	t.Helper()
	r, err := source.NewRegistry("",
		source.Source{Name: "Vencord", Category: source.Bulk, URL: source.Direct("https://vencord.example/badges.json")},
		source.Source{Name: "Nekocord", Category: source.Bulk, URL: source.Direct("https://nekocord.example/badges.json")},
		source.Source{Name: "Discord", Category: source.Live, URL: source.Templated(func(userID string) string {
			return discordURL + "/users/" + userID
		})},
	)
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	return r
}

func newTestAggregator(t *testing.T, cache *fakeCache, bulk *fakeBulk, discordURL string) *Aggregator {
	t.Helper()
	client := fetch.New(2*time.Second, 0, "BadgeAPI-test/1.0")
	return NewAggregator(testRegistry(t, discordURL), cache, bulk, client, "token", logger.New("error", false))
}

func TestFetchEmptyInputs(t *testing.T) {
	cache := newFakeCache()
	agg := newTestAggregator(t, cache, &fakeBulk{}, "http://unused.invalid")

	tests := []struct {
		name     string
		userID   string
		services []string
	}{
		{name: "empty user id", userID: "", services: []string{"vencord"}},
		{name: "empty services", userID: "123", services: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := agg.Fetch(context.Background(), tt.userID, tt.services, Options{})
			if !res.Empty() {
				t.Errorf("Fetch() = %+v, want empty", res)
			}
		})
	}

	if cache.userReads != 0 || cache.userSets != 0 {
		t.Errorf("empty-input calls touched the cache: reads=%d sets=%d", cache.userReads, cache.userSets)
	}
}

func TestFetchUnknownService(t *testing.T) {
	cache := newFakeCache()
	agg := newTestAggregator(t, cache, &fakeBulk{}, "http://unused.invalid")

	res := agg.Fetch(context.Background(), "123", []string{"vencord", "spotify"}, Options{})
	if !res.Empty() {
		t.Errorf("Fetch() with unknown service = %+v, want empty", res)
	}
	if cache.userReads != 0 {
		t.Errorf("unknown-service call touched the cache: reads=%d", cache.userReads)
	}
}

func TestFetchMergedAndSeparated(t *testing.T) {
	bulk := &fakeBulk{
		contributors: map[string]ContributorData{
			"vencord": {
				"123": {{Tooltip: "Vencord Contributor", Badge: "https://vencord.dev/favicon.png"}},
			},
		},
		nekocord: &NekocordData{
			Users:  map[string]NekocordUser{},
			Badges: map[string]NekocordBadge{},
		},
	}

	agg := newTestAggregator(t, newFakeCache(), bulk, "http://unused.invalid")
	services := []string{"vencord", "nekocord"}

	merged := agg.Fetch(context.Background(), "123", services, Options{})
	if len(merged.Merged) != 1 || merged.Merged[0].Tooltip != "Vencord Contributor" {
		t.Errorf("merged result = %+v, want single Vencord Contributor badge", merged.Merged)
	}

	sep := agg.Fetch(context.Background(), "123", services, Options{Separated: true})
	if len(sep.Separated) != 1 {
		t.Fatalf("separated result has %d sources, want 1 (zero-result sources absent): %+v", len(sep.Separated), sep.Separated)
	}
	if _, present := sep.Separated["nekocord"]; present {
		t.Error("nekocord yielded zero badges but is present in separated result")
	}
	if got := sep.Separated["vencord"]; len(got) != 1 {
		t.Errorf("separated vencord = %+v, want one badge", got)
	}
}

func TestFetchMergedFollowsRegistryOrder(t *testing.T) {
	bulk := &fakeBulk{
		contributors: map[string]ContributorData{
			"vencord": {"123": {{Tooltip: "Vencord Contributor", Badge: "https://v.example/b.png"}}},
		},
	}
	srv := discordUserServer(nil, DiscordUser{Flags: 1 << 0})
	defer srv.Close()

	agg := newTestAggregator(t, newFakeCache(), bulk, srv.URL)

	// Requested out of registry order; merged output follows the registry.
	res := agg.Fetch(context.Background(), "123", []string{"discord", "vencord"}, Options{})
	if len(res.Merged) != 2 {
		t.Fatalf("merged result = %+v, want 2 badges", res.Merged)
	}
	if res.Merged[0].Tooltip != "Vencord Contributor" || res.Merged[1].Tooltip != "Discord Staff" {
		t.Errorf("merged order = [%s, %s], want [Vencord Contributor, Discord Staff]",
			res.Merged[0].Tooltip, res.Merged[1].Tooltip)
	}
}

func discordUserServer(hits *atomic.Int64, user DiscordUser) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		_ = json.NewEncoder(w).Encode(user)
	}))
}

func TestFetchSecondCallHitsUserCache(t *testing.T) {
	var hits atomic.Int64
	srv := discordUserServer(&hits, DiscordUser{Flags: 1 << 0})
	defer srv.Close()

	cache := newFakeCache()
	agg := newTestAggregator(t, cache, &fakeBulk{}, srv.URL)

	first := agg.Fetch(context.Background(), "123", []string{"discord"}, Options{})
	if len(first.Merged) != 1 {
		t.Fatalf("first call = %+v, want one badge", first.Merged)
	}
	if hits.Load() != 1 {
		t.Fatalf("first call made %d upstream requests, want 1", hits.Load())
	}
	if cache.userSets != 1 {
		t.Fatalf("first call wrote cache %d times, want 1", cache.userSets)
	}

	second := agg.Fetch(context.Background(), "123", []string{"discord"}, Options{})
	if len(second.Merged) != 1 {
		t.Fatalf("second call = %+v, want one badge", second.Merged)
	}
	if hits.Load() != 1 {
		t.Errorf("second call went upstream (total requests %d), want cache hit", hits.Load())
	}
}

func TestFetchSkipCacheBypassesReadsAndWrites(t *testing.T) {
	var hits atomic.Int64
	srv := discordUserServer(&hits, DiscordUser{Flags: 1 << 0})
	defer srv.Close()

	cache := newFakeCache()
	agg := newTestAggregator(t, cache, &fakeBulk{}, srv.URL)

	_ = agg.Fetch(context.Background(), "123", []string{"discord"}, Options{SkipCache: true})
	_ = agg.Fetch(context.Background(), "123", []string{"discord"}, Options{SkipCache: true})

	if hits.Load() != 2 {
		t.Errorf("skipCache calls made %d upstream requests, want 2", hits.Load())
	}
	if cache.userReads != 0 || cache.userSets != 0 {
		t.Errorf("skipCache touched the cache: reads=%d sets=%d", cache.userReads, cache.userSets)
	}
}

func TestFetchUpstreamFailureYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cache := newFakeCache()
	agg := newTestAggregator(t, cache, &fakeBulk{}, srv.URL)

	res := agg.Fetch(context.Background(), "123", []string{"discord"}, Options{})
	if !res.Empty() {
		t.Errorf("Fetch() with failing upstream = %+v, want empty", res)
	}
	if cache.userSets != 0 {
		t.Errorf("failed fetch wrote the cache %d times, want 0", cache.userSets)
	}
}

func TestFetchEmptyResultNotCached(t *testing.T) {
	srv := discordUserServer(nil, DiscordUser{Flags: 0})
	defer srv.Close()

	cache := newFakeCache()
	agg := newTestAggregator(t, cache, &fakeBulk{}, srv.URL)

	res := agg.Fetch(context.Background(), "123", []string{"discord"}, Options{})
	if !res.Empty() {
		t.Fatalf("Fetch() = %+v, want empty", res)
	}
	if cache.userSets != 0 {
		t.Errorf("empty result was cached (%d writes), want 0", cache.userSets)
	}
}
