package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creations-works/badgeapi/internal/badge"
	"github.com/creations-works/badgeapi/internal/domain"
	"github.com/creations-works/badgeapi/internal/fetch"
	"github.com/creations-works/badgeapi/internal/logger"
	"github.com/creations-works/badgeapi/internal/source"
)

type fakeStore struct {
	mu       sync.Mutex
	bulk     map[string][]byte
	ts       map[string]time.Time
	setBulks int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bulk: make(map[string][]byte),
		ts:   make(map[string]time.Time),
	}
}

func (s *fakeStore) BulkPayload(ctx context.Context, sourceKey string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.bulk[sourceKey]
	return payload, ok
}

func (s *fakeStore) BulkTimestamp(ctx context.Context, sourceKey string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.ts[sourceKey]
	return ts, ok
}

func (s *fakeStore) SetBulk(ctx context.Context, sourceKey string, payload []byte, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setBulks++
	s.bulk[sourceKey] = payload
	s.ts[sourceKey] = ts
	return nil
}

func (s *fakeStore) UserBadges(ctx context.Context, sourceKey, userID string) ([]domain.Badge, bool) {
	return nil, false
}

func (s *fakeStore) SetUserBadges(ctx context.Context, sourceKey, userID string, badges []domain.Badge) error {
	return nil
}

// upstream serves the four bulk datasets plus the plugin manifest from
// one test server. Paths listed in failing return 500.
func upstream(t *testing.T, failing map[string]bool) *httptest.Server {
	t.Helper()

	vencord := badge.ContributorData{
		"100": {{Tooltip: "Cutie", Badge: "https://vencord.dev/cutie.png"}},
		"300": {{Tooltip: "Vencord Contributor", Badge: "https://vencord.dev/assets/favicon.png"}},
	}
	equicord := badge.ContributorData{}
	nekocord := badge.NekocordData{
		Users:  map[string]badge.NekocordUser{"100": {Badges: []string{"cat"}}},
		Badges: map[string]badge.NekocordBadge{"cat": {Name: "Cat Person", Image: "https://nekocord.dev/cat.png"}},
	}
	reviewdb := badge.ReviewDBData{
		{DiscordID: "100", Name: "Reviewer", Icon: "https://reviewdb.dev/r.png"},
	}
	// Author 200 wrote an Equicord plugin, 300 a Vencord one.
	manifest := badge.PluginManifest{
		{FilePath: "src/equicordplugins/meow/index.ts", Authors: []badge.PluginAuthor{{ID: "200"}}},
		{FilePath: "src/plugins/bark/index.ts", Authors: []badge.PluginAuthor{{ID: "300"}}},
	}

	docs := map[string]interface{}{
		"/vencord":  vencord,
		"/equicord": equicord,
		"/nekocord": nekocord,
		"/reviewdb": reviewdb,
		"/manifest": manifest,
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing[r.URL.Path] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		doc, ok := docs[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(doc)
	}))
}

func testRegistry(t *testing.T, baseURL string) *source.Registry {
	t.Helper()
	r, err := source.NewRegistry(baseURL+"/manifest",
		source.Source{Name: "Vencord", Category: source.Bulk, URL: source.Direct(baseURL + "/vencord")},
		source.Source{Name: "Equicord", Category: source.Bulk, URL: source.Direct(baseURL + "/equicord")},
		source.Source{Name: "Nekocord", Category: source.Bulk, URL: source.Direct(baseURL + "/nekocord")},
		source.Source{Name: "ReviewDb", Category: source.Bulk, URL: source.Direct(baseURL + "/reviewdb")},
		source.Source{Name: "Discord", Category: source.Live, URL: source.Templated(func(id string) string {
			return baseURL + "/users/" + id
		})},
	)
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	return r
}

func newTestRefresher(t *testing.T, st *fakeStore, baseURL string) *BadgeRefresher {
	t.Helper()
	client := fetch.New(2*time.Second, 0, "BadgeAPI-test/1.0")
	return NewBadgeRefresher(testRegistry(t, baseURL), st, client, logger.New("error", false), time.Hour)
}

func TestRefreshAllCachesDatasets(t *testing.T) {
	srv := upstream(t, nil)
	defer srv.Close()

	st := newFakeStore()
	r := newTestRefresher(t, st, srv.URL)

	if err := r.RefreshAll(context.Background()); err != nil {
		t.Fatalf("RefreshAll() failed: %v", err)
	}

	for _, key := range []string{"vencord", "equicord", "nekocord", "reviewdb"} {
		if _, ok := st.bulk[key]; !ok {
			t.Errorf("dataset %s not cached", key)
		}
		if _, ok := st.ts[key]; !ok {
			t.Errorf("timestamp for %s not cached", key)
		}
	}

	vencord, ok := r.ContributorBadges(context.Background(), "vencord")
	if !ok {
		t.Fatal("vencord dataset unreadable after refresh")
	}
	// Author 300 already carries the contributor badge; no duplicate.
	if got := vencord["300"]; len(got) != 1 {
		t.Errorf("author 300 has %d badges, want 1 (no duplicate contributor badge): %v", len(got), got)
	}
	// Author 200 wrote an Equicord plugin; no Vencord contributor badge.
	if _, present := vencord["200"]; present {
		t.Error("equicord-only author leaked into vencord dataset")
	}

	equicord, ok := r.ContributorBadges(context.Background(), "equicord")
	if !ok {
		t.Fatal("equicord dataset unreadable after refresh")
	}
	got := equicord["200"]
	if len(got) != 1 || got[0].Tooltip != "Equicord Contributor" {
		t.Errorf("author 200 badges = %v, want single Equicord Contributor", got)
	}
}

func TestRefreshAllPartialFailure(t *testing.T) {
	srv := upstream(t, map[string]bool{"/reviewdb": true})
	defer srv.Close()

	st := newFakeStore()
	r := newTestRefresher(t, st, srv.URL)

	err := r.RefreshAll(context.Background())
	if err == nil {
		t.Fatal("RefreshAll() with failing source returned nil error")
	}
	if !strings.Contains(err.Error(), "reviewdb") {
		t.Errorf("error does not name the failing source: %v", err)
	}

	// The other sources still landed.
	for _, key := range []string{"vencord", "equicord", "nekocord"} {
		if _, ok := st.bulk[key]; !ok {
			t.Errorf("dataset %s not cached despite isolated failure", key)
		}
	}
	if _, ok := st.bulk["reviewdb"]; ok {
		t.Error("failed source left a payload in the cache")
	}
}

func TestRefreshSourceManifestOnlyFallback(t *testing.T) {
	// Primary dataset down, manifest up: contributor badges alone get cached.
	srv := upstream(t, map[string]bool{"/vencord": true})
	defer srv.Close()

	st := newFakeStore()
	r := newTestRefresher(t, st, srv.URL)

	if err := r.ForceRefresh(context.Background(), "vencord"); err != nil {
		t.Fatalf("ForceRefresh() failed: %v", err)
	}

	data, ok := r.ContributorBadges(context.Background(), "vencord")
	if !ok {
		t.Fatal("vencord dataset unreadable after manifest-only refresh")
	}
	got := data["300"]
	if len(got) != 1 || got[0].Tooltip != "Vencord Contributor" {
		t.Errorf("author 300 badges = %v, want single Vencord Contributor", got)
	}
}

func TestForceRefreshUnknownSource(t *testing.T) {
	srv := upstream(t, nil)
	defer srv.Close()

	st := newFakeStore()
	r := newTestRefresher(t, st, srv.URL)

	err := r.ForceRefresh(context.Background(), "spotify")
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("ForceRefresh() error = %v, want ErrSourceNotFound", err)
	}
	if st.setBulks != 0 {
		t.Errorf("unknown source wrote the cache %d times, want 0", st.setBulks)
	}
}

func TestForceRefreshLiveSourceIsNoop(t *testing.T) {
	srv := upstream(t, nil)
	defer srv.Close()

	st := newFakeStore()
	r := newTestRefresher(t, st, srv.URL)

	if err := r.ForceRefresh(context.Background(), "discord"); err != nil {
		t.Errorf("ForceRefresh() on live source = %v, want nil", err)
	}
	if st.setBulks != 0 {
		t.Errorf("live source wrote the cache %d times, want 0", st.setBulks)
	}
}

func TestNeedsRefresh(t *testing.T) {
	srv := upstream(t, nil)
	defer srv.Close()

	st := newFakeStore()
	r := newTestRefresher(t, st, srv.URL)
	ctx := context.Background()

	if !r.needsRefresh(ctx) {
		t.Error("empty cache should need a refresh")
	}

	for _, key := range []string{"vencord", "equicord", "nekocord", "reviewdb"} {
		_ = st.SetBulk(ctx, key, []byte("{}"), time.Now())
	}
	if r.needsRefresh(ctx) {
		t.Error("fresh cache should not need a refresh")
	}

	st.ts["nekocord"] = time.Now().Add(-2 * time.Hour)
	if !r.needsRefresh(ctx) {
		t.Error("expired timestamp should need a refresh")
	}
}

func TestBulkProviderMisses(t *testing.T) {
	srv := upstream(t, nil)
	defer srv.Close()

	st := newFakeStore()
	r := newTestRefresher(t, st, srv.URL)
	ctx := context.Background()

	if _, ok := r.Nekocord(ctx); ok {
		t.Error("empty cache reported a nekocord dataset")
	}
	if _, ok := r.ContributorBadges(ctx, "nekocord"); ok {
		t.Error("non-contributor key reported a contributor dataset")
	}

	st.bulk["reviewdb"] = []byte("not json")
	if _, ok := r.ReviewDB(ctx); ok {
		t.Error("corrupt payload reported a dataset")
	}
}
