package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/creations-works/badgeapi/internal/httpserver/deps"
)

type cacheInfo struct {
	Timestamp *string `json:"timestamp"`
	Age       string  `json:"age"`
}

type healthServices struct {
	Redis string `json:"redis"`
}

type healthCache struct {
	LastFetched map[string]cacheInfo `json:"lastFetched"`
	NextUpdate  *string              `json:"nextUpdate"`
}

type healthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Uptime    string         `json:"uptime"`
	Services  healthServices `json:"services"`
	Cache     healthCache    `json:"cache"`
}

// Health serves GET /health: redis connectivity plus the age of each bulk
// dataset and when the next sweep is due. Degraded redis turns the whole
// response into a 503.
func Health(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		if d.TimeNow != nil {
			now = d.TimeNow()
		}

		resp := healthResponse{
			Status:    "ok",
			Timestamp: now.Format(time.RFC3339),
			Uptime:    now.Sub(d.StartTime).Truncate(time.Second).String(),
			Services:  healthServices{Redis: "ok"},
			Cache:     healthCache{LastFetched: map[string]cacheInfo{}},
		}

		if d.RedisClient == nil || d.RedisClient.Ping(r.Context()).Err() != nil {
			resp.Services.Redis = "error"
			resp.Status = "degraded"
		}

		if d.Store != nil {
			var oldest time.Time
			for _, name := range d.Registry.BulkNames() {
				key := strings.ToLower(name)
				ts, ok := d.Store.BulkTimestamp(r.Context(), key)
				if !ok {
					resp.Cache.LastFetched[key] = cacheInfo{Age: "never"}
					continue
				}
				stamp := ts.Format(time.RFC3339)
				resp.Cache.LastFetched[key] = cacheInfo{
					Timestamp: &stamp,
					Age:       fmt.Sprintf("%ds ago", int(now.Sub(ts).Seconds())),
				}
				if oldest.IsZero() || ts.Before(oldest) {
					oldest = ts
				}
			}
			if !oldest.IsZero() && d.RefreshInterval > 0 {
				next := oldest.Add(d.RefreshInterval).Format(time.RFC3339)
				resp.Cache.NextUpdate = &next
			}
		}

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Cache-Control", "no-cache")
		writeJSON(w, status, resp)
	}
}
