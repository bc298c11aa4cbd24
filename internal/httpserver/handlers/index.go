package handlers

import (
	"net/http"
	"time"

	"github.com/creations-works/badgeapi/internal/httpserver/deps"
)

type serviceInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type rateLimitInfo struct {
	Window   string `json:"window"`
	Requests int    `json:"requests"`
}

type indexResponse struct {
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Version           string            `json:"version"`
	Repository        string            `json:"repository,omitempty"`
	Uptime            string            `json:"uptime"`
	Routes            map[string]string `json:"routes"`
	SupportedServices []serviceInfo     `json:"supportedServices"`
	RateLimit         rateLimitInfo     `json:"ratelimit"`
}

// Index serves GET /: API self-description with the supported services
// and route listing.
func Index(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		if d.TimeNow != nil {
			now = d.TimeNow()
		}

		services := make([]serviceInfo, 0, len(d.Registry.Names()))
		for _, name := range d.Registry.Names() {
			src, _ := d.Registry.Resolve(name)
			services = append(services, serviceInfo{
				Name:        src.Name,
				Description: src.Description,
			})
		}

		resp := indexResponse{
			Name:        "Badge Aggregator API",
			Description: "Discord badge aggregation API with Redis caching",
			Version:     d.Version,
			Repository:  d.RepositoryURL,
			Uptime:      now.Sub(d.StartTime).Truncate(time.Second).String(),
			Routes: map[string]string{
				"GET /":                   "API information and available routes",
				"GET /{userId}":           "Get badges for a Discord user (query: services, cache, seperated)",
				"GET /health":             "Health check endpoint",
				"POST /refresh/{service}": "Force refresh of one bulk source",
			},
			SupportedServices: services,
			RateLimit: rateLimitInfo{
				Window:   "60 seconds",
				Requests: d.RateLimitPerMin,
			},
		}

		w.Header().Set("Cache-Control", "public, max-age=300")
		writeJSON(w, http.StatusOK, resp)
	}
}
