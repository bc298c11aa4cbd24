package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/creations-works/badgeapi/internal/badge"
	"github.com/creations-works/badgeapi/internal/config"
	"github.com/creations-works/badgeapi/internal/httpserver/deps"
	"github.com/creations-works/badgeapi/internal/utils"
)

// Discord snowflakes are 17 to 20 digits.
var userIDPattern = regexp.MustCompile(`^\d{17,20}$`)

type badgesResponse struct {
	Status int         `json:"status"`
	Badges interface{} `json:"badges"`
}

// Badges serves GET /{userId}: aggregate badges for one Discord user
// across the requested (or all) sources.
func Badges(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		if !userIDPattern.MatchString(userID) {
			writeError(w, errorResponse{
				Status: http.StatusBadRequest,
				Error:  "Invalid Discord User ID. Must be 17-20 digits.",
			})
			return
		}

		available := d.Registry.Names()
		services := available

		if raw := r.URL.Query().Get("services"); raw != "" {
			parsed := config.SplitAndTrim(raw)
			if len(parsed) == 0 {
				writeError(w, errorResponse{
					Status:            http.StatusBadRequest,
					Error:             "No valid services provided",
					AvailableServices: available,
				})
				return
			}
			for _, name := range parsed {
				if _, ok := d.Registry.Resolve(name); !ok {
					writeError(w, errorResponse{
						Status:            http.StatusBadRequest,
						Error:             "Invalid service(s) provided",
						AvailableServices: available,
						Provided:          parsed,
					})
					return
				}
			}
			services = parsed
		}

		q := r.URL.Query()
		opts := badge.Options{
			SkipCache: q.Get("cache") == "false",
			Separated: strings.EqualFold(q.Get("seperated"), "true"),
			Origin:    utils.RequestOrigin(r, d.TrustProxy),
		}

		result := d.Aggregator.Fetch(r.Context(), userID, services, opts)
		if result.Empty() {
			writeError(w, errorResponse{
				Status:   http.StatusNotFound,
				Error:    "No badges found for this user",
				Services: services,
			})
			return
		}

		var badges interface{}
		if opts.Separated {
			badges = result.Separated
		} else {
			badges = result.Merged
		}

		w.Header().Set("Cache-Control", "public, max-age=60")
		writeJSON(w, http.StatusOK, badgesResponse{
			Status: http.StatusOK,
			Badges: badges,
		})
	}
}
