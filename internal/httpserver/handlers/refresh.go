package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/creations-works/badgeapi/internal/httpserver/deps"
	"github.com/creations-works/badgeapi/internal/logger"
	"github.com/creations-works/badgeapi/internal/scheduler"
)

type refreshResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Refresh serves POST /refresh/{service}: force one bulk source refresh
// outside the schedule. Live sources are accepted but have nothing to do.
func Refresh(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		service := chi.URLParam(r, "service")

		err := d.Refresher.ForceRefresh(r.Context(), service)
		switch {
		case errors.Is(err, scheduler.ErrSourceNotFound):
			writeError(w, errorResponse{
				Status:            http.StatusNotFound,
				Error:             "Unknown service",
				AvailableServices: d.Registry.Names(),
			})
		case err != nil:
			d.Logger.Warn("manual refresh failed",
				logger.String("service", service),
				logger.Error(err))
			writeError(w, errorResponse{
				Status: http.StatusBadGateway,
				Error:  "Failed to refresh service",
			})
		default:
			writeJSON(w, http.StatusOK, refreshResponse{
				Status:  http.StatusOK,
				Message: "Refresh completed",
			})
		}
	}
}
