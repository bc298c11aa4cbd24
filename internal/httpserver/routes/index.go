package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/creations-works/badgeapi/internal/httpserver/deps"
	"github.com/creations-works/badgeapi/internal/httpserver/handlers"
)

func init() { Register(registerIndex) }

func registerIndex(r chi.Router, d deps.Deps) {
	r.Get("/", handlers.Index(d))
}
