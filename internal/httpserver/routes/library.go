package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/httpserver/handlers"
)

func init() { Register(registerLibrary) }

func registerLibrary(r chi.Router, d deps.Deps) {
	pub := r.With(access(d)...)
	pub.Get("/api/library", handlers.Library(d))
	pub.Post("/api/filter", handlers.SetFilter(d))
	pub.Get("/api/vault", handlers.Vault(d))
	pub.Get("/api/export", handlers.Export(d))
	pub.Post("/api/version/check", handlers.CheckVersion(d))

	r.With(admin(d)...).Post("/api/stats/reset", handlers.ResetStats(d))
}
