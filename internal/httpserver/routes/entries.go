package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/reel/internal/library"
)

func init() { Register(registerEntries) }

func registerEntries(r chi.Router, d deps.Deps) {
	pub := r.With(access(d)...)
	pub.Get("/api/entries", handlers.ListEntries(d))
	pub.Get("/api/entries/{id}", handlers.GetEntry(d))
	pub.Post("/api/entries/{id}/view", handlers.Interact(d, library.State.IncrementView))
	pub.Post("/api/entries/{id}/like", handlers.Interact(d, library.State.ToggleLike))
	pub.Post("/api/entries/{id}/dislike", handlers.Interact(d, library.State.ToggleDislike))
	pub.Post("/api/entries/{id}/select", handlers.Interact(d, library.State.Select))
	pub.Post("/api/entries/{id}/favorite", handlers.ToggleFavorite(d))

	adm := r.With(admin(d)...)
	adm.Post("/api/entries", handlers.AddEntry(d))
	adm.Post("/api/entries/surprise", handlers.AddSurprise(d))
	adm.Delete("/api/entries", handlers.PurgeEntries(d))
	adm.Delete("/api/entries/{id}", handlers.DeleteEntry(d))
}
