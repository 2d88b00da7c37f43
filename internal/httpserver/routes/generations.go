package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/httpserver/handlers"
)

func init() { Register(registerGenerations) }

func registerGenerations(r chi.Router, d deps.Deps) {
	adm := r.With(admin(d)...)
	adm.Post("/api/generations", handlers.BeginGeneration(d))
	adm.Post("/api/generations/{id}/progress", handlers.GenerationProgress(d))
	adm.Post("/api/generations/{id}/complete", handlers.CompleteGeneration(d))
	adm.Post("/api/generations/{id}/fail", handlers.FailGeneration(d))
}
