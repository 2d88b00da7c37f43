package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/httpserver/handlers"
)

func init() { Register(registerCategories) }

func registerCategories(r chi.Router, d deps.Deps) {
	r.With(access(d)...).Get("/api/categories", handlers.ListCategories(d))

	adm := r.With(admin(d)...)
	adm.Post("/api/categories", handlers.AddCategory(d))
	adm.Delete("/api/categories/{name}", handlers.DeleteCategory(d))
	adm.Put("/api/categories/{name}/color", handlers.UpdateCategoryColor(d))
}
