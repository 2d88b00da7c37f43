package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/httpserver/handlers"
)

func init() { Register(registerAuth) }

func registerAuth(r chi.Router, d deps.Deps) {
	pub := r.With(access(d)...)
	pub.Post("/api/auth/login", handlers.Login(d))
	pub.Post("/api/auth/identify", handlers.Identify(d))

	r.With(admin(d)...).Post("/api/auth/logout", handlers.Logout(d))
}
