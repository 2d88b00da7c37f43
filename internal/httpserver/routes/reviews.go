package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/httpserver/handlers"
)

func init() { Register(registerReviews) }

func registerReviews(r chi.Router, d deps.Deps) {
	pub := r.With(access(d)...)
	pub.Get("/api/entries/{id}/reviews", handlers.ListReviews(d))
	pub.Post("/api/entries/{id}/reviews", handlers.SubmitReview(d))

	adm := r.With(admin(d)...)
	adm.Get("/api/reviews/pending", handlers.PendingReviews(d))
	adm.Post("/api/entries/{id}/reviews/{rid}/approve", handlers.ApproveReview(d))
	adm.Post("/api/entries/{id}/reviews/{rid}/reject", handlers.RejectReview(d))
}
