package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/reel/internal/httpserver/mw"
)

func init() { Register(registerProbes) }

func registerProbes(r chi.Router, d deps.Deps) {
	probe := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	probe.Get("/healthz", handlers.Healthz(d))
	probe.Get("/readyz", handlers.Readyz(d))

	r.With(access(d)...).Get("/", handlers.Index(d))
}
