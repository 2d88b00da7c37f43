package routes

import (
	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/httpserver/mw"
)

// access restricts a route to the allowed networks and hosts.
func access(d deps.Deps) []Middleware {
	return []Middleware{
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	}
}

// admin is access plus the admin gate.
func admin(d deps.Deps) []Middleware {
	return append(access(d), mw.RequireAdmin(d.Gate, d.Logger))
}
