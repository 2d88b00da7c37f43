package mw

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/reel/internal/auth"
	"github.com/MrSnakeDoc/reel/internal/logger"
)

// RequireAdmin lets a request through when the gate is enabled and the
// request itself carries the secret header or a login token.
// A disabled gate answers 403, a failed check 401.
func RequireAdmin(gate *auth.Gate, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !gate.Enabled() {
				deny(w, http.StatusForbidden, "admin actions are disabled")
				return
			}
			if gate.AuthorizeRequest(r) {
				next.ServeHTTP(w, r)
				return
			}
			log.Debug("admin request rejected",
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path))
			deny(w, http.StatusUnauthorized, "admin secret required")
		})
	}
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
