package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/reel/internal/auth"
	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/library"
	"github.com/MrSnakeDoc/reel/internal/logger"
)

type loginRequest struct {
	Secret string `json:"secret"`
}

type authResponse struct {
	Authorized     bool   `json:"authorized"`
	ActiveIdentity string `json:"activeIdentity"`
	Token          string `json:"token,omitempty"`
	ExpiresAt      string `json:"expiresAt,omitempty"`
}

// Login checks the admin secret and hands out a token, both in the body and
// as an HttpOnly cookie. Only the client presenting it is authorized.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.Gate.Enabled() {
			writeError(w, http.StatusForbidden, "admin actions are disabled")
			return
		}
		var req loginRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		token, expires, ok := d.Gate.Login(req.Secret)
		if !ok {
			d.Logger.Warn("admin login failed", logger.String("remote_ip", r.RemoteAddr))
			writeError(w, http.StatusUnauthorized, "wrong secret")
			return
		}

		st, ok := apply(w, r, d, func(st library.State) library.State { return st.SetAuthorized(true) })
		if !ok {
			d.Gate.Logout(token)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     auth.CookieName,
			Value:    token,
			Path:     "/",
			Expires:  expires,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
		d.Logger.Info("admin login", logger.String("remote_ip", r.RemoteAddr))
		writeJSON(w, http.StatusOK, authResponse{
			Authorized:     true,
			ActiveIdentity: st.ActiveIdentity,
			Token:          token,
			ExpiresAt:      expires.UTC().Format(time.RFC3339),
		})
	}
}

// Logout revokes the token the request carries and clears the cookie. The
// persisted flag drops once no login is left.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Gate.Logout(auth.RequestToken(r))
		active := d.Gate.Sessions() > 0
		if _, ok := apply(w, r, d, func(st library.State) library.State { return st.SetAuthorized(active) }); !ok {
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     auth.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

type identifyRequest struct {
	Name string `json:"name"`
}

// Identify switches the active identity; a blank name selects the default one.
func Identify(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req identifyRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		st, ok := apply(w, r, d, func(st library.State) library.State {
			return st.Identify(d.Gate.Identify(req.Name), d.Gate.DefaultIdentity())
		})
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, authResponse{
			Authorized:     d.Gate.AuthorizeRequest(r),
			ActiveIdentity: st.ActiveIdentity,
		})
	}
}
