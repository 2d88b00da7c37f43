package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/library"
	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/MrSnakeDoc/reel/internal/session"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decode reads an optional JSON body into dst. An empty body leaves dst untouched.
func decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("invalid JSON body: %w", err)
}

// param returns the unescaped chi URL parameter.
func param(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// apply runs fn through the session. On failure it has already written the
// response and returns false.
func apply(w http.ResponseWriter, r *http.Request, d deps.Deps, fn func(library.State) library.State) (library.State, bool) {
	st, err := d.Session.Apply(r.Context(), fn)
	if err != nil {
		respondSessionError(w, d, err)
		return library.State{}, false
	}
	return st, true
}

func respondSessionError(w http.ResponseWriter, d deps.Deps, err error) {
	if errors.Is(err, session.ErrNotInitialized) {
		writeError(w, http.StatusServiceUnavailable, "library is not ready")
		return
	}
	d.Logger.Error("session operation failed", logger.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// NotFound answers unknown routes with a JSON error.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "no such route")
}

// MethodNotAllowed answers known routes hit with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
