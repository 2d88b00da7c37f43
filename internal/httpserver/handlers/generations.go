package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/reel/internal/domain"
	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/library"
	"github.com/MrSnakeDoc/reel/internal/logger"
)

type generationRequest struct {
	Prompt   string `json:"prompt"`
	Category string `json:"category"`
	Progress string `json:"progress"`
	Ref      string `json:"ref"`
	Message  string `json:"message"`
}

// BeginGeneration registers a pending entry for an external generator.
func BeginGeneration(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generationRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		var id string
		st, ok := apply(w, r, d, func(st library.State) library.State {
			st, id = st.BeginGeneration(req.Prompt, req.Category)
			return st
		})
		if !ok {
			return
		}
		if id == "" {
			writeError(w, http.StatusUnprocessableEntity, "prompt is required")
			return
		}
		d.Logger.Info("generation queued", logger.String("id", id))
		e, _ := st.Entry(id)
		writeJSON(w, http.StatusAccepted, newEntryView(st, e, ""))
	}
}

// GenerationProgress records progress text.
func GenerationProgress(d deps.Deps) http.HandlerFunc {
	return advance(d, func(st library.State, id string, req generationRequest) library.State {
		return st.UpdateGeneration(id, req.Progress)
	})
}

// CompleteGeneration attaches the produced reference and marks the entry ready.
func CompleteGeneration(d deps.Deps) http.HandlerFunc {
	return advance(d, func(st library.State, id string, req generationRequest) library.State {
		return st.CompleteGeneration(id, req.Ref)
	})
}

// FailGeneration marks the entry failed.
func FailGeneration(d deps.Deps) http.HandlerFunc {
	return advance(d, func(st library.State, id string, req generationRequest) library.State {
		msg := req.Message
		if msg == "" {
			msg = "generation failed"
		}
		return st.FailGeneration(id, msg)
	})
}

// advance answers 404 for unknown ids and 409 once the entry left pending.
func advance(d deps.Deps, step func(st library.State, id string, req generationRequest) library.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generationRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		id := param(r, "id")
		var prev domain.Entry
		var found bool
		st, ok := apply(w, r, d, func(st library.State) library.State {
			if prev, found = st.Entry(id); !found || prev.Status.Terminal() {
				return st
			}
			return step(st, id, req)
		})
		if !ok {
			return
		}
		switch {
		case !found:
			writeError(w, http.StatusNotFound, "entry not found")
			return
		case prev.Status.Terminal():
			writeError(w, http.StatusConflict, "generation is already "+string(prev.Status))
			return
		}

		e, _ := st.Entry(id)
		if e.Status != prev.Status {
			d.Logger.Info("generation finished",
				logger.String("id", id),
				logger.String("status", string(e.Status)))
		}
		writeJSON(w, http.StatusOK, newEntryView(st, e, ""))
	}
}
