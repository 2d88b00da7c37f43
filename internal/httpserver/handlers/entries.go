package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/library"
	"github.com/MrSnakeDoc/reel/internal/logger"
)

// GetEntry returns one entry.
func GetEntry(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := d.Session.View()
		e, ok := st.Entry(param(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "entry not found")
			return
		}
		writeJSON(w, http.StatusOK, newEntryView(st, e, ""))
	}
}

type addEntryRequest struct {
	Ref      string `json:"ref"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

// AddEntry creates an entry from a reference and selects it.
func AddEntry(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addEntryRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		var id string
		st, ok := apply(w, r, d, func(st library.State) library.State {
			st, id = st.AddEntry(req.Ref, req.Title, req.Category)
			return st
		})
		if !ok {
			return
		}
		if id == "" {
			writeError(w, http.StatusUnprocessableEntity, "ref is required")
			return
		}

		e, _ := st.Entry(id)
		d.Logger.Info("entry added",
			logger.String("id", id),
			logger.String("category", e.Category))
		writeJSON(w, http.StatusCreated, newEntryView(st, e, ""))
	}
}

// AddSurprise adds a random pick from the built-in pool.
func AddSurprise(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var id string
		st, ok := apply(w, r, d, func(st library.State) library.State {
			st, id = st.AddSurprise()
			return st
		})
		if !ok {
			return
		}
		e, _ := st.Entry(id)
		writeJSON(w, http.StatusCreated, newEntryView(st, e, ""))
	}
}

// DeleteEntry removes an entry and every favorite pointing at it.
func DeleteEntry(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := param(r, "id")
		var found bool
		_, ok := apply(w, r, d, func(st library.State) library.State {
			if _, found = st.Entry(id); !found {
				return st
			}
			return st.RemoveEntry(id)
		})
		if !ok {
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "entry not found")
			return
		}
		d.Logger.Info("entry removed", logger.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

// PurgeEntries empties the library.
func PurgeEntries(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := apply(w, r, d, library.State.PurgeAll); !ok {
			return
		}
		d.Logger.Warn("library purged", logger.String("remote_ip", r.RemoteAddr))
		w.WriteHeader(http.StatusNoContent)
	}
}

// Interact applies a per-entry action (view, like, dislike, select).
func Interact(d deps.Deps, action func(st library.State, id string) library.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := param(r, "id")
		var found bool
		st, ok := apply(w, r, d, func(st library.State) library.State {
			if _, found = st.Entry(id); !found {
				return st
			}
			return action(st, id)
		})
		if !ok {
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "entry not found")
			return
		}
		e, _ := st.Entry(id)
		writeJSON(w, http.StatusOK, newEntryView(st, e, ""))
	}
}

type favoriteRequest struct {
	Identity string `json:"identity"`
}

// ToggleFavorite flips the entry in the vault of the given or active identity.
func ToggleFavorite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req favoriteRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		id := param(r, "id")
		var found bool
		st, ok := apply(w, r, d, func(st library.State) library.State {
			if _, found = st.Entry(id); !found {
				return st
			}
			return st.ToggleFavorite(req.Identity, id)
		})
		if !ok {
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "entry not found")
			return
		}
		e, _ := st.Entry(id)
		writeJSON(w, http.StatusOK, newEntryView(st, e, req.Identity))
	}
}

type resetStatsRequest struct {
	ID string `json:"id"`
}

// ResetStats zeroes the counters of one entry (body or ?id=) or of all of them.
func ResetStats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := resetStatsRequest{ID: r.URL.Query().Get("id")}
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		found := true
		_, ok := apply(w, r, d, func(st library.State) library.State {
			if req.ID == "" {
				return st.ResetAllStats()
			}
			if _, found = st.Entry(req.ID); !found {
				return st
			}
			return st.ResetStats(req.ID)
		})
		if !ok {
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "entry not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
