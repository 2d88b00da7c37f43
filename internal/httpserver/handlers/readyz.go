package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
)

type storageStatus struct {
	Backend     string `json:"backend"`
	OK          bool   `json:"ok"`
	Error       string `json:"error,omitempty"`
	LastSavedAt string `json:"last_saved_at,omitempty"`
	LastSaveErr string `json:"last_save_error,omitempty"`
}

type readyzResponse struct {
	Ready          bool          `json:"ready"`
	CatalogVersion int           `json:"catalog_version"`
	Entries        int           `json:"entries"`
	LastInit       string        `json:"last_init,omitempty"`
	Storage        storageStatus `json:"storage"`
}

// Readyz reports whether the session is initialized and storage answers.
// A failed write-back is reported but does not make the instance unready:
// the in-memory state keeps serving.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := d.Session.Status()
		resp := readyzResponse{
			Ready:          st.Initialized,
			CatalogVersion: st.CatalogVersion,
			Entries:        st.Entries,
			Storage:        storageStatus{Backend: d.Storage, OK: true},
		}
		if !st.LastInitAt.IsZero() {
			resp.LastInit = st.LastInitAt.UTC().Format(time.RFC3339)
		}
		if !st.LastSavedAt.IsZero() {
			resp.Storage.LastSavedAt = st.LastSavedAt.UTC().Format(time.RFC3339)
		}
		if st.LastSaveErr != nil {
			resp.Storage.LastSaveErr = st.LastSaveErr.Error()
		}

		if d.StoragePing != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.StoragePing(ctx); err != nil {
				resp.Storage.OK = false
				resp.Storage.Error = err.Error()
				resp.Ready = false
			}
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
