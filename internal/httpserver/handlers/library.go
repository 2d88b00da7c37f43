package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/reel/internal/domain"
	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/library"
)

type libraryResponse struct {
	CatalogVersion int               `json:"catalogVersion"`
	ActiveIdentity string            `json:"activeIdentity"`
	IsAuthorized   bool              `json:"isAuthorized"`
	AdminEnabled   bool              `json:"adminEnabled"`
	Filter         string            `json:"filter"`
	Selected       *entryView        `json:"selected,omitempty"`
	Entries        int               `json:"entries"`
	VaultCount     int               `json:"vaultCount"`
	PendingReviews int               `json:"pendingReviews"`
	Categories     []domain.Category `json:"categories"`
}

// Library summarizes the working state.
func Library(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := d.Session.View()

		resp := libraryResponse{
			CatalogVersion: st.CatalogVersion,
			ActiveIdentity: st.ActiveIdentity,
			IsAuthorized:   d.Gate.AuthorizeRequest(r),
			AdminEnabled:   d.Gate.Enabled(),
			Filter:         st.Filter,
			Entries:        len(st.Entries),
			VaultCount:     len(st.Vault(st.ActiveIdentity)),
			PendingReviews: st.PendingReviewCount(),
			Categories:     categoryViews(st),
		}
		if e, ok := st.Selected(); ok {
			v := newEntryView(st, e, "")
			resp.Selected = &v
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type listResponse struct {
	Filter  string      `json:"filter,omitempty"`
	Entries []entryView `json:"entries"`
}

// ListEntries returns the visible playlist. ?filter= previews another filter
// without switching the session's one.
func ListEntries(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := d.Session.View()
		if f, ok := r.URL.Query()["filter"]; ok && len(f) > 0 {
			st = st.SetFilter(f[0])
		}
		writeJSON(w, http.StatusOK, listResponse{
			Filter:  st.Filter,
			Entries: newEntryViews(st, st.Visible(), ""),
		})
	}
}

type filterRequest struct {
	Filter string `json:"filter"`
}

// SetFilter switches the playlist filter. Unknown names fall back to All.
func SetFilter(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req filterRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		st, ok := apply(w, r, d, func(st library.State) library.State { return st.SetFilter(req.Filter) })
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, listResponse{
			Filter:  st.Filter,
			Entries: newEntryViews(st, st.Visible(), ""),
		})
	}
}

// Vault lists the favorites of ?identity= or of the active identity.
func Vault(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := d.Session.View()
		identity := r.URL.Query().Get("identity")
		if identity == "" {
			identity = st.ActiveIdentity
		}
		writeJSON(w, http.StatusOK, listResponse{
			Entries: newEntryViews(st, st.Vault(identity), identity),
		})
	}
}
