package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/reel/internal/domain"
	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/library"
	"github.com/MrSnakeDoc/reel/internal/logger"
)

type submitReviewRequest struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
	Author string `json:"author"`
}

type submitReviewResponse struct {
	Accepted bool           `json:"accepted"`
	Review   *domain.Review `json:"review,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// SubmitReview queues a review for moderation. An invalid rating or blank
// text is a no-op answered with 422.
func SubmitReview(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitReviewRequest
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		id := param(r, "id")
		var (
			found    bool
			reviewID string
			accepted bool
		)
		st, ok := apply(w, r, d, func(st library.State) library.State {
			if _, found = st.Entry(id); !found {
				return st
			}
			st, reviewID, accepted = st.SubmitReview(id, req.Rating, req.Text, req.Author)
			return st
		})
		if !ok {
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "entry not found")
			return
		}
		if !accepted {
			writeJSON(w, http.StatusUnprocessableEntity, submitReviewResponse{
				Error: "rating must be 1-5 and text must not be blank",
			})
			return
		}

		rev, _ := findReview(st, id, reviewID)
		d.Logger.Info("review submitted",
			logger.String("entry_id", id),
			logger.Int("rating", rev.Rating))
		writeJSON(w, http.StatusCreated, submitReviewResponse{Accepted: true, Review: &rev})
	}
}

// ListReviews returns the reviews of an entry, most recent first.
func ListReviews(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := d.Session.View()
		id := param(r, "id")
		if _, ok := st.Entry(id); !ok {
			writeError(w, http.StatusNotFound, "entry not found")
			return
		}
		writeJSON(w, http.StatusOK, st.Reviews(id))
	}
}

// PendingReviews lists every review awaiting moderation.
func PendingReviews(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pending := d.Session.View().PendingReviews()
		if pending == nil {
			pending = []library.PendingReview{}
		}
		writeJSON(w, http.StatusOK, pending)
	}
}

// ApproveReview publishes a review. Approving twice is harmless.
func ApproveReview(d deps.Deps) http.HandlerFunc {
	return moderate(d, library.State.ApproveReview, http.StatusOK)
}

// RejectReview deletes a review.
func RejectReview(d deps.Deps) http.HandlerFunc {
	return moderate(d, library.State.RejectReview, http.StatusNoContent)
}

func moderate(d deps.Deps, action func(st library.State, entryID, reviewID string) library.State, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryID, reviewID := param(r, "id"), param(r, "rid")

		var found bool
		st, ok := apply(w, r, d, func(st library.State) library.State {
			if _, found = findReview(st, entryID, reviewID); !found {
				return st
			}
			return action(st, entryID, reviewID)
		})
		if !ok {
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "review not found")
			return
		}

		if status == http.StatusNoContent {
			w.WriteHeader(status)
			return
		}
		rev, _ := findReview(st, entryID, reviewID)
		writeJSON(w, status, rev)
	}
}

func findReview(st library.State, entryID, reviewID string) (domain.Review, bool) {
	e, ok := st.Entry(entryID)
	if !ok {
		return domain.Review{}, false
	}
	for _, rev := range e.Reviews {
		if rev.ID == reviewID {
			return rev, true
		}
	}
	return domain.Review{}, false
}
