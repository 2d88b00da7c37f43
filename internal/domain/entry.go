package domain

import "time"

// Status is the lifecycle of an entry. Only generated entries ever leave
// StatusReady; manual and catalog entries are born ready.
type Status string

const (
	StatusPending Status = "pending"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusReady, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further status transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusReady || s == StatusFailed
}

// Entry is one curated video in the working set.
//
// Descriptive fields may be rewritten by reconciliation against the catalog;
// user-generated fields (counters, flags, reviews) never are.
type Entry struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is unique within a snapshot and never reassigned.
	ID string `json:"id"`

	// ExternalRef is a bare external video id or a full URL.
	// It is the join key between the catalog and persisted entries.
	ExternalRef string `json:"externalRef"`

	// CreatedAt is set once, when the entry is first created.
	CreatedAt time.Time `json:"createdAt"`

	// ─────────────────────────────
	// Descriptive (catalog wins)
	// ─────────────────────────────

	Title     string `json:"title"`
	Category  string `json:"category"`
	Thumbnail string `json:"thumbnail,omitempty"`

	// ─────────────────────────────
	// Generation lifecycle
	// ─────────────────────────────

	Status   Status `json:"status"`
	Progress string `json:"progress,omitempty"`

	// ─────────────────────────────
	// User-generated (persisted wins)
	// ─────────────────────────────

	ViewCount    int64    `json:"viewCount"`
	LikeCount    int64    `json:"likeCount"`
	DislikeCount int64    `json:"dislikeCount"`
	IsLiked      bool     `json:"isLiked"`
	IsDisliked   bool     `json:"isDisliked"`
	Reviews      []Review `json:"reviews"`
}

// Clone returns a deep copy; the reviews slice is not shared.
func (e Entry) Clone() Entry {
	if e.Reviews != nil {
		reviews := make([]Review, len(e.Reviews))
		copy(reviews, e.Reviews)
		e.Reviews = reviews
	}
	return e
}

// Review is a user opinion on an entry. It only ever changes by approval.
type Review struct {
	ID          string    `json:"id"`
	Rating      int       `json:"rating"`
	Text        string    `json:"text"`
	Author      string    `json:"author"`
	SubmittedAt time.Time `json:"submittedAt"`
	Approved    bool      `json:"isApproved"`
}

const (
	MinRating = 1
	MaxRating = 5
)

// ValidRating reports whether r is within MinRating..MaxRating.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
