package store

// LegacyEntry is the entry shape stored under LegacyKeyVault. Timestamps are
// unix milliseconds and favorites are a per-entry flag.
type LegacyEntry struct {
	ID           string         `json:"id"`
	Prompt       string         `json:"prompt"`
	Category     string         `json:"category"`
	URL          string         `json:"url"`
	Thumbnail    string         `json:"thumbnail,omitempty"`
	Timestamp    int64          `json:"timestamp"`
	Status       string         `json:"status"`
	Progress     string         `json:"progress,omitempty"`
	ViewCount    int64          `json:"viewCount"`
	LikeCount    int64          `json:"likeCount"`
	DislikeCount int64          `json:"dislikeCount"`
	IsFavorite   bool           `json:"isFavorite"`
	IsLiked      bool           `json:"isLiked"`
	IsDisliked   bool           `json:"isDisliked"`
	Reviews      []LegacyReview `json:"reviews,omitempty"`
}

// LegacyReview is the review shape nested in LegacyEntry.
type LegacyReview struct {
	ID         string `json:"id"`
	Rating     int    `json:"rating"`
	Text       string `json:"text"`
	User       string `json:"user"`
	Timestamp  int64  `json:"timestamp"`
	IsApproved bool   `json:"isApproved"`
}

// Legacy status values.
const (
	LegacyStatusReady      = "ready"
	LegacyStatusGenerating = "generating"
	LegacyStatusError      = "error"
)
