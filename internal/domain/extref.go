package domain

import (
	"regexp"
	"strings"
)

// PlaceholderThumbnail is shown for entries whose reference cannot be resolved.
const PlaceholderThumbnail = "/static/placeholder.svg"

// ExternalIDLength is the length of a YouTube video id.
const ExternalIDLength = 11

var (
	bareIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

	// Matches watch?v=, &v=, ?vi=, youtu.be/, /v/, /vi/, /u/x/, /embed/ and /shorts/
	// shapes. The leading .* is greedy so the last marker in the string wins.
	urlIDPattern = regexp.MustCompile(`^.*(?:(?:youtu\.be/|v/|vi/|u/\w/|embed/|shorts/)|(?:(?:watch)?\?vi?=|&vi?=))([^#&?]*).*`)
)

// ResolveExternalID extracts the 11-character external id from a bare id or
// any known URL shape. It reports false when nothing usable is found; callers
// fall back to a placeholder, never to an error.
//
// Examples:
//   - "dQw4w9WgXcQ" -> "dQw4w9WgXcQ"
//   - "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42" -> "dQw4w9WgXcQ"
//   - "https://youtu.be/dQw4w9WgXcQ" -> "dQw4w9WgXcQ"
//   - "https://example.com/video.mp4" -> "", false
func ResolveExternalID(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	if bareIDPattern.MatchString(trimmed) {
		return trimmed, true
	}

	m := urlIDPattern.FindStringSubmatch(trimmed)
	if len(m) < 2 || !bareIDPattern.MatchString(m[1]) {
		return "", false
	}
	return m[1], true
}

// ThumbnailURL derives the preview image of an entry. An explicit thumbnail
// wins; otherwise it is computed from the resolved id.
func ThumbnailURL(e Entry) string {
	if e.Thumbnail != "" {
		return e.Thumbnail
	}
	if id, ok := ResolveExternalID(e.ExternalRef); ok {
		return "https://img.youtube.com/vi/" + id + "/mqdefault.jpg"
	}
	return PlaceholderThumbnail
}

// EmbedURL returns the player URL for a resolvable reference, or the raw
// reference itself for anything else (direct media links from generation).
func EmbedURL(ref string) string {
	if id, ok := ResolveExternalID(ref); ok {
		return "https://www.youtube.com/embed/" + id
	}
	return strings.TrimSpace(ref)
}
