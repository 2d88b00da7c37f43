package domain

const (
	// FallbackColor paints categories that have no registered color,
	// including dangling references to deleted categories.
	FallbackColor = "#64748b"

	// CategoryOther is the catch-all category. New categories borrow its color.
	CategoryOther = "Other"
)

// Category is a named, colored tag. Name doubles as the foreign key used by
// Entry.Category.
type Category struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// CategoryColor resolves the display color of name, tolerating dangling names.
func CategoryColor(colors map[string]string, name string) string {
	if c, ok := colors[name]; ok && c != "" {
		return c
	}
	return FallbackColor
}
